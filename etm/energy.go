package etm

import "math"

// ParticleEnergy computes an identity's timing-strain energy against the
// engine's reference position (the lattice center). Pure function of the
// identity, the current field snapshot, and the config constants: identical
// inputs reproduce the result bit-for-bit.
func (e *Engine) ParticleEnergy(id *Identity) float64 {
	return particleEnergy(id, e.Center, e.Fields, e.Config)
}

// particleEnergy is the 4-term model: kinetic + potential + Coulomb-like +
// stability. The calibrated and legacy modes differ only in which constant
// set is applied. Identities without a position or particle pattern carry no
// energy.
func particleEnergy(id *Identity, reference Coord, fields map[Coord]*EchoField, cfg Config) float64 {
	if id.Position == nil || id.Pattern == nil {
		return 0.0
	}

	kineticScale := cfg.KineticScale
	potentialCoeff := cfg.PotentialCoeff
	stabilityScale := cfg.StabilityScale
	coulomb := cfg.CoulombConstant
	if !cfg.EnableCalibratedEnergy {
		kineticScale = cfg.LegacyKineticScale
		potentialCoeff = cfg.LegacyPotentialCoeff
		stabilityScale = cfg.LegacyStabilityScale
	}

	kinetic := id.DeltaPhase * kineticScale

	potential := 0.0
	if f, ok := fields[*id.Position]; ok {
		potential = -f.Value * potentialCoeff
	}

	dx := float64(id.Position.X - reference.X)
	dy := float64(id.Position.Y - reference.Y)
	dz := float64(id.Position.Z - reference.Z)
	distance := math.Sqrt(dx*dx + dy*dy + dz*dz)
	radius := -coulomb / math.Max(distance, 0.1)

	stability := id.Pattern.StabilityScore(100.0) * stabilityScale

	return kinetic + potential + radius + stability
}

// totalEnergy sums particle energy over all living identities. Used for the
// per-tick before/after bookkeeping.
func (e *Engine) totalEnergy() float64 {
	total := 0.0
	for _, id := range e.Identities {
		total += e.ParticleEnergy(id)
	}
	return total
}
