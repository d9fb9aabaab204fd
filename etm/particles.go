package etm

import "math"

// ParticleKind is the closed set of fundamental-particle variants. Behavior
// differences between kinds are switch arms on this tag, not subtypes.
type ParticleKind string

const (
	KindElectron       ParticleKind = "electron"
	KindEnhancedProton ParticleKind = "proton"
	KindLegacyProton   ParticleKind = "legacy_proton"
	KindNeutrino       ParticleKind = "neutrino"
	KindPhoton         ParticleKind = "photon"
	KindNeutron        ParticleKind = "neutron"
)

// StabilityLevel classifies a pattern's robustness.
type StabilityLevel string

const (
	LevelStable     StabilityLevel = "stable"
	LevelMetastable StabilityLevel = "metastable"
	LevelUnstable   StabilityLevel = "unstable"
	LevelCritical   StabilityLevel = "critical"
)

// NodePattern is one node's timing contribution within a particle template,
// positioned relative to the particle center.
type NodePattern struct {
	Offset      Coord
	TimingRate  float64
	PhaseOffset float64
	Role        string
}

// Pattern is an immutable particle timing template. Identities share patterns
// by reference; anything that needs to mutate one (decay products) clones it
// first.
type Pattern struct {
	Kind               ParticleKind
	Stability          StabilityLevel
	CoreTimingRate     float64
	Nodes              []NodePattern
	StabilityMetrics   map[string]float64
	CosmologicalViable bool
	ParticipatesInWeak bool

	// Photon-only fields, set through SetPhotonEnergy.
	EnergyContent float64
	Frequency     float64
	Wavelength    float64

	// Neutrino-only fields.
	Flavor            string
	OscillationPeriod int
}

var neutrinoFlavorCycle = [3]string{"electron", "muon", "tau"}

// NewElectronPattern builds the orbital-compatible electron template.
func NewElectronPattern() *Pattern {
	return &Pattern{
		Kind:           KindElectron,
		Stability:      LevelMetastable,
		CoreTimingRate: 0.7,
		Nodes: []NodePattern{
			{Offset: Coord{0, 0, 0}, TimingRate: 0.7, Role: "electron_core"},
			{Offset: Coord{1, 0, 0}, TimingRate: 0.5, Role: "orbital_interface"},
			{Offset: Coord{-1, 0, 0}, TimingRate: 0.5, Role: "orbital_interface"},
			{Offset: Coord{0, 1, 0}, TimingRate: 0.5, Role: "orbital_interface"},
			{Offset: Coord{0, -1, 0}, TimingRate: 0.5, Role: "orbital_interface"},
			{Offset: Coord{2, 0, 0}, TimingRate: 0.3, Role: "orbital_cloud"},
			{Offset: Coord{-2, 0, 0}, TimingRate: 0.3, Role: "orbital_cloud"},
		},
		StabilityMetrics: map[string]float64{
			"core_coherence":          0.85,
			"orbital_compatibility":   0.90,
			"interaction_flexibility": 0.88,
			"binding_capability":      0.92,
		},
		CosmologicalViable: true,
	}
}

// NewEnhancedProtonPattern builds the multi-shell proton template tuned for
// high survival under extreme field stress.
func NewEnhancedProtonPattern() *Pattern {
	return &Pattern{
		Kind:           KindEnhancedProton,
		Stability:      LevelStable,
		CoreTimingRate: 1.0,
		Nodes: []NodePattern{
			{Offset: Coord{0, 0, 0}, TimingRate: 1.0, Role: "enhanced_nuclear_core"},

			{Offset: Coord{1, 0, 0}, TimingRate: 0.95, Role: "primary_stabilizing_shell"},
			{Offset: Coord{-1, 0, 0}, TimingRate: 0.95, Role: "primary_stabilizing_shell"},
			{Offset: Coord{0, 1, 0}, TimingRate: 0.95, Role: "primary_stabilizing_shell"},
			{Offset: Coord{0, -1, 0}, TimingRate: 0.95, Role: "primary_stabilizing_shell"},
			{Offset: Coord{0, 0, 1}, TimingRate: 0.95, Role: "primary_stabilizing_shell"},
			{Offset: Coord{0, 0, -1}, TimingRate: 0.95, Role: "primary_stabilizing_shell"},
			{Offset: Coord{1, 1, 0}, TimingRate: 0.95, Role: "primary_stabilizing_shell"},
			{Offset: Coord{-1, -1, 0}, TimingRate: 0.95, Role: "primary_stabilizing_shell"},

			{Offset: Coord{1, 0, 1}, TimingRate: 0.85, Role: "intermediate_stabilizing_shell"},
			{Offset: Coord{-1, 0, -1}, TimingRate: 0.85, Role: "intermediate_stabilizing_shell"},
			{Offset: Coord{0, 1, 1}, TimingRate: 0.85, Role: "intermediate_stabilizing_shell"},
			{Offset: Coord{0, -1, -1}, TimingRate: 0.85, Role: "intermediate_stabilizing_shell"},
			{Offset: Coord{1, 1, 1}, TimingRate: 0.85, Role: "intermediate_stabilizing_shell"},
			{Offset: Coord{-1, -1, -1}, TimingRate: 0.85, Role: "intermediate_stabilizing_shell"},
			{Offset: Coord{1, -1, 0}, TimingRate: 0.85, Role: "intermediate_stabilizing_shell"},
			{Offset: Coord{-1, 1, 0}, TimingRate: 0.85, Role: "intermediate_stabilizing_shell"},

			{Offset: Coord{2, 0, 0}, TimingRate: 0.75, Role: "enhanced_edge_connector"},
			{Offset: Coord{-2, 0, 0}, TimingRate: 0.75, Role: "enhanced_edge_connector"},
			{Offset: Coord{0, 2, 0}, TimingRate: 0.75, Role: "enhanced_edge_connector"},
			{Offset: Coord{0, -2, 0}, TimingRate: 0.75, Role: "enhanced_edge_connector"},
			{Offset: Coord{2, 1, 0}, TimingRate: 0.75, Role: "enhanced_edge_connector"},
			{Offset: Coord{-2, -1, 0}, TimingRate: 0.75, Role: "enhanced_edge_connector"},
		},
		StabilityMetrics: map[string]float64{
			"core_coherence":                     0.99,
			"shell_stability":                    0.98,
			"intermediate_shell_stability":       0.96,
			"edge_connectivity":                  0.95,
			"agn_survival_probability":           0.97,
			"field_resilience":                   0.95,
			"timing_coherence_under_stress":      0.94,
			"cosmological_recycling_compatible":  0.98,
		},
		CosmologicalViable: true,
	}
}

// NewLegacyProtonPattern builds the pre-enhancement proton: single shell, no
// intermediate stress distribution. Kept for compatibility comparisons when
// the enhanced proton is disabled.
func NewLegacyProtonPattern() *Pattern {
	return &Pattern{
		Kind:           KindLegacyProton,
		Stability:      LevelStable,
		CoreTimingRate: 1.0,
		Nodes: []NodePattern{
			{Offset: Coord{0, 0, 0}, TimingRate: 1.0, Role: "nuclear_core"},
			{Offset: Coord{1, 0, 0}, TimingRate: 0.9, Role: "stabilizing_shell"},
			{Offset: Coord{-1, 0, 0}, TimingRate: 0.9, Role: "stabilizing_shell"},
			{Offset: Coord{0, 1, 0}, TimingRate: 0.9, Role: "stabilizing_shell"},
			{Offset: Coord{0, -1, 0}, TimingRate: 0.9, Role: "stabilizing_shell"},
			{Offset: Coord{0, 0, 1}, TimingRate: 0.9, Role: "stabilizing_shell"},
			{Offset: Coord{0, 0, -1}, TimingRate: 0.9, Role: "stabilizing_shell"},
		},
		StabilityMetrics: map[string]float64{
			"core_coherence":  0.95,
			"shell_stability": 0.90,
		},
		CosmologicalViable: false,
	}
}

// NewNeutrinoPattern builds the sparse neutrino template with a deterministic
// flavor oscillation cycle.
func NewNeutrinoPattern(flavor string, oscillationPeriod int) *Pattern {
	if flavor == "" {
		flavor = "electron"
	}
	if oscillationPeriod <= 0 {
		oscillationPeriod = 1000
	}
	return &Pattern{
		Kind:           KindNeutrino,
		Stability:      LevelStable,
		CoreTimingRate: 0.1,
		Nodes: []NodePattern{
			{Offset: Coord{0, 0, 0}, TimingRate: 0.1, Role: "interaction_mediator"},
			{Offset: Coord{3, 0, 0}, TimingRate: 0.05, Role: "sparse_interaction"},
			{Offset: Coord{0, 3, 0}, TimingRate: 0.05, Role: "sparse_interaction"},
		},
		StabilityMetrics: map[string]float64{
			"interaction_minimal":    0.95,
			"propagation_efficiency": 0.99,
			"matter_transparency":    0.98,
		},
		CosmologicalViable: true,
		ParticipatesInWeak: true,
		Flavor:             flavor,
		OscillationPeriod:  oscillationPeriod,
	}
}

// NewPhotonPattern builds the electromagnetic-disturbance template carrying
// the given energy.
func NewPhotonPattern(energyEV float64) *Pattern {
	p := &Pattern{
		Kind:           KindPhoton,
		Stability:      LevelStable,
		CoreTimingRate: 1.5,
		Nodes: []NodePattern{
			{Offset: Coord{0, 0, 0}, TimingRate: 1.5, Role: "electromagnetic_core"},

			{Offset: Coord{1, 0, 0}, TimingRate: 1.2, Role: "propagation_front"},
			{Offset: Coord{-1, 0, 0}, TimingRate: 1.2, Role: "propagation_front"},
			{Offset: Coord{0, 1, 0}, TimingRate: 1.2, Role: "propagation_front"},
			{Offset: Coord{0, -1, 0}, TimingRate: 1.2, Role: "propagation_front"},
			{Offset: Coord{0, 0, 1}, TimingRate: 1.2, Role: "propagation_front"},
			{Offset: Coord{0, 0, -1}, TimingRate: 1.2, Role: "propagation_front"},

			{Offset: Coord{1, 1, 0}, TimingRate: 1.0, Role: "edge_propagation"},
			{Offset: Coord{-1, -1, 0}, TimingRate: 1.0, Role: "edge_propagation"},
			{Offset: Coord{1, -1, 0}, TimingRate: 1.0, Role: "edge_propagation"},
			{Offset: Coord{-1, 1, 0}, TimingRate: 1.0, Role: "edge_propagation"},

			{Offset: Coord{2, 0, 0}, TimingRate: 0.8, Role: "extended_propagation"},
			{Offset: Coord{-2, 0, 0}, TimingRate: 0.8, Role: "extended_propagation"},
			{Offset: Coord{0, 2, 0}, TimingRate: 0.8, Role: "extended_propagation"},
			{Offset: Coord{0, -2, 0}, TimingRate: 0.8, Role: "extended_propagation"},
		},
		StabilityMetrics: map[string]float64{
			"electromagnetic_coherence": 0.99,
			"propagation_efficiency":    0.98,
			"space_traversal":           0.99,
			"interaction_capability":    0.95,
			"orbital_coupling":          0.90,
			"energy_conservation":       0.99,
		},
		CosmologicalViable: true,
		Frequency:          1.0,
		Wavelength:         1.0,
	}
	p.SetPhotonEnergy(energyEV)
	return p
}

// SetPhotonEnergy sets the photon's energy content and inverts it into the
// template's timing rate (rate = 1 + E/13.6, the hydrogen-scale calibration).
func (p *Pattern) SetPhotonEnergy(energyEV float64) {
	p.EnergyContent = energyEV
	p.Frequency = energyEV / 4.136e-15
	if p.Frequency > 0 {
		p.Wavelength = 3e8 / p.Frequency
	} else {
		p.Wavelength = 1.0
	}
	p.CoreTimingRate = 1.0 + energyEV/13.6
}

// StabilityScore computes the pattern's stability under the given echo field
// strength: 80% from the core timing rate, 20% from the field.
func (p *Pattern) StabilityScore(fieldStrength float64) float64 {
	base := p.CoreTimingRate * 0.8
	field := math.Min(fieldStrength/100.0, 1.0) * 0.2
	return base + field
}

// AGNSurvival estimates survival probability under extreme field stress.
// Only the enhanced proton carries the shell-weighted model; other kinds fall
// back to the plain stability score.
func (p *Pattern) AGNSurvival(fieldStrength float64) float64 {
	if p.Kind != KindEnhancedProton {
		return math.Min(p.StabilityScore(fieldStrength), 0.99)
	}

	core := p.StabilityMetrics["core_coherence"] * 0.4
	primary := p.StabilityMetrics["shell_stability"] * 0.3
	intermediate := p.StabilityMetrics["intermediate_shell_stability"] * 0.2
	field := p.StabilityMetrics["field_resilience"] * 0.1

	stress := math.Min(fieldStrength/1000.0, 10.0)
	reduction := 1.0 / (1.0 + stress*0.015)

	return math.Min((core+primary+intermediate+field)*reduction, 0.99)
}

// CosmologicalSurvival reports whether the pattern survives the given
// extreme field strength.
func (p *Pattern) CosmologicalSurvival(agnFieldStrength float64) bool {
	return p.StabilityScore(agnFieldStrength) >= 0.95
}

// OscillateFlavor advances the neutrino flavor deterministically from the
// tick count. No-op for other kinds.
func (p *Pattern) OscillateFlavor(tick int) {
	if p.Kind != KindNeutrino || p.OscillationPeriod <= 0 {
		return
	}
	idx := (tick / p.OscillationPeriod) % len(neutrinoFlavorCycle)
	p.Flavor = neutrinoFlavorCycle[idx]
}

// Clone deep-copies the pattern so the copy shares no mutable state with the
// original. Decay products are built from clones of the composite's stored
// constituents.
func (p *Pattern) Clone() *Pattern {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Nodes = make([]NodePattern, len(p.Nodes))
	copy(cp.Nodes, p.Nodes)
	cp.StabilityMetrics = make(map[string]float64, len(p.StabilityMetrics))
	for k, v := range p.StabilityMetrics {
		cp.StabilityMetrics[k] = v
	}
	return &cp
}
