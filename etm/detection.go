package etm

import (
	"math"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DetectionEventType classifies what raised a detection event.
type DetectionEventType string

const (
	DetectionMeasurementProbe  DetectionEventType = "measurement_probe"
	DetectionParticleCollision DetectionEventType = "particle_collision"
)

// MutationOutcome records what a resolution did to one identity.
type MutationOutcome struct {
	IdentityID  string  `json:"identity_id"`
	Tag         string  `json:"tag,omitempty"`
	NewAncestry string  `json:"new_ancestry,omitempty"`
	NewTag      string  `json:"new_tag,omitempty"`
	PhaseOffset float64 `json:"phase_offset,omitempty"`
	NewPhase    float64 `json:"new_phase,omitempty"`
}

// DetectionEvent is the ephemeral record of one detection and its
// resolution. Events are produced and consumed within a single tick; only
// the tick snapshot retains copies.
type DetectionEvent struct {
	Type           DetectionEventType `json:"type"`
	Position       Coord              `json:"position"`
	Tick           int                `json:"tick"`
	TriggerID      string             `json:"trigger_id,omitempty"`
	AffectedIDs    []string           `json:"affected_ids"`
	Method         ConflictMethod     `json:"method"`
	Mutations      []MutationOutcome  `json:"mutations,omitempty"`
	EnergyReleased float64            `json:"energy_released,omitempty"`
	PhotonID       string             `json:"photon_id,omitempty"`
	PhotonEnergy   float64            `json:"photon_energy,omitempty"`
}

// occupiedPositions returns the registry keys with at least minCount living
// identities, in deterministic order.
func (e *Engine) occupiedPositions(minCount int) []Coord {
	positions := make([]Coord, 0, len(e.Registry))
	for pos, ids := range e.Registry {
		if len(ids) >= minCount {
			positions = append(positions, pos)
		}
	}
	sort.Slice(positions, func(i, j int) bool {
		a, b := positions[i], positions[j]
		if a.X != b.X {
			return a.X < b.X
		}
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.Z < b.Z
	})
	return positions
}

// detectionRequired scans a position for the first unresolved pair of
// identical identities (equal ancestry, circular phase difference below
// epsilon). One qualifying pair is enough; no further scanning happens.
func (e *Engine) detectionRequired(pos Coord) bool {
	coexisting := e.identitiesAt(pos)
	if len(coexisting) < 2 {
		return false
	}
	var unresolved []*Identity
	for _, id := range coexisting {
		if id.Resolution != "" {
			continue
		}
		for _, other := range unresolved {
			if id.Ancestry == other.Ancestry && circularPhaseDiff(id.Phase, other.Phase) < e.Config.Epsilon {
				return true
			}
		}
		unresolved = append(unresolved, id)
	}
	return false
}

// processDetectionEvents runs the measurement-probe scan: ambiguity between
// co-located identities is resolved only when a detection event fires. With
// passive coexistence enabled, co-location alone never raises one; detection
// then comes only from particle collisions.
func (e *Engine) processDetectionEvents() {
	if e.Config.EnablePassiveCoexistence {
		return
	}
	for _, pos := range e.occupiedPositions(2) {
		if !e.detectionRequired(pos) {
			continue
		}

		affected := e.identitiesAt(pos)
		event := DetectionEvent{
			Type:     DetectionMeasurementProbe,
			Position: pos,
			Tick:     e.Tick,
			Method:   e.Config.DefaultResolution,
		}
		for _, id := range affected {
			event.AffectedIDs = append(event.AffectedIDs, id.ID)
		}
		e.Metrics.DetectionEvents++

		if e.Config.DetectionTriggersMutation {
			event.Mutations = e.resolveConflict(affected)
			e.Metrics.ConflictResolutions++
		}
		e.detectionEvents = append(e.detectionEvents, event)
		logrus.Debugf("[tick %07d] detection at %s resolved via %s (%d identities)",
			e.Tick, pos, event.Method, len(affected))
	}
}

// resolveConflict applies the configured resolution to every affected
// identity except the first, in stable input order, and marks all of them as
// resolved so they cannot re-trigger detection.
func (e *Engine) resolveConflict(affected []*Identity) []MutationOutcome {
	method := e.Config.DefaultResolution
	var outcomes []MutationOutcome

	for i, id := range affected[1:] {
		n := i + 1
		switch method {
		case MethodSymbolicMutation:
			tag := "_" + strconv.Itoa(n)
			id.ApplySymbolicMutation(MutationAncestryAppend, tag)
			outcomes = append(outcomes, MutationOutcome{
				IdentityID: id.ID, Tag: tag, NewAncestry: id.Ancestry,
			})
		case MethodIdentityRename:
			tag := "*" + strconv.Itoa(n)
			id.ApplySymbolicMutation(MutationIdentitySuffix, tag)
			outcomes = append(outcomes, MutationOutcome{
				IdentityID: id.ID, Tag: tag, NewTag: id.Tag,
			})
		case MethodPhaseSeparation:
			offset := float64(n) * 0.02
			id.Phase = math.Mod(id.Phase+offset, 1.0)
			outcomes = append(outcomes, MutationOutcome{
				IdentityID: id.ID, PhaseOffset: offset, NewPhase: id.Phase,
			})
		}
	}

	for _, id := range affected {
		id.Resolution = method
	}
	return outcomes
}

// processAnnihilation removes co-located particle/antiparticle pairs,
// summing their energies into a fresh photon at the position.
func (e *Engine) processAnnihilation() {
	var consumed []*Identity

	for _, pos := range e.occupiedPositions(2) {
		ids := e.identitiesAt(pos)
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				a, b := ids[i], ids[j]
				if a.Status == StatusFailed || b.Status == StatusFailed {
					continue
				}
				if !isAnnihilationPair(a, b) || alreadyConsumed(consumed, a, b) {
					continue
				}

				energyA := e.ParticleEnergy(a)
				energyB := e.ParticleEnergy(b)
				total := energyA + energyB

				photonPattern := NewPhotonPattern(total)
				p := pos
				photon := NewIdentity("PHOTON", "photon", 0.0, photonPattern.CoreTimingRate, &p)
				photon.Pattern = photonPattern
				photon.CreationTick = e.Tick

				event := DetectionEvent{
					Type:           DetectionParticleCollision,
					Position:       pos,
					Tick:           e.Tick,
					TriggerID:      a.ID,
					AffectedIDs:    []string{b.ID},
					Method:         MethodExclusion,
					EnergyReleased: total,
					PhotonID:       photon.ID,
					PhotonEnergy:   photonPattern.EnergyContent,
				}
				e.detectionEvents = append(e.detectionEvents, event)

				consumed = append(consumed, a, b)
				e.addIdentity(photon)
				e.Metrics.Annihilations++
				e.Metrics.PhotonsCreated++
				e.Metrics.EnergyReleasedTotal += total

				logrus.Infof("[tick %07d] Annihilation at %s released %.3f eV", e.Tick, pos, total)
			}
		}
	}

	for _, id := range consumed {
		e.removeIdentity(id)
	}
}

func isAnnihilationPair(a, b *Identity) bool {
	return (a.IsAntiparticle && a.AntiparticleOf == b.ID) ||
		(b.IsAntiparticle && b.AntiparticleOf == a.ID)
}

func alreadyConsumed(consumed []*Identity, a, b *Identity) bool {
	for _, c := range consumed {
		if c == a || c == b {
			return true
		}
	}
	return false
}
