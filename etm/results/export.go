// results/export.go
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/etm-sim/etm-sim/etm"
)

// DefaultMaxExportBytes caps the serialized export size. Histories that
// would exceed it get thinned before writing.
const DefaultMaxExportBytes = 8 << 20

// TickDigest is the compact per-tick record kept in exports: counters only,
// no per-identity detail.
type TickDigest struct {
	Tick                 int     `json:"tick"`
	Identities           int     `json:"identities"`
	ReturnsAllowed       int     `json:"returns_allowed"`
	ReturnsDenied        int     `json:"returns_denied"`
	DetectionEvents      int     `json:"detection_events"`
	DecayEvents          int     `json:"decay_events"`
	CoexistencePositions int     `json:"coexistence_positions"`
	Composites           int     `json:"composite_particles"`
	EnergyAfter          float64 `json:"energy"`
}

// Summary aggregates the run into headline statistics.
type Summary struct {
	TrialName            string  `json:"trial_name"`
	Seed                 int64   `json:"seed"`
	TicksRun             int     `json:"ticks_run"`
	FinalIdentities      int     `json:"final_identities"`
	CoexistencePositions int     `json:"coexistence_positions"`
	CompositeParticles   int     `json:"composite_particles"`

	ReturnsAllowed      int `json:"returns_allowed"`
	ReturnsDenied       int `json:"returns_denied"`
	Reformations        int `json:"reformations"`
	DetectionEvents     int `json:"detection_events"`
	ConflictResolutions int `json:"conflict_resolutions"`
	Annihilations       int `json:"annihilations"`
	PhotonsCreated      int `json:"photons_created"`
	BetaDecays          int `json:"beta_decays"`
	WeakInteractions    int `json:"weak_interactions"`

	EnergyMean          float64 `json:"energy_mean"`
	EnergyStdDev        float64 `json:"energy_stddev"`
	EnergyFinal         float64 `json:"energy_final"`
	EnergyReleasedTotal float64 `json:"energy_released_total"`
	PhotonEnergyTotal   float64 `json:"photon_energy_total"`
}

// Export is the on-disk result document: the summary, the digest series, and
// the full snapshots for whichever ticks survive thinning.
type Export struct {
	Summary   Summary            `json:"summary"`
	Digests   []TickDigest       `json:"digests"`
	Snapshots []etm.TickSnapshot `json:"snapshots,omitempty"`
}

// Summarize reduces a simulation result to headline statistics. Energy mean
// and standard deviation come from the per-tick post-pipeline energies.
func Summarize(r *etm.SimulationResult) Summary {
	energies := make([]float64, 0, len(r.History))
	for _, snap := range r.History {
		energies = append(energies, snap.EnergyAfter)
	}

	s := Summary{
		TrialName:            r.Config.TrialName,
		Seed:                 r.Config.Seed,
		TicksRun:             r.Totals.TicksRun,
		FinalIdentities:      r.TotalIdentities,
		CoexistencePositions: r.CoexistencePositions,
		CompositeParticles:   r.CompositeParticles,
		ReturnsAllowed:       r.Totals.ReturnsAllowed,
		ReturnsDenied:        r.Totals.ReturnsDenied,
		Reformations:         r.Totals.Reformations,
		DetectionEvents:      r.Totals.DetectionEvents,
		ConflictResolutions:  r.Totals.ConflictResolutions,
		Annihilations:        r.Totals.Annihilations,
		PhotonsCreated:       r.Totals.PhotonsCreated,
		BetaDecays:           r.Totals.BetaDecays,
		WeakInteractions:     r.Totals.WeakInteractions,
		EnergyReleasedTotal:  r.Totals.EnergyReleasedTotal,
		PhotonEnergyTotal:    r.Totals.PhotonEnergyTotal,
	}
	if len(energies) > 0 {
		s.EnergyMean = stat.Mean(energies, nil)
		s.EnergyStdDev = stat.StdDev(energies, nil)
		s.EnergyFinal = energies[len(energies)-1]
	}
	return s
}

// Digest builds the compact per-tick series from the full history.
func Digest(history []etm.TickSnapshot) []TickDigest {
	digests := make([]TickDigest, 0, len(history))
	for _, snap := range history {
		d := TickDigest{
			Tick:                 snap.Tick,
			Identities:           len(snap.Identities),
			DetectionEvents:      len(snap.DetectionEvents),
			DecayEvents:          len(snap.DecayEvents),
			CoexistencePositions: len(snap.CoexistenceRegistry),
			Composites:           snap.CompositeCount,
			EnergyAfter:          snap.EnergyAfter,
		}
		for _, rr := range snap.ReturnResults {
			if rr.Allowed {
				d.ReturnsAllowed++
			} else {
				d.ReturnsDenied++
			}
		}
		digests = append(digests, d)
	}
	return digests
}

// Build assembles the export document, thinning the snapshot series until
// the serialized form fits under maxBytes. Digests are never thinned; full
// snapshots are halved (every other tick) until the document fits, and as a
// last resort dropped entirely. Ticks with events always survive thinning.
func Build(r *etm.SimulationResult, maxBytes int) (*Export, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxExportBytes
	}
	out := &Export{
		Summary:   Summarize(r),
		Digests:   Digest(r.History),
		Snapshots: r.History,
	}

	stride := 1
	for {
		raw, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("marshal export: %w", err)
		}
		if len(raw) <= maxBytes {
			return out, nil
		}
		if len(out.Snapshots) == 0 {
			return nil, fmt.Errorf("export exceeds %d bytes even without snapshots (%d)", maxBytes, len(raw))
		}
		stride *= 2
		out.Snapshots = thin(r.History, stride)
		if stride > len(r.History) {
			out.Snapshots = nil
		}
		logrus.Debugf("export over %d bytes, thinning snapshots to stride %d (%d kept)",
			maxBytes, stride, len(out.Snapshots))
	}
}

// thin keeps every stride-th snapshot plus any tick carrying detection or
// decay events, in tick order.
func thin(history []etm.TickSnapshot, stride int) []etm.TickSnapshot {
	var kept []etm.TickSnapshot
	for i, snap := range history {
		if i%stride == 0 || len(snap.DetectionEvents) > 0 || len(snap.DecayEvents) > 0 {
			kept = append(kept, snap)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Tick < kept[j].Tick })
	return kept
}

// Write serializes the result to path, applying the default size cap.
func Write(r *etm.SimulationResult, path string) error {
	export, err := Build(r, DefaultMaxExportBytes)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	logrus.Infof("Results written to %s (%d bytes, %d snapshots)", path, len(raw), len(export.Snapshots))
	return nil
}
