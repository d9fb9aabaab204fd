package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etm-sim/etm-sim/etm"
)

func sampleResult(ticks int) *etm.SimulationResult {
	cfg := etm.DefaultConfig()
	cfg.TrialName = "sample"
	cfg.MaxTicks = ticks

	history := make([]etm.TickSnapshot, 0, ticks)
	for i := 1; i <= ticks; i++ {
		snap := etm.TickSnapshot{
			Tick:         i,
			EnergyAfter:  float64(100 + i),
			EnergyBefore: float64(100 + i),
			ReturnResults: []etm.ReturnResult{
				{IdentityID: "id-1", Allowed: i%2 == 0},
			},
			CoexistenceRegistry: map[string][]string{},
		}
		if i == 3 {
			snap.DecayEvents = []etm.DecayEvent{{ID: "ev-1", Tick: i}}
		}
		history = append(history, snap)
	}

	return &etm.SimulationResult{
		Config:               cfg,
		FinalTick:            ticks,
		TotalIdentities:      3,
		CoexistencePositions: 1,
		Totals:               etm.Metrics{TicksRun: ticks, BetaDecays: 1},
		History:              history,
	}
}

func TestSummarize_EnergyStatistics(t *testing.T) {
	s := Summarize(sampleResult(5))

	// Energies 101..105: mean 103, final 105.
	assert.Equal(t, "sample", s.TrialName)
	assert.Equal(t, 5, s.TicksRun)
	assert.InDelta(t, 103.0, s.EnergyMean, 1e-12)
	assert.InDelta(t, 105.0, s.EnergyFinal, 1e-12)
	assert.Greater(t, s.EnergyStdDev, 0.0)
	assert.Equal(t, 1, s.BetaDecays)
}

func TestSummarize_EmptyHistory(t *testing.T) {
	r := sampleResult(0)
	s := Summarize(r)
	assert.Equal(t, 0.0, s.EnergyMean)
	assert.Equal(t, 0.0, s.EnergyFinal)
}

func TestDigest_CountsPerTick(t *testing.T) {
	digests := Digest(sampleResult(4).History)
	require.Len(t, digests, 4)

	assert.Equal(t, 1, digests[0].ReturnsDenied)
	assert.Equal(t, 1, digests[1].ReturnsAllowed)
	assert.Equal(t, 1, digests[2].DecayEvents)
	assert.InDelta(t, 104.0, digests[3].EnergyAfter, 1e-12)
}

func TestBuild_UnderCapKeepsFullHistory(t *testing.T) {
	r := sampleResult(10)
	export, err := Build(r, DefaultMaxExportBytes)
	require.NoError(t, err)
	assert.Len(t, export.Snapshots, 10)
}

func TestBuild_ThinningPreservesEventTicks(t *testing.T) {
	r := sampleResult(200)

	// A tight cap forces thinning; the decay tick must survive it.
	export, err := Build(r, 48*1024)
	require.NoError(t, err)
	require.NotEmpty(t, export.Digests)
	assert.Len(t, export.Digests, 200, "digests are never thinned")

	if len(export.Snapshots) > 0 {
		assert.Less(t, len(export.Snapshots), 200)
		found := false
		for _, snap := range export.Snapshots {
			if len(snap.DecayEvents) > 0 {
				found = true
			}
		}
		assert.True(t, found, "event-bearing tick dropped by thinning")
	}
}

func TestWrite_ProducesValidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, Write(sampleResult(5), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var export Export
	require.NoError(t, json.Unmarshal(raw, &export))
	assert.Equal(t, "sample", export.Summary.TrialName)
	assert.Len(t, export.Digests, 5)
}
