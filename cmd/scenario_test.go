package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etm-sim/etm-sim/etm"
)

func TestLoadScenario_UnknownNameFails(t *testing.T) {
	_, err := LoadScenario("no-such-scenario", "")
	assert.Error(t, err)
}

func TestLoadScenario_BuiltinCoexistence(t *testing.T) {
	s, err := LoadScenario("coexistence", "")
	require.NoError(t, err)

	assert.Equal(t, "coexistence", s.Name)
	assert.Len(t, s.Identities, 2)
	assert.Len(t, s.Recruiters, 1)
	assert.False(t, s.Nucleons)
}

func TestLoadScenario_YAMLOverridesBuiltin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	preset := `
name: custom-decay
max_ticks: 40
beta_decay_lifetime_ticks: 10
`
	require.NoError(t, os.WriteFile(path, []byte(preset), 0644))

	s, err := LoadScenario("beta-decay", path)
	require.NoError(t, err)

	assert.Equal(t, "custom-decay", s.Name)
	require.NotNil(t, s.MaxTicks)
	assert.Equal(t, 40, *s.MaxTicks)
	require.NotNil(t, s.BetaDecayLifetimeTicks)
	assert.Equal(t, 10, *s.BetaDecayLifetimeTicks)
	// Built-in fields not named in the preset survive the merge.
	assert.True(t, s.Nucleons)
	assert.Len(t, s.Neutrons, 1)
}

func TestScenario_ApplyConfig(t *testing.T) {
	s, err := LoadScenario("beta-decay", "")
	require.NoError(t, err)

	cfg := etm.DefaultConfig()
	s.ApplyConfig(&cfg)

	assert.Equal(t, "beta-decay", cfg.TrialName)
	assert.True(t, cfg.EnableBetaDecay)
	assert.Equal(t, 20, cfg.BetaDecayLifetimeTicks)
	assert.Equal(t, 30, cfg.MaxTicks)
}

func TestScenario_PopulateCoexistence(t *testing.T) {
	s, err := LoadScenario("coexistence", "")
	require.NoError(t, err)

	cfg := etm.DefaultConfig()
	s.ApplyConfig(&cfg)
	engine, err := etm.NewEngine(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Populate(engine))

	center := etm.Coord{X: 15, Y: 15, Z: 15}
	assert.Len(t, engine.Registry[center], 2)
	assert.Contains(t, engine.Recruiters, center)
	assert.Equal(t, 60.0, engine.Fields[center].Value)
}

func TestScenario_PopulateAnnihilationPlacesAntiparticle(t *testing.T) {
	s, err := LoadScenario("annihilation", "")
	require.NoError(t, err)

	cfg := etm.DefaultConfig()
	s.ApplyConfig(&cfg)
	engine, err := etm.NewEngine(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Populate(engine))

	center := etm.Coord{X: 15, Y: 15, Z: 15}
	pair := engine.Registry[center]
	require.Len(t, pair, 2)

	var antiparticles int
	for _, entry := range pair {
		id, ok := engine.Identity(entry)
		require.True(t, ok)
		if id.IsAntiparticle {
			antiparticles++
		}
	}
	assert.Equal(t, 1, antiparticles)
}

func TestScenario_PopulateRejectsBadPattern(t *testing.T) {
	s := &Scenario{
		Name: "bad",
		Identities: []IdentitySpec{
			{Tag: "X", Ancestry: "x", Position: [3]int{1, 1, 1}, Pattern: "quark"},
		},
	}
	engine, err := etm.NewEngine(etm.DefaultConfig())
	require.NoError(t, err)
	assert.Error(t, s.Populate(engine))
}
