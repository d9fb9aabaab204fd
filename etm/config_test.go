package etm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Validates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestDefaultConfig_ValidatedConstants(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8, cfg.Connectivity)
	assert.Equal(t, 0.11, cfg.PhaseTolerance)
	assert.Equal(t, 25.0, cfg.RhoMin)
	assert.Equal(t, 0.95, cfg.DecayFactor)
	assert.Equal(t, 0.10, cfg.InheritanceAlpha)
	assert.Equal(t, 0.6, cfg.EchoHybridLocalWeight)
	assert.Equal(t, 0.4, cfg.EchoHybridNeighborWeight)
	assert.Equal(t, 0.01, cfg.Epsilon)
	assert.Equal(t, 900, cfg.BetaDecayLifetimeTicks)
	assert.Equal(t, MethodSymbolicMutation, cfg.DefaultResolution)
	assert.True(t, cfg.EnableCalibratedEnergy)
	assert.Equal(t, 1000.0, cfg.KineticScale)
	assert.Equal(t, 0.003723, cfg.PotentialCoeff)
	assert.Equal(t, 2.63, cfg.StabilityScale)
	assert.Equal(t, 13.6, cfg.CoulombConstant)
}

func TestConfig_Validate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad connectivity", func(c *Config) { c.Connectivity = 7 }},
		{"zero dimension", func(c *Config) { c.LatticeSize[1] = 0 }},
		{"negative dimension", func(c *Config) { c.LatticeSize[2] = -3 }},
		{"zero decay factor", func(c *Config) { c.DecayFactor = 0 }},
		{"decay above one", func(c *Config) { c.DecayFactor = 1.5 }},
		{"phase tolerance too large", func(c *Config) { c.PhaseTolerance = 0.5 }},
		{"negative epsilon", func(c *Config) { c.Epsilon = -0.01 }},
		{"negative ticks", func(c *Config) { c.MaxTicks = -1 }},
		{"negative lifetime", func(c *Config) { c.BetaDecayLifetimeTicks = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnableNucleonPhysics_SwitchesDependencies(t *testing.T) {
	cfg := DefaultConfig()
	require.False(t, cfg.EnableBetaDecay)

	cfg.EnableNucleonPhysics()

	assert.True(t, cfg.EnableNucleonStructure)
	assert.True(t, cfg.EnableWeakInteractions)
	assert.True(t, cfg.EnablePatternReorganization)
	assert.True(t, cfg.EnableBetaDecay)
	assert.True(t, cfg.EnableConservationEnforcement)
	assert.True(t, cfg.EnableAntiparticles)
	assert.True(t, cfg.EnableCalibratedEnergy)
	require.NoError(t, cfg.Validate())
}
