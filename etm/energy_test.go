package etm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEnergyTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.LatticeSize = [3]int{10, 10, 10}
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	return e
}

func TestParticleEnergy_NoPositionOrPatternIsZero(t *testing.T) {
	e := newEnergyTestEngine(t)

	floating := NewIdentity("X", "x", 0.3, 0.05, nil)
	floating.Pattern = NewElectronPattern()
	assert.Equal(t, 0.0, e.ParticleEnergy(floating))

	pos := Coord{5, 5, 5}
	patternless := NewIdentity("X", "x", 0.3, 0.05, &pos)
	assert.Equal(t, 0.0, e.ParticleEnergy(patternless))
}

func TestParticleEnergy_CalibratedTerms(t *testing.T) {
	e := newEnergyTestEngine(t)
	pos := Coord{8, 5, 5} // distance 3 from the 10^3 lattice center
	e.Fields[pos].Value = 40.0

	id := NewIdentity("E1", "lepton", 0.25, 0.03, &pos)
	id.Pattern = NewElectronPattern()

	want := 0.03*1000.0 + // kinetic
		-40.0*0.003723 + // potential
		-13.6/3.0 + // coulomb-like, distance 3
		id.Pattern.StabilityScore(100.0)*2.63 // stability

	assert.InDelta(t, want, e.ParticleEnergy(id), 1e-9)
}

func TestParticleEnergy_CenterDistanceFloor(t *testing.T) {
	e := newEnergyTestEngine(t)
	center := e.Center

	id := NewIdentity("E1", "lepton", 0.25, 0.0, &center)
	id.Pattern = NewElectronPattern()

	// At the reference position the distance clamps to 0.1.
	want := -e.Fields[center].Value*0.003723 - 13.6/0.1 +
		id.Pattern.StabilityScore(100.0)*2.63
	assert.InDelta(t, want, e.ParticleEnergy(id), 1e-9)
}

func TestParticleEnergy_LegacyConstants(t *testing.T) {
	e := newEnergyTestEngine(t)
	e.Config.EnableCalibratedEnergy = false
	pos := Coord{8, 5, 5}
	e.Fields[pos].Value = 40.0

	id := NewIdentity("E1", "lepton", 0.25, 0.03, &pos)
	id.Pattern = NewElectronPattern()

	want := 0.03*1360.0 +
		-40.0*0.08 +
		-13.6/3.0 +
		id.Pattern.StabilityScore(100.0)*5.0

	assert.InDelta(t, want, e.ParticleEnergy(id), 1e-9)
}

func TestParticleEnergy_BitForBitReproducible(t *testing.T) {
	build := func() float64 {
		cfg := DefaultConfig()
		cfg.LatticeSize = [3]int{10, 10, 10}
		e, err := NewEngine(cfg)
		if err != nil {
			t.Fatal(err)
		}
		pos := Coord{7, 3, 5}
		e.Fields[pos].Value = 33.7
		id := NewIdentity("E1", "lepton", 0.25, 0.03, &pos)
		id.Pattern = NewEnhancedProtonPattern()
		return e.ParticleEnergy(id)
	}

	first := build()
	for i := 0; i < 5; i++ {
		if got := build(); math.Float64bits(got) != math.Float64bits(first) {
			t.Fatalf("energy not bit-for-bit stable: %x vs %x",
				math.Float64bits(got), math.Float64bits(first))
		}
	}
}

func TestTotalEnergy_SumsLivingIdentities(t *testing.T) {
	e := newEnergyTestEngine(t)
	posA, posB := Coord{2, 2, 2}, Coord{7, 7, 7}

	a := NewIdentity("A", "x", 0.3, 0.05, &posA)
	a.Pattern = NewElectronPattern()
	b := NewIdentity("B", "y", 0.6, 0.02, &posB)
	b.Pattern = NewLegacyProtonPattern()
	require.NoError(t, e.AddIdentity(a))
	require.NoError(t, e.AddIdentity(b))

	assert.InDelta(t, e.ParticleEnergy(a)+e.ParticleEnergy(b), e.totalEnergy(), 1e-9)

	e.removeIdentity(a)
	assert.InDelta(t, e.ParticleEnergy(b), e.totalEnergy(), 1e-9)
}
