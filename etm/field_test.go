package etm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoField_DecayAndReinforce(t *testing.T) {
	f := &EchoField{Value: 100.0}

	f.Decay(0.95)
	assert.InDelta(t, 95.0, f.Value, 1e-12)

	f.Reinforce(1.0)
	assert.InDelta(t, 96.0, f.Value, 1e-12)
	assert.Equal(t, []float64{1.0}, f.History)
}

func newFieldTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.LatticeSize = [3]int{5, 5, 5}
	cfg.Connectivity = 6
	e, err := NewEngine(cfg)
	require.NoError(t, err)
	return e
}

func TestApplyEchoDecay_ScalesEveryCell(t *testing.T) {
	e := newFieldTestEngine(t)
	e.Fields[Coord{1, 1, 1}].Value = 40.0
	e.Fields[Coord{3, 3, 3}].Value = 10.0

	e.applyEchoDecay()

	assert.InDelta(t, 38.0, e.Fields[Coord{1, 1, 1}].Value, 1e-12)
	assert.InDelta(t, 9.5, e.Fields[Coord{3, 3, 3}].Value, 1e-12)
}

func TestApplyEchoInheritance_UsesPreWriteSnapshot(t *testing.T) {
	e := newFieldTestEngine(t)
	e.Config.InheritanceAlpha = 0.1

	// Two adjacent seeded cells: each must inherit from the other's
	// pre-update value, not the updated one.
	a, b := Coord{2, 2, 2}, Coord{3, 2, 2}
	e.Fields[a].Value = 60.0
	e.Fields[b].Value = 30.0

	e.applyEchoInheritance()

	// a has 6 neighbors, one of which held 30 before the pass.
	assert.InDelta(t, 60.0+0.1*30.0/6.0, e.Fields[a].Value, 1e-9)
	// b likewise saw a's original 60.
	assert.InDelta(t, 30.0+0.1*60.0/6.0, e.Fields[b].Value, 1e-9)
}

func TestApplyEchoInheritance_ZeroAlphaIsNoOp(t *testing.T) {
	e := newFieldTestEngine(t)
	e.Config.InheritanceAlpha = 0.0
	e.Fields[Coord{2, 2, 2}].Value = 50.0

	e.applyEchoInheritance()
	assert.Equal(t, 50.0, e.Fields[Coord{2, 2, 2}].Value)
}

func TestEchoMatch_HybridWeighting(t *testing.T) {
	e := newFieldTestEngine(t)
	e.Config.RhoMin = 25.0
	e.Config.EchoHybridLocalWeight = 0.6
	e.Config.EchoHybridNeighborWeight = 0.4

	pos := Coord{2, 2, 2}
	e.Fields[pos].Value = 30.0
	for _, n := range e.Lattice.Neighbors(pos, e.Config.Connectivity) {
		e.Fields[n].Value = 20.0
	}

	ok, hybrid := e.echoMatch(pos)
	assert.True(t, ok)
	assert.InDelta(t, 0.6*30.0+0.4*20.0, hybrid, 1e-9)
}

func TestEchoMatch_BelowFloorFails(t *testing.T) {
	e := newFieldTestEngine(t)
	ok, hybrid := e.echoMatch(Coord{2, 2, 2})
	assert.False(t, ok)
	assert.Equal(t, 0.0, hybrid)
}
