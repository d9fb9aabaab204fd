package etm

// EchoField is the scalar reinforcement value at one lattice cell. Fields are
// created at engine construction and live for the engine's lifetime; they are
// never removed.
type EchoField struct {
	Value   float64
	History []float64
}

// Decay scales the field by the configured factor. Applied to every cell
// every tick.
func (f *EchoField) Decay(factor float64) {
	f.Value *= factor
}

// Reinforce adds an explicit reinforcement and records it in the history.
func (f *EchoField) Reinforce(amount float64) {
	f.Value += amount
	f.History = append(f.History, amount)
}

// applyEchoDecay runs the decay pass over the whole lattice.
func (e *Engine) applyEchoDecay() {
	for _, f := range e.Fields {
		f.Decay(e.Config.DecayFactor)
	}
}

// applyEchoInheritance adds alpha * mean(neighbor values) to every cell.
// Neighbor reads come from a snapshot taken before any write, so the update
// is order-independent across cells.
func (e *Engine) applyEchoInheritance() {
	alpha := e.Config.InheritanceAlpha
	if alpha <= 0 {
		return
	}

	snapshot := make(map[Coord]float64, len(e.Fields))
	for pos, f := range e.Fields {
		snapshot[pos] = f.Value
	}

	for pos, f := range e.Fields {
		neighbors := e.Lattice.Neighbors(pos, e.Config.Connectivity)
		if len(neighbors) == 0 {
			continue
		}
		sum := 0.0
		for _, n := range neighbors {
			sum += snapshot[n]
		}
		f.Value += alpha * sum / float64(len(neighbors))
	}
}

// echoMatch computes the hybrid echo value at a position and reports whether
// it clears the return-eligibility floor. This is the field's only externally
// visible predicate.
func (e *Engine) echoMatch(pos Coord) (bool, float64) {
	local := e.Fields[pos].Value

	neighbors := e.Lattice.Neighbors(pos, e.Config.Connectivity)
	neigh := 0.0
	if len(neighbors) > 0 {
		sum := 0.0
		for _, n := range neighbors {
			sum += e.Fields[n].Value
		}
		neigh = sum / float64(len(neighbors))
	}

	hybrid := e.Config.EchoHybridLocalWeight*local + e.Config.EchoHybridNeighborWeight*neigh
	return hybrid >= e.Config.RhoMin, hybrid
}
