package etm

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Engine owns all simulation state and drives the tick pipeline. It is not
// safe for concurrent use: one engine, one goroutine, one tick at a time.
type Engine struct {
	Config  Config
	Lattice Lattice
	Center  Coord
	Tick    int

	// Identities holds every live identity in insertion order. Iteration
	// order over this slice is the engine's canonical processing order, so
	// repeated runs with the same seed replay identically.
	Identities []*Identity
	byID       map[string]*Identity

	// Registry maps lattice positions to the IDs of identities currently
	// there, in arrival order.
	Registry map[Coord][]string

	Recruiters map[Coord]*Recruiter
	Fields     map[Coord]*EchoField
	Composites map[string]*Composite

	// compositeOrder tracks creation order so nucleon sampling is stable
	// across identically seeded runs.
	compositeOrder []string

	Metrics *Metrics
	History []TickSnapshot

	rng *PartitionedRNG

	// Per-tick event buffers, flushed into the snapshot by recordTick.
	detectionEvents []DetectionEvent
	decayEvents     []DecayEvent
	returnResults   []ReturnResult
}

// NewEngine validates the configuration and builds an engine with a zeroed
// echo field at every lattice position.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	lattice := NewLattice(cfg.LatticeSize)
	e := &Engine{
		Config:     cfg,
		Lattice:    lattice,
		Center:     lattice.Center(),
		byID:       make(map[string]*Identity),
		Registry:   make(map[Coord][]string),
		Recruiters: make(map[Coord]*Recruiter),
		Fields:     make(map[Coord]*EchoField, cfg.LatticeSize[0]*cfg.LatticeSize[1]*cfg.LatticeSize[2]),
		Composites: make(map[string]*Composite),
		Metrics:    NewMetrics(),
		rng:        NewPartitionedRNG(cfg.Seed),
	}
	for _, pos := range lattice.Positions() {
		e.Fields[pos] = &EchoField{}
	}
	return e, nil
}

// AddIdentity places an identity into the simulation. Out-of-lattice
// positions are rejected; a nil position is allowed (off-lattice identity).
func (e *Engine) AddIdentity(id *Identity) error {
	if id.Position != nil && !e.Lattice.Contains(*id.Position) {
		return ErrOutOfBounds
	}
	e.addIdentity(id)
	return nil
}

// AddRecruiter installs the anchor rhythm at pos, replacing any existing one.
func (e *Engine) AddRecruiter(pos Coord, r *Recruiter) error {
	if !e.Lattice.Contains(pos) {
		return ErrOutOfBounds
	}
	e.Recruiters[pos] = r
	return nil
}

// SetEchoField overwrites the echo value at pos, typically to seed initial
// conditions before the first tick.
func (e *Engine) SetEchoField(pos Coord, value float64) error {
	f, ok := e.Fields[pos]
	if !ok {
		return ErrOutOfBounds
	}
	f.Value = value
	return nil
}

// addIdentity registers the identity in the ordered slice, the ID index and
// the position registry, and refreshes coexistence links at its position.
func (e *Engine) addIdentity(id *Identity) {
	e.Identities = append(e.Identities, id)
	e.byID[id.ID] = id
	if id.Position != nil {
		pos := *id.Position
		e.Registry[pos] = append(e.Registry[pos], id.ID)
		e.refreshCoexistence(pos)
	}
}

// removeIdentity unlinks the identity from all engine indexes.
func (e *Engine) removeIdentity(id *Identity) {
	delete(e.byID, id.ID)
	for i, candidate := range e.Identities {
		if candidate.ID == id.ID {
			e.Identities = append(e.Identities[:i], e.Identities[i+1:]...)
			break
		}
	}
	if id.Position != nil {
		pos := *id.Position
		ids := e.Registry[pos]
		for i, entry := range ids {
			if entry == id.ID {
				e.Registry[pos] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(e.Registry[pos]) == 0 {
			delete(e.Registry, pos)
		}
		e.refreshCoexistence(pos)
	}
}

// refreshCoexistence rewrites CoexistingWith for every identity at pos so
// the links always mirror the registry.
func (e *Engine) refreshCoexistence(pos Coord) {
	ids := e.Registry[pos]
	for _, entry := range ids {
		id, ok := e.byID[entry]
		if !ok {
			continue
		}
		id.CoexistingWith = id.CoexistingWith[:0]
		for _, other := range ids {
			if other != entry {
				id.CoexistingWith = append(id.CoexistingWith, other)
			}
		}
	}
}

// identitiesAt resolves the registry entries at pos, in arrival order.
func (e *Engine) identitiesAt(pos Coord) []*Identity {
	entries := e.Registry[pos]
	out := make([]*Identity, 0, len(entries))
	for _, entry := range entries {
		if id, ok := e.byID[entry]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Identity looks up a live identity by ID.
func (e *Engine) Identity(id string) (*Identity, bool) {
	found, ok := e.byID[id]
	return found, ok
}

// evaluateReturnEligibility runs the three-predicate return gate for one
// identity against the recruiter at its position. Missing recruiters are a
// structural denial, not a predicate failure.
func (e *Engine) evaluateReturnEligibility(id *Identity) ReturnResult {
	result := ReturnResult{IdentityID: id.ID}

	if id.Position == nil {
		result.Reason = "no_position"
		return result
	}
	rec, ok := e.Recruiters[*id.Position]
	if !ok {
		result.Reason = "no_recruiter"
		return result
	}

	result.PhaseDiff = circularPhaseDiff(id.Phase, rec.Phase)
	result.PhaseMatch = result.PhaseDiff <= e.Config.PhaseTolerance
	result.AncestryMatch = e.ancestryMatch(id.Ancestry, rec.Ancestry)
	result.EchoMatch, result.RhoHybrid = e.echoMatch(*id.Position)
	result.Allowed = result.PhaseMatch && result.AncestryMatch && result.EchoMatch
	return result
}

// executeReformation completes an allowed return: the identity locks onto
// the recruiter's rhythm and ancestry, reinforces the local echo field, and
// settles as complete or coexisting depending on occupancy.
func (e *Engine) executeReformation(id *Identity, rec *Recruiter) {
	pos := *id.Position
	id.Phase = rec.Phase
	id.Ancestry = rec.Ancestry
	e.Fields[pos].Reinforce(e.Config.ReinforcementAmount)
	rec.AddReturned(id.ID)

	if len(e.Registry[pos]) >= 2 {
		id.Status = StatusCoexisting
	} else {
		id.Status = StatusComplete
	}
	e.Metrics.Reformations++
	logrus.Debugf("[tick %07d] identity %s reformed at %s (%s)", e.Tick, id.ID[:8], pos, id.Status)
}

// processReturns evaluates every candidate identity once per tick, in the
// canonical slice order, then reforms the allowed ones. Evaluation finishes
// before any reformation so one identity's reinforcement never leaks into
// another's echo predicate within the same tick.
func (e *Engine) processReturns() {
	var allowed []*Identity
	for _, id := range e.Identities {
		switch id.Status {
		case StatusPending, StatusDenied, StatusAllowed:
		default:
			continue // settled, failed or coexisting identities stay put
		}
		if id.CompositeParent != "" {
			continue // bound constituents do not return on their own
		}

		result := e.evaluateReturnEligibility(id)
		e.returnResults = append(e.returnResults, result)

		if result.Allowed {
			id.Status = StatusAllowed
			e.Metrics.ReturnsAllowed++
			allowed = append(allowed, id)
		} else {
			id.Status = StatusDenied
			e.Metrics.ReturnsDenied++
		}
	}
	for _, id := range allowed {
		e.executeReformation(id, e.Recruiters[*id.Position])
	}
}

// advancePhases steps every identity, recruiter and oscillating pattern by
// one tick of rhythm.
func (e *Engine) advancePhases() {
	for _, id := range e.Identities {
		id.AdvancePhase()
		if id.Pattern != nil {
			id.Pattern.OscillateFlavor(e.Tick)
		}
	}
	for _, r := range e.Recruiters {
		r.AdvancePhase()
	}
}

// AdvanceTick runs one full pipeline pass. Stage order is fixed: rhythm,
// field decay, returns, detection, annihilation, nucleon physics, weak
// sampling, field inheritance, snapshot.
func (e *Engine) AdvanceTick() TickSnapshot {
	e.Tick++

	e.advancePhases()
	e.applyEchoDecay()

	energyBefore := e.totalEnergy()

	e.processReturns()
	if e.Config.EnableDetectionEvents {
		e.processDetectionEvents()
	}
	if e.Config.EnableAntiparticles {
		e.processAnnihilation()
	}
	e.processNucleonPhysics()
	if e.Config.EnableWeakInteractions {
		e.processWeakInteractions()
	}

	e.applyEchoInheritance()

	energyAfter := e.totalEnergy()
	return e.recordTick(energyBefore, energyAfter)
}

// recordTick builds the tick snapshot from the per-tick buffers, appends it
// to the history, and clears the buffers.
func (e *Engine) recordTick(energyBefore, energyAfter float64) TickSnapshot {
	snap := TickSnapshot{
		Tick:                e.Tick,
		CoexistenceRegistry: e.coexistenceRegistry(),
		CompositeCount:      len(e.Composites),
		EnergyBefore:        energyBefore,
		EnergyAfter:         energyAfter,
	}

	snap.Identities = make([]IdentityView, 0, len(e.Identities))
	for _, id := range e.Identities {
		snap.Identities = append(snap.Identities, IdentityView{
			ID:               id.ID,
			Tag:              id.Tag,
			Ancestry:         id.Ancestry,
			OriginalAncestry: id.OriginalAncestry,
			Phase:            id.Phase,
			Position:         id.Position,
			Status:           id.Status,
			TickMemory:       id.TickMemory,
			IsMutated:        id.IsMutated,
			StabilityScore:   id.StabilityScore,
			IsConstituent:    id.CompositeParent != "",
			IsDecayProduct:   id.IsDecayProduct,
		})
	}

	snap.ReturnResults = e.returnResults
	snap.DetectionEvents = e.detectionEvents
	snap.DecayEvents = e.decayEvents
	// Snapshot energy fields cover this tick's events only; the running
	// totals live in Metrics.
	var released, photon float64
	for _, ev := range e.detectionEvents {
		released += ev.EnergyReleased
		photon += ev.PhotonEnergy
	}
	e.Metrics.PhotonEnergyTotal += photon
	snap.EnergyReleasedTotal = released
	snap.PhotonEnergyTotal = photon

	e.returnResults = nil
	e.detectionEvents = nil
	e.decayEvents = nil

	e.History = append(e.History, snap)
	return snap
}

// coexistenceRegistry snapshots every position holding two or more
// identities, keyed by the "x,y,z" string form.
func (e *Engine) coexistenceRegistry() map[string][]string {
	out := make(map[string][]string)
	for pos, ids := range e.Registry {
		if len(ids) < 2 {
			continue
		}
		out[pos.String()] = append([]string(nil), ids...)
	}
	return out
}

// RunSimulation drives the engine for Config.MaxTicks ticks and returns the
// aggregate result with the full per-tick history.
func (e *Engine) RunSimulation() *SimulationResult {
	logrus.Infof("Starting trial %q: %d ticks, lattice %v, connectivity %d, seed %d",
		e.Config.TrialName, e.Config.MaxTicks, e.Config.LatticeSize, e.Config.Connectivity, e.Config.Seed)

	for t := 0; t < e.Config.MaxTicks; t++ {
		snap := e.AdvanceTick()
		e.Metrics.TicksRun++
		if e.Tick%10 == 0 {
			logrus.Infof("[tick %07d] identities=%d coexistence_positions=%d detections=%d energy=%.3f",
				e.Tick, len(snap.Identities), len(snap.CoexistenceRegistry),
				e.Metrics.DetectionEvents, snap.EnergyAfter)
		}
	}

	result := &SimulationResult{
		Config:             e.Config,
		FinalTick:          e.Tick,
		TotalIdentities:    len(e.Identities),
		TotalRecruiters:    len(e.Recruiters),
		CompositeParticles: len(e.Composites),
		Totals:             *e.Metrics,
		History:            e.History,
	}
	for _, ids := range e.Registry {
		if len(ids) >= 2 {
			result.CoexistencePositions++
		}
	}

	logrus.Infof("Trial %q finished at tick %d: %d identities, %d coexistence positions, %d detections",
		e.Config.TrialName, e.Tick, result.TotalIdentities, result.CoexistencePositions,
		e.Metrics.DetectionEvents)
	return result
}
