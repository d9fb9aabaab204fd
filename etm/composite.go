package etm

import (
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrCompositeNotInitialized is returned when decay is attempted on a
// composite whose constituent patterns were never registered.
var ErrCompositeNotInitialized = errors.New("composite constituents not initialized")

// ErrOutOfBounds is returned when an operation targets a position outside
// the lattice.
var ErrOutOfBounds = errors.New("position outside lattice bounds")

// Constituent roles within a neutron composite.
const (
	RoleProtonCore    = "proton_core"
	RoleBoundElectron = "bound_electron"
	RoleNeutrino      = "coordination_mediator"
)

// CompositeBinding governs how constituents are bound and when the composite
// decays.
type CompositeBinding struct {
	Strength                  float64
	Pattern                   string
	ReorganizationProbability float64
	// DecayLifetimeTicks is the exponential lifetime L; zero means the
	// composite never decays.
	DecayLifetimeTicks      int
	ConservationConstraints map[string]float64
}

// DecayProbability returns P(t) = 1 - exp(-(t-t0)/L) for a composite created
// at t0. Zero before any age accrues and for lifetime-less bindings.
func (b CompositeBinding) DecayProbability(currentTick, creationTick int) float64 {
	if b.DecayLifetimeTicks <= 0 {
		return 0.0
	}
	age := currentTick - creationTick
	if age <= 0 {
		return 0.0
	}
	return 1.0 - math.Exp(-float64(age)/float64(b.DecayLifetimeTicks))
}

// Composite is a bound cluster of constituent identities sharing one
// timing-pattern set, e.g. a neutron.
type Composite struct {
	ID           string
	Kind         ParticleKind
	Binding      CompositeBinding
	Constituents map[string]*Pattern // role -> stored pattern template
	CreationTick int
}

// NewNeutronComposite builds the neutron binding with its three constituent
// patterns. lifetimeTicks overrides the binding lifetime; pass 0 to keep the
// composite stable.
func NewNeutronComposite(lifetimeTicks int) *Composite {
	return &Composite{
		ID:   uuid.NewString(),
		Kind: KindNeutron,
		Binding: CompositeBinding{
			Strength:                  15.0,
			Pattern:                   "weak_timing_coordination_with_nuclear_core",
			ReorganizationProbability: 0.001,
			DecayLifetimeTicks:        lifetimeTicks,
			ConservationConstraints: map[string]float64{
				"baryon_number": 1,
				"charge":        0,
				"lepton_number": 0,
			},
		},
		Constituents: map[string]*Pattern{
			RoleProtonCore:    NewEnhancedProtonPattern(),
			RoleBoundElectron: NewElectronPattern(),
			RoleNeutrino:      NewNeutrinoPattern("electron", 1000),
		},
	}
}

// initialized reports whether all three neutron constituents are registered.
func (c *Composite) initialized() bool {
	return c.Constituents[RoleProtonCore] != nil &&
		c.Constituents[RoleBoundElectron] != nil &&
		c.Constituents[RoleNeutrino] != nil
}

// decayProducts deep-copies the stored constituent patterns into free
// proton/electron/antineutrino templates.
func (c *Composite) decayProducts() (proton, electron, antineutrino *Pattern, err error) {
	if !c.initialized() {
		return nil, nil, nil, ErrCompositeNotInitialized
	}
	return c.Constituents[RoleProtonCore].Clone(),
		c.Constituents[RoleBoundElectron].Clone(),
		c.Constituents[RoleNeutrino].Clone(),
		nil
}

// ConservationReport carries the conservation-law deltas computed for a decay.
// The deltas are diagnostics: they are recorded, never used to block the decay.
type ConservationReport struct {
	ChargeDelta  float64 `json:"charge_delta"`
	BaryonDelta  float64 `json:"baryon_delta"`
	LeptonDelta  float64 `json:"lepton_delta"`
	EnergyDelta  float64 `json:"energy_delta"`
	WithinLimits bool    `json:"within_limits"`
}

// DecayEvent records one executed beta decay.
type DecayEvent struct {
	ID           string             `json:"id"`
	CompositeID  string             `json:"composite_id"`
	Position     Coord              `json:"position"`
	Tick         int                `json:"tick"`
	ProductIDs   []string           `json:"product_ids"`
	Probability  float64            `json:"probability"`
	Conservation ConservationReport `json:"conservation"`
}

// quantum numbers per particle kind, used only for conservation diagnostics.
func particleCharge(k ParticleKind) float64 {
	switch k {
	case KindEnhancedProton, KindLegacyProton:
		return 1
	case KindElectron:
		return -1
	default:
		return 0
	}
}

func particleBaryonNumber(k ParticleKind) float64 {
	switch k {
	case KindEnhancedProton, KindLegacyProton, KindNeutron:
		return 1
	default:
		return 0
	}
}

func particleLeptonNumber(k ParticleKind, antiparticle bool) float64 {
	switch k {
	case KindElectron, KindNeutrino:
		if antiparticle {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// CreateNeutronComposite builds a neutron at pos: the composite record plus
// its three bound constituent identities, registered as coexisting.
func (e *Engine) CreateNeutronComposite(pos Coord) (string, error) {
	if !e.Lattice.Contains(pos) {
		return "", ErrOutOfBounds
	}

	comp := NewNeutronComposite(e.Config.BetaDecayLifetimeTicks)
	comp.CreationTick = e.Tick
	e.Composites[comp.ID] = comp
	e.compositeOrder = append(e.compositeOrder, comp.ID)

	type constituent struct {
		tag   string
		role  string
		theta float64
		delta float64
	}
	for _, c := range []constituent{
		{"PROTON_CORE", RoleProtonCore, 0.50, 0.05},
		{"BOUND_ELECTRON", RoleBoundElectron, 0.25, 0.03},
		{"ELECTRON_NEUTRINO", RoleNeutrino, 0.10, 0.01},
	} {
		p := pos
		id := NewIdentity(c.tag, "NEUTRON_CONSTITUENT", c.theta, c.delta, &p)
		id.Pattern = comp.Constituents[c.role].Clone()
		id.CompositeParent = comp.ID
		id.ConstituentRole = c.role
		id.ParticipatesInWeak = true
		id.CreationTick = e.Tick
		e.addIdentity(id)
	}

	logrus.Debugf("[tick %07d] Neutron composite %s created at %s", e.Tick, comp.ID[:8], pos)
	return comp.ID, nil
}

// processNucleonPhysics runs the composite layer for one tick: each live
// composite draws one uniform sample against its decay probability.
func (e *Engine) processNucleonPhysics() {
	if !e.Config.EnableBetaDecay {
		return
	}

	// Creation order, so identically seeded runs consume the decay stream
	// the same way regardless of composite ID values.
	ids := append([]string(nil), e.compositeOrder...)
	for _, compositeID := range ids {
		decayed, err := e.executeBetaDecay(compositeID)
		if err != nil {
			logrus.Warnf("[tick %07d] beta decay on composite %s failed: %v", e.Tick, compositeID[:8], err)
			continue
		}
		if decayed {
			logrus.Infof("[tick %07d] Beta decay of composite %s", e.Tick, compositeID[:8])
		}
	}
}

// removeComposite drops a composite from the map and from the creation-order
// slice that drives nucleon sampling.
func (e *Engine) removeComposite(compositeID string) {
	delete(e.Composites, compositeID)
	for i, id := range e.compositeOrder {
		if id == compositeID {
			e.compositeOrder = append(e.compositeOrder[:i], e.compositeOrder[i+1:]...)
			break
		}
	}
}

// executeBetaDecay samples the decay law for one composite and, on a hit,
// replaces its bound constituents with free proton/electron/antineutrino
// identities. Returns whether a decay occurred.
func (e *Engine) executeBetaDecay(compositeID string) (bool, error) {
	comp, ok := e.Composites[compositeID]
	if !ok {
		return false, nil
	}
	if !comp.initialized() {
		return false, ErrCompositeNotInitialized
	}

	// Anchor position comes from the first bound constituent, in identity order.
	var pos *Coord
	var constituents []*Identity
	for _, id := range e.Identities {
		if id.CompositeParent == compositeID {
			constituents = append(constituents, id)
			if pos == nil {
				pos = id.Position
			}
		}
	}
	if pos == nil || len(constituents) == 0 {
		return false, ErrCompositeNotInitialized
	}

	prob := comp.Binding.DecayProbability(e.Tick, comp.CreationTick)
	if prob <= 0 {
		return false, nil
	}
	if e.rng.ForSubsystem(SubsystemDecay).Float64() >= prob {
		return false, nil
	}

	protonPattern, electronPattern, antineutrinoPattern, err := comp.decayProducts()
	if err != nil {
		return false, err
	}

	// Energy of the bound constituents before removal, for the diagnostic delta.
	boundEnergy := 0.0
	for _, c := range constituents {
		boundEnergy += e.ParticleEnergy(c)
	}

	anchor := *pos
	electronPos := e.Lattice.Clamp(anchor.Add(1, 0, 0))
	antineutrinoPos := e.Lattice.Clamp(anchor.Add(0, 1, 0))

	proton := NewIdentity("FREE_PROTON", "BETA_DECAY_PRODUCT", 0.50, 0.05, &anchor)
	proton.Pattern = protonPattern
	electron := NewIdentity("FREE_ELECTRON", "BETA_DECAY_PRODUCT", 0.25, 0.03, &electronPos)
	electron.Pattern = electronPattern
	antineutrino := NewIdentity("ANTINEUTRINO", "BETA_DECAY_PRODUCT", 0.10, 0.01, &antineutrinoPos)
	antineutrino.Pattern = antineutrinoPattern
	antineutrino.IsAntiparticle = true

	products := []*Identity{proton, electron, antineutrino}
	for _, p := range products {
		p.IsDecayProduct = true
		p.CreationTick = e.Tick
	}

	for _, c := range constituents {
		e.removeIdentity(c)
	}
	for _, p := range products {
		e.addIdentity(p)
	}
	e.removeComposite(compositeID)

	productEnergy := 0.0
	chargeOut, baryonOut, leptonOut := 0.0, 0.0, 0.0
	productIDs := make([]string, 0, len(products))
	for _, p := range products {
		productEnergy += e.ParticleEnergy(p)
		chargeOut += particleCharge(p.Pattern.Kind)
		baryonOut += particleBaryonNumber(p.Pattern.Kind)
		leptonOut += particleLeptonNumber(p.Pattern.Kind, p.IsAntiparticle)
		productIDs = append(productIDs, p.ID)
	}

	report := ConservationReport{
		ChargeDelta: chargeOut - comp.Binding.ConservationConstraints["charge"],
		BaryonDelta: baryonOut - comp.Binding.ConservationConstraints["baryon_number"],
		LeptonDelta: leptonOut - comp.Binding.ConservationConstraints["lepton_number"],
		EnergyDelta: productEnergy - boundEnergy,
	}
	report.WithinLimits = report.ChargeDelta == 0 && report.BaryonDelta == 0 && report.LeptonDelta == 0
	if !report.WithinLimits {
		// Recorded only; a violating decay still stands.
		logrus.Warnf("[tick %07d] conservation deltas on decay of %s: charge=%v baryon=%v lepton=%v",
			e.Tick, compositeID[:8], report.ChargeDelta, report.BaryonDelta, report.LeptonDelta)
	}

	e.decayEvents = append(e.decayEvents, DecayEvent{
		ID:           uuid.NewString(),
		CompositeID:  compositeID,
		Position:     anchor,
		Tick:         e.Tick,
		ProductIDs:   productIDs,
		Probability:  prob,
		Conservation: report,
	})
	e.Metrics.BetaDecays++

	return true, nil
}

// processWeakInteractions samples weak-interaction participation for flagged
// identities. Hits are recorded on the identity history; nothing else changes.
func (e *Engine) processWeakInteractions() {
	if !e.Config.EnablePatternReorganization {
		return
	}
	rng := e.rng.ForSubsystem(SubsystemWeak)
	for _, id := range e.Identities {
		if !id.ParticipatesInWeak || id.Pattern == nil || !id.Pattern.ParticipatesInWeak {
			continue
		}
		if rng.Float64() < e.Config.WeakInteractionProbability {
			id.RecordWeakInteraction("neutrino_scattering", e.Tick)
			e.Metrics.WeakInteractions++
			logrus.Debugf("[tick %07d] weak interaction on %s", e.Tick, id.ID[:8])
		}
	}
}
