package etm

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// ReturnStatus is the lifecycle state of an identity's return evaluation.
type ReturnStatus string

const (
	StatusPending    ReturnStatus = "pending"
	StatusAllowed    ReturnStatus = "allowed"
	StatusDenied     ReturnStatus = "denied"
	StatusFailed     ReturnStatus = "failed"
	StatusComplete   ReturnStatus = "complete"
	StatusCoexisting ReturnStatus = "coexisting"
)

// MutationKind names the symbolic mutation applied to an identity during
// conflict resolution.
type MutationKind string

const (
	MutationAncestryAppend  MutationKind = "ancestry_append"
	MutationAncestryReplace MutationKind = "ancestry_replace"
	MutationIdentitySuffix  MutationKind = "identity_suffix"
)

// MutationRecord is one entry in an identity's mutation history.
type MutationRecord struct {
	Tick     int          `json:"tick"`
	Kind     MutationKind `json:"kind"`
	Original string       `json:"original"`
	New      string       `json:"new"`
	Tag      string       `json:"tag"`
}

// WeakInteractionRecord notes one weak-interaction participation.
type WeakInteractionRecord struct {
	Type string `json:"type"`
	Tick int    `json:"tick"`
}

// Identity is a phase-carrying entity on the lattice.
type Identity struct {
	ID       string
	Tag      string
	Ancestry string
	// OriginalAncestry keeps the pre-mutation ancestry for bookkeeping.
	OriginalAncestry string

	Phase      float64
	DeltaPhase float64
	TickMemory int

	// Position is nil for identities not currently on the lattice.
	Position *Coord
	Status   ReturnStatus

	MutationHistory []MutationRecord
	IsMutated       bool

	CoexistingWith []string
	// Resolution is the conflict method already applied to this identity;
	// empty means unresolved. Resolved identities are excluded from further
	// detection scans.
	Resolution ConflictMethod

	// Pattern links to the fundamental-particle timing template, if any.
	Pattern        *Pattern
	StabilityScore float64

	IsAntiparticle bool
	AntiparticleOf string

	CompositeParent string
	ConstituentRole string

	ParticipatesInWeak      bool
	WeakHistory             []WeakInteractionRecord
	LastWeakInteractionTick int

	CreationTick   int
	IsDecayProduct bool
}

// NewIdentity builds an identity with a fresh ID and pending status.
func NewIdentity(tag, ancestry string, phase, deltaPhase float64, pos *Coord) *Identity {
	return &Identity{
		ID:                      uuid.NewString(),
		Tag:                     tag,
		Ancestry:                ancestry,
		OriginalAncestry:        ancestry,
		Phase:                   math.Mod(phase, 1.0),
		DeltaPhase:              deltaPhase,
		Position:                pos,
		Status:                  StatusPending,
		StabilityScore:          1.0,
		LastWeakInteractionTick: -1,
	}
}

// AdvancePhase steps the identity's phase, wrapping into [0,1), and ages its
// tick memory.
func (id *Identity) AdvancePhase() {
	id.Phase = math.Mod(id.Phase+id.DeltaPhase, 1.0)
	id.TickMemory++
}

// ApplySymbolicMutation mutates the identity's ancestry or tag and records
// the change. Resolution marking is the detection layer's job; this only
// performs the symbolic edit.
func (id *Identity) ApplySymbolicMutation(kind MutationKind, tag string) {
	original := id.Ancestry

	switch kind {
	case MutationAncestryAppend:
		id.Ancestry += tag
	case MutationAncestryReplace:
		id.Ancestry = tag
	case MutationIdentitySuffix:
		id.Tag += tag
	}

	id.MutationHistory = append(id.MutationHistory, MutationRecord{
		Tick:     id.TickMemory,
		Kind:     kind,
		Original: original,
		New:      id.Ancestry,
		Tag:      tag,
	})
	id.IsMutated = true
}

// Antiparticle builds the mirrored identity: reversed phase, ANTI-prefixed
// tag, linked back through AntiparticleOf.
func (id *Identity) Antiparticle() *Identity {
	anti := NewIdentity("ANTI_"+id.Tag, id.Ancestry, math.Mod(1.0-id.Phase, 1.0), id.DeltaPhase, id.Position)
	anti.IsAntiparticle = true
	anti.AntiparticleOf = id.ID
	if id.Pattern != nil {
		anti.Pattern = id.Pattern.Clone()
	}
	return anti
}

// RecordWeakInteraction appends a weak-interaction participation at tick.
func (id *Identity) RecordWeakInteraction(interactionType string, tick int) {
	id.WeakHistory = append(id.WeakHistory, WeakInteractionRecord{Type: interactionType, Tick: tick})
	id.LastWeakInteractionTick = tick
}

// String returns a compact human-readable form, mainly for debug logging.
func (id *Identity) String() string {
	pos := "nil"
	if id.Position != nil {
		pos = id.Position.String()
	}
	return fmt.Sprintf("Identity(%s tag=%s ancestry=%s theta=%.3f pos=%s status=%s)",
		id.ID[:8], id.Tag, id.Ancestry, id.Phase, pos, id.Status)
}
