package etm

import "math"

// Recruiter is the anchor rhythm at a lattice cell. Identities lock onto a
// recruiter's phase and ancestry when their return is allowed.
type Recruiter struct {
	Phase      float64
	Ancestry   string
	DeltaPhase float64

	// Returned holds the IDs of identities that have reformed on this
	// recruiter, in return order.
	Returned            []string
	SupportsCoexistence bool

	returnedSet map[string]struct{}
}

// NewRecruiter builds a recruiter with the validated default of allowing
// multiple identities to coexist on it.
func NewRecruiter(phase float64, ancestry string, deltaPhase float64) *Recruiter {
	return &Recruiter{
		Phase:               math.Mod(phase, 1.0),
		Ancestry:            ancestry,
		DeltaPhase:          deltaPhase,
		SupportsCoexistence: true,
		returnedSet:         make(map[string]struct{}),
	}
}

// AdvancePhase steps the recruiter rhythm, wrapping into [0,1).
func (r *Recruiter) AdvancePhase() {
	r.Phase = math.Mod(r.Phase+r.DeltaPhase, 1.0)
}

// AddReturned records an identity as returned, once.
func (r *Recruiter) AddReturned(id string) {
	if r.returnedSet == nil {
		r.returnedSet = make(map[string]struct{})
	}
	if _, ok := r.returnedSet[id]; ok {
		return
	}
	r.returnedSet[id] = struct{}{}
	r.Returned = append(r.Returned, id)
}

// HasReturned reports whether the identity already returned here.
func (r *Recruiter) HasReturned(id string) bool {
	_, ok := r.returnedSet[id]
	return ok
}
