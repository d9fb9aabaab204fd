package etm

// IdentityView is the per-tick serialized form of one identity.
type IdentityView struct {
	ID               string       `json:"id"`
	Tag              string       `json:"tag"`
	Ancestry         string       `json:"ancestry"`
	OriginalAncestry string       `json:"original_ancestry,omitempty"`
	Phase            float64      `json:"theta"`
	Position         *Coord       `json:"position"`
	Status           ReturnStatus `json:"status"`
	TickMemory       int          `json:"tick_memory"`
	IsMutated        bool         `json:"is_mutated"`
	StabilityScore   float64      `json:"stability_score"`
	IsConstituent    bool         `json:"is_composite_constituent"`
	IsDecayProduct   bool         `json:"is_decay_product"`
}

// ReturnResult is the outcome of one identity's return-eligibility
// evaluation for one tick.
type ReturnResult struct {
	IdentityID    string  `json:"identity_id"`
	Allowed       bool    `json:"return_allowed"`
	PhaseMatch    bool    `json:"phase_match"`
	AncestryMatch bool    `json:"ancestry_match"`
	EchoMatch     bool    `json:"echo_match"`
	RhoHybrid     float64 `json:"rho_hybrid"`
	PhaseDiff     float64 `json:"phase_diff"`
	// Reason is set on structural denials, e.g. "no_recruiter".
	Reason string `json:"reason,omitempty"`
}

// TickSnapshot is the engine's externally visible record of one tick.
type TickSnapshot struct {
	Tick                int                 `json:"tick"`
	Identities          []IdentityView      `json:"identities"`
	ReturnResults       []ReturnResult      `json:"return_results"`
	DetectionEvents     []DetectionEvent    `json:"detection_events"`
	DecayEvents         []DecayEvent        `json:"decay_events,omitempty"`
	CoexistenceRegistry map[string][]string `json:"coexistence_registry"`
	CompositeCount      int                 `json:"composite_particles"`
	EnergyBefore        float64             `json:"energy_before"`
	EnergyAfter         float64             `json:"energy_after"`
	EnergyReleasedTotal float64             `json:"energy_released_total"`
	PhotonEnergyTotal   float64             `json:"photon_energy_total"`
}

// SimulationResult is what RunSimulation hands back to callers: final-state
// tallies plus the full per-tick history.
type SimulationResult struct {
	Config               Config         `json:"config"`
	FinalTick            int            `json:"final_tick"`
	TotalIdentities      int            `json:"total_identities"`
	TotalRecruiters      int            `json:"total_recruiters"`
	CoexistencePositions int            `json:"coexistence_positions"`
	CompositeParticles   int            `json:"composite_particles"`
	Totals               Metrics        `json:"totals"`
	History              []TickSnapshot `json:"history"`
}
