package etm

import "fmt"

// ConflictMethod selects how a detection event resolves ambiguity between
// co-located identities.
type ConflictMethod string

const (
	MethodCoexistence      ConflictMethod = "coexistence"
	MethodSymbolicMutation ConflictMethod = "symbolic_mutation"
	MethodIdentityRename   ConflictMethod = "identity_rename"
	MethodPhaseSeparation  ConflictMethod = "phase_separation"
	MethodExclusion        ConflictMethod = "exclusion"
)

// Config holds every toggle and constant the engine consumes. It is a plain
// value struct; scenario presets and CLI flags populate it, the engine never
// mutates it.
type Config struct {
	TrialName string
	MaxTicks  int
	Seed      int64

	// Lattice topology. Connectivity must be 6, 8 or 12.
	Connectivity int
	LatticeSize  [3]int

	// Phase parameters
	PhaseTolerance    float64
	DefaultDeltaPhase float64

	// Echo field parameters
	RhoMin                   float64
	DecayFactor              float64
	InheritanceAlpha         float64
	EchoHybridLocalWeight    float64
	EchoHybridNeighborWeight float64
	ReinforcementAmount      float64

	// Ancestry matching
	AncestryRequired   bool
	SmoothingEnabled   bool
	SmoothingThreshold int
	SmoothingTick      int

	// Detection and conflict resolution (Model B)
	Epsilon                   float64
	CoherenceWindow           int
	EnablePassiveCoexistence  bool
	DefaultResolution         ConflictMethod
	EnableDetectionEvents     bool
	DetectionTriggersMutation bool
	MutationProbability       float64

	// Energy model. Calibrated constants achieve the validated accuracy; the
	// legacy set is kept for compatibility comparisons.
	EnableCalibratedEnergy bool
	KineticScale           float64
	PotentialCoeff         float64
	StabilityScale         float64
	CoulombConstant        float64
	LegacyKineticScale     float64
	LegacyPotentialCoeff   float64
	LegacyStabilityScale   float64

	// Particle foundation
	EnableParticleFoundation   bool
	EnableEnhancedProton       bool
	ParticleStabilityThreshold float64

	// Composite / weak-interaction layer
	EnableNucleonStructure        bool
	EnableWeakInteractions        bool
	EnablePatternReorganization   bool
	EnableBetaDecay               bool
	EnableConservationEnforcement bool
	EnableAntiparticles           bool

	WeakCoupling               float64
	BetaDecayLifetimeTicks     int
	WeakInteractionProbability float64
}

// DefaultConfig returns the validated parameter set: 8-connectivity,
// passive coexistence, detection-triggered symbolic mutation, and the
// calibrated energy constants.
func DefaultConfig() Config {
	return Config{
		TrialName: "default",
		MaxTicks:  100,
		Seed:      1,

		Connectivity: 8,
		LatticeSize:  [3]int{30, 30, 30},

		PhaseTolerance:    0.11,
		DefaultDeltaPhase: 0.1,

		RhoMin:                   25.0,
		DecayFactor:              0.95,
		InheritanceAlpha:         0.10,
		EchoHybridLocalWeight:    0.6,
		EchoHybridNeighborWeight: 0.4,
		ReinforcementAmount:      1.0,

		AncestryRequired:   true,
		SmoothingEnabled:   false,
		SmoothingThreshold: 2,
		SmoothingTick:      3,

		Epsilon:                   0.01,
		CoherenceWindow:           1,
		EnablePassiveCoexistence:  true,
		DefaultResolution:         MethodSymbolicMutation,
		EnableDetectionEvents:     true,
		DetectionTriggersMutation: true,
		MutationProbability:       0.8,

		EnableCalibratedEnergy: true,
		KineticScale:           1000.0,
		PotentialCoeff:         0.003723,
		StabilityScale:         2.63,
		CoulombConstant:        13.6,
		LegacyKineticScale:     1360.0,
		LegacyPotentialCoeff:   0.08,
		LegacyStabilityScale:   5.0,

		EnableParticleFoundation:   true,
		EnableEnhancedProton:       true,
		ParticleStabilityThreshold: 0.95,

		WeakCoupling:               1.0e-5,
		BetaDecayLifetimeTicks:     900,
		WeakInteractionProbability: 0.001,
	}
}

// EnableNucleonPhysics switches on the composite-particle layer and all of
// its dependencies.
func (c *Config) EnableNucleonPhysics() {
	c.EnableNucleonStructure = true
	c.EnableWeakInteractions = true
	c.EnablePatternReorganization = true
	c.EnableBetaDecay = true
	c.EnableConservationEnforcement = true
	c.EnableAntiparticles = true
	c.EnableParticleFoundation = true
	c.EnableCalibratedEnergy = true
	c.EnableEnhancedProton = true
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	switch c.Connectivity {
	case 6, 8, 12:
	default:
		return fmt.Errorf("connectivity must be 6, 8 or 12, got %d", c.Connectivity)
	}
	for i, s := range c.LatticeSize {
		if s <= 0 {
			return fmt.Errorf("lattice dimension %d must be positive, got %d", i, s)
		}
	}
	if c.DecayFactor <= 0 || c.DecayFactor > 1 {
		return fmt.Errorf("decay factor must be in (0,1], got %v", c.DecayFactor)
	}
	if c.PhaseTolerance < 0 || c.PhaseTolerance >= 0.5 {
		return fmt.Errorf("phase tolerance must be in [0,0.5), got %v", c.PhaseTolerance)
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("epsilon must be non-negative, got %v", c.Epsilon)
	}
	if c.MaxTicks < 0 {
		return fmt.Errorf("max ticks must be non-negative, got %d", c.MaxTicks)
	}
	if c.BetaDecayLifetimeTicks < 0 {
		return fmt.Errorf("beta decay lifetime must be non-negative, got %d", c.BetaDecayLifetimeTicks)
	}
	return nil
}
