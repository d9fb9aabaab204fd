package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/etm-sim/etm-sim/etm"
)

// IdentitySpec describes one identity placement in a scenario preset.
type IdentitySpec struct {
	Tag          string  `yaml:"tag"`
	Ancestry     string  `yaml:"ancestry"`
	Theta        float64 `yaml:"theta"`
	DeltaTheta   float64 `yaml:"delta_theta"`
	Position     [3]int  `yaml:"position"`
	Pattern      string  `yaml:"pattern"`      // electron, proton, legacy_proton, neutrino
	Antiparticle bool    `yaml:"antiparticle"` // also place this identity's antiparticle
}

// RecruiterSpec describes one recruiter placement.
type RecruiterSpec struct {
	Theta      float64 `yaml:"theta"`
	Ancestry   string  `yaml:"ancestry"`
	DeltaTheta float64 `yaml:"delta_theta"`
	Position   [3]int  `yaml:"position"`
}

// EchoSpec seeds the echo field at one position.
type EchoSpec struct {
	Position [3]int  `yaml:"position"`
	Value    float64 `yaml:"value"`
}

// Scenario is a reproducible trial setup: config overrides plus initial
// lattice population. Built-in scenarios cover the validated trial shapes;
// a YAML file can replace or tweak any of them.
type Scenario struct {
	Name       string          `yaml:"name"`
	Nucleons   bool            `yaml:"nucleons"` // enable the composite layer
	Neutrons   [][3]int        `yaml:"neutrons"` // neutron composite positions
	Identities []IdentitySpec  `yaml:"identities"`
	Recruiters []RecruiterSpec `yaml:"recruiters"`
	EchoSeeds  []EchoSpec      `yaml:"echo_seeds"`

	// Optional config overrides; nil means keep the flag/default value.
	MaxTicks               *int     `yaml:"max_ticks"`
	BetaDecayLifetimeTicks *int     `yaml:"beta_decay_lifetime_ticks"`
	RhoMin                 *float64 `yaml:"rho_min"`
	Epsilon                *float64 `yaml:"epsilon"`
	PassiveCoexistence     *bool    `yaml:"passive_coexistence"`
}

// LoadScenario resolves the trial setup: the named built-in, optionally
// overridden by a YAML preset file.
func LoadScenario(name, file string) (*Scenario, error) {
	scenario, err := builtinScenario(name)
	if err != nil {
		return nil, err
	}
	if file == "" {
		return scenario, nil
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	if err := yaml.Unmarshal(raw, scenario); err != nil {
		return nil, fmt.Errorf("parse scenario file: %w", err)
	}
	return scenario, nil
}

// ApplyConfig writes the scenario's config overrides into cfg.
func (s *Scenario) ApplyConfig(cfg *etm.Config) {
	cfg.TrialName = s.Name
	if s.Nucleons {
		cfg.EnableNucleonPhysics()
	}
	if s.MaxTicks != nil {
		cfg.MaxTicks = *s.MaxTicks
	}
	if s.BetaDecayLifetimeTicks != nil {
		cfg.BetaDecayLifetimeTicks = *s.BetaDecayLifetimeTicks
	}
	if s.RhoMin != nil {
		cfg.RhoMin = *s.RhoMin
	}
	if s.Epsilon != nil {
		cfg.Epsilon = *s.Epsilon
	}
	if s.PassiveCoexistence != nil {
		cfg.EnablePassiveCoexistence = *s.PassiveCoexistence
	}
}

// Populate places the scenario's recruiters, echo seeds, identities and
// neutron composites into a fresh engine.
func (s *Scenario) Populate(engine *etm.Engine) error {
	for _, r := range s.Recruiters {
		pos := etm.Coord{X: r.Position[0], Y: r.Position[1], Z: r.Position[2]}
		if err := engine.AddRecruiter(pos, etm.NewRecruiter(r.Theta, r.Ancestry, r.DeltaTheta)); err != nil {
			return fmt.Errorf("recruiter at %s: %w", pos, err)
		}
	}
	for _, e := range s.EchoSeeds {
		pos := etm.Coord{X: e.Position[0], Y: e.Position[1], Z: e.Position[2]}
		if err := engine.SetEchoField(pos, e.Value); err != nil {
			return fmt.Errorf("echo seed at %s: %w", pos, err)
		}
	}
	for _, spec := range s.Identities {
		pos := etm.Coord{X: spec.Position[0], Y: spec.Position[1], Z: spec.Position[2]}
		id := etm.NewIdentity(spec.Tag, spec.Ancestry, spec.Theta, spec.DeltaTheta, &pos)
		if p, err := patternByName(spec.Pattern); err != nil {
			return err
		} else if p != nil {
			id.Pattern = p
		}
		if err := engine.AddIdentity(id); err != nil {
			return fmt.Errorf("identity %q at %s: %w", spec.Tag, pos, err)
		}
		if spec.Antiparticle {
			if err := engine.AddIdentity(id.Antiparticle()); err != nil {
				return fmt.Errorf("antiparticle of %q at %s: %w", spec.Tag, pos, err)
			}
		}
	}
	for _, n := range s.Neutrons {
		pos := etm.Coord{X: n[0], Y: n[1], Z: n[2]}
		if _, err := engine.CreateNeutronComposite(pos); err != nil {
			return fmt.Errorf("neutron at %s: %w", pos, err)
		}
	}
	return nil
}

func patternByName(name string) (*etm.Pattern, error) {
	switch name {
	case "":
		return nil, nil
	case "electron":
		return etm.NewElectronPattern(), nil
	case "proton":
		return etm.NewEnhancedProtonPattern(), nil
	case "legacy_proton":
		return etm.NewLegacyProtonPattern(), nil
	case "neutrino":
		return etm.NewNeutrinoPattern("electron", 100), nil
	default:
		return nil, fmt.Errorf("unknown pattern %q", name)
	}
}

// builtinScenario returns one of the standard trial shapes. Positions are
// relative to a 30x30x30 lattice center.
func builtinScenario(name string) (*Scenario, error) {
	center := [3]int{15, 15, 15}
	lifetime20 := 20
	ticks30 := 30

	switch name {
	case "coexistence":
		// Two identical-rhythm identities returning onto one recruiter; they
		// settle as coexisting without triggering detection.
		return &Scenario{
			Name: "coexistence",
			Recruiters: []RecruiterSpec{
				{Theta: 0.30, Ancestry: "rotor-A", DeltaTheta: 0.05, Position: center},
			},
			EchoSeeds: []EchoSpec{{Position: center, Value: 60.0}},
			Identities: []IdentitySpec{
				{Tag: "A1", Ancestry: "rotor-A", Theta: 0.30, DeltaTheta: 0.05, Position: center},
				{Tag: "A2", Ancestry: "rotor-A", Theta: 0.30, DeltaTheta: 0.05, Position: center},
			},
		}, nil
	case "beta-decay":
		// One neutron with a short lifetime so the decay lands inside the run.
		return &Scenario{
			Name:                   "beta-decay",
			Nucleons:               true,
			Neutrons:               [][3]int{center},
			MaxTicks:               &ticks30,
			BetaDecayLifetimeTicks: &lifetime20,
		}, nil
	case "conflict":
		// Same pair as the coexistence trial but with passive coexistence
		// off, so the probe scan fires and mutates the second identity.
		off := false
		return &Scenario{
			Name:               "conflict",
			PassiveCoexistence: &off,
			Recruiters: []RecruiterSpec{
				{Theta: 0.30, Ancestry: "rotor-A", DeltaTheta: 0.05, Position: center},
			},
			EchoSeeds: []EchoSpec{{Position: center, Value: 60.0}},
			Identities: []IdentitySpec{
				{Tag: "A1", Ancestry: "rotor-A", Theta: 0.30, DeltaTheta: 0.05, Position: center},
				{Tag: "A2", Ancestry: "rotor-A", Theta: 0.30, DeltaTheta: 0.05, Position: center},
			},
		}, nil
	case "annihilation":
		// Electron plus its antiparticle at one position; the pair should
		// annihilate into a photon on the first detection scan.
		return &Scenario{
			Name:     "annihilation",
			Nucleons: true,
			Identities: []IdentitySpec{
				{Tag: "E1", Ancestry: "lepton", Theta: 0.25, DeltaTheta: 0.03,
					Position: center, Pattern: "electron", Antiparticle: true},
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
}
