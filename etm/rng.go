package etm

import (
	"hash/fnv"
	"math/rand"
)

// RNG subsystem names. Each subsystem draws from its own deterministic
// stream so adding samples to one (say, weak-interaction checks) never
// shifts the sequence seen by another (decay sampling).
const (
	// SubsystemDecay is the stream for composite decay-probability draws.
	SubsystemDecay = "decay"

	// SubsystemWeak is the stream for weak-interaction participation draws.
	SubsystemWeak = "weak"
)

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem, all derived from a single master seed. Two engines built with
// the same seed and configuration produce bit-for-bit identical simulations.
//
// Thread-safety: none. The engine is single-threaded by design.
type PartitionedRNG struct {
	seed       int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{
		seed:       seed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the cached RNG for the named subsystem, seeding it on
// first use with masterSeed XOR fnv1a64(name). Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.seed ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Seed returns the master seed this PartitionedRNG was created with.
func (p *PartitionedRNG) Seed() int64 {
	return p.seed
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
