package engine

import (
	"math/rand"

	"github.com/rulegrid/rulegrid/internal/core"
)

// DefaultSeed is used when no seed is given. A fixed default keeps casual
// play reproducible; replays must run under the seed they were recorded
// with.
const DefaultSeed int64 = 1

// Rand is the randomness context rule resolution draws from. The session
// owns one seeded source; every random rule pick, random or-tile pick and
// randomdir resolution consumes it exactly once, in scan order, so equal
// seeds replay identically.
type Rand struct {
	src *rand.Rand
}

// NewRand creates a randomness context from a seed.
func NewRand(seed int64) *Rand {
	return &Rand{src: rand.New(rand.NewSource(seed))}
}

// Intn returns a uniform int in [0, n).
func (r *Rand) Intn(n int) int {
	return r.src.Intn(n)
}

// Direction returns a uniformly random cardinal direction.
func (r *Rand) Direction() core.Direction {
	return core.Directions[r.src.Intn(len(core.Directions))]
}
