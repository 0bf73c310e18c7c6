package notify

import "math/rand"

// Rand is the sampling source the scheduler draws from. Tests plug in a
// scripted source so probability gates are deterministic.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

type mathRand struct {
	r *rand.Rand
}

// NewRand returns a Rand backed by math/rand with the given seed.
func NewRand(seed int64) Rand {
	return &mathRand{r: rand.New(rand.NewSource(seed))}
}

func (m *mathRand) Float64() float64 { return m.r.Float64() }
func (m *mathRand) Intn(n int) int   { return m.r.Intn(n) }
