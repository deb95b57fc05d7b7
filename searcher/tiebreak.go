package searcher

import (
	"golang.org/x/exp/rand"
)

// TieBreaker picks one of n equally valued moves.
type TieBreaker interface {
	Choose(n int) int
	// Reset returns the breaker to its initial state.
	Reset()
}

// RandomTieBreaker draws from a seeded generator: the same seed replays the
// same choices, yet the choice does not follow move order.
type RandomTieBreaker struct {
	seed uint64
	rng  *rand.Rand
}

func NewRandomTieBreaker(seed uint64) *RandomTieBreaker {
	return &RandomTieBreaker{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

func (t *RandomTieBreaker) Choose(n int) int {
	if n <= 1 {
		return 0
	}
	return t.rng.Intn(n)
}

func (t *RandomTieBreaker) Reset() {
	t.rng.Seed(t.seed)
}

// FirstTieBreaker always keeps the first of the tied moves.
type FirstTieBreaker struct{}

func (FirstTieBreaker) Choose(int) int { return 0 }
func (FirstTieBreaker) Reset()         {}
