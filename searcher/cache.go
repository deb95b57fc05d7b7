package searcher

import (
	"sync"

	"iarena/game"
)

// Cache memoizes search results per position. A result is only valid for
// the search window it was computed with: alpha-beta returns bounds, not
// exact values, once a sibling list is cut.
type Cache interface {
	// Probe returns a value stored for position, searched from player's
	// point of view, usable for a search at depth within [alpha, beta].
	Probe(position game.Position, player game.PlayerIndex, depth int, alpha, beta float64) (float64, bool)
	// Store records the value found for position at depth, with the window
	// the search was entered with.
	Store(position game.Position, player game.PlayerIndex, depth int, alpha, beta, value float64)
	Len() int
	Reset()
}

type entry struct {
	position game.Position
	player   game.PlayerIndex
	depth    int
	alpha    float64
	beta     float64
	value    float64
}

// answers applies the dominance rule: the stored search must be at least as
// deep and its window must contain the requested one.
func (e *entry) answers(depth int, alpha, beta float64) bool {
	return deepEnough(e.depth, depth) && e.alpha <= alpha && e.beta >= beta
}

// TranspositionCache keeps one entry per (position, player), bucketed by
// position hash and disambiguated with Position.Equal. The latest store for a
// position replaces the previous one.
type TranspositionCache struct {
	sync.RWMutex
	table map[game.PositionHash][]*entry
	size  int
}

func NewTranspositionCache() *TranspositionCache {
	return &TranspositionCache{table: make(map[game.PositionHash][]*entry)}
}

func (c *TranspositionCache) find(position game.Position, player game.PlayerIndex) *entry {
	for _, e := range c.table[position.Hash()] {
		if e.player == player && e.position.Equal(position) {
			return e
		}
	}
	return nil
}

func (c *TranspositionCache) Probe(position game.Position, player game.PlayerIndex, depth int, alpha, beta float64) (float64, bool) {
	c.RLock()
	defer c.RUnlock()

	e := c.find(position, player)
	if e == nil || !e.answers(depth, alpha, beta) {
		return 0, false
	}
	return e.value, true
}

func (c *TranspositionCache) Store(position game.Position, player game.PlayerIndex, depth int, alpha, beta, value float64) {
	c.Lock()
	defer c.Unlock()

	if e := c.find(position, player); e != nil {
		e.depth, e.alpha, e.beta, e.value = depth, alpha, beta, value
		return
	}
	hash := position.Hash()
	c.table[hash] = append(c.table[hash], &entry{
		position: position,
		player:   player,
		depth:    depth,
		alpha:    alpha,
		beta:     beta,
		value:    value,
	})
	c.size++
}

func (c *TranspositionCache) Len() int {
	c.RLock()
	defer c.RUnlock()

	return c.size
}

func (c *TranspositionCache) Reset() {
	c.Lock()
	defer c.Unlock()

	c.table = make(map[game.PositionHash][]*entry)
	c.size = 0
}

type noCache struct{}

func (noCache) Probe(game.Position, game.PlayerIndex, int, float64, float64) (float64, bool) {
	return 0, false
}

func (noCache) Store(game.Position, game.PlayerIndex, int, float64, float64, float64) {}

func (noCache) Len() int { return 0 }

func (noCache) Reset() {}
