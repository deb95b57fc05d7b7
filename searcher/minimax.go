package searcher

import (
	"context"
	"fmt"

	"iarena/game"
	"iarena/metrics"

	"github.com/rs/zerolog/log"
)

type Option func(m *Minimax)

// Minimax searches the game tree with alpha-beta pruning and a transposition
// cache. Values are always read from the point of view of the player to move
// at the root: its own turns maximize, every other player's turns minimize.
// For two player zero-sum games this is exact minimax; with more players or
// general-sum scores it assumes the others play against it, which is only an
// approximation.
//
// A Minimax must not play two positions at the same time. Its cache persists
// across games until ResetCache.
type Minimax struct {
	name            string
	depth           int
	heuristic       game.Heuristic
	cache           Cache
	prune           bool
	tieBreaker      TieBreaker
	matchConsistent bool
	metrics         metrics.Collector
	last            metrics.SearchMetric
}

// WithDepth limits the search to depth plies. Positions reached at the limit
// are valued by the heuristic.
func WithDepth(depth int) Option {
	return func(m *Minimax) {
		if depth > 0 {
			m.depth = depth
		}
	}
}

func WithHeuristic(heuristic game.Heuristic) Option {
	return func(m *Minimax) {
		if heuristic != nil {
			m.heuristic = heuristic
		}
	}
}

func WithCache(cache Cache) Option {
	return func(m *Minimax) {
		if cache != nil {
			m.cache = cache
		}
	}
}

func WithoutCache() Option {
	return func(m *Minimax) {
		m.cache = noCache{}
	}
}

// WithoutPruning visits every branch, as plain minimax does.
func WithoutPruning() Option {
	return func(m *Minimax) {
		m.prune = false
	}
}

func WithTieBreaker(tieBreaker TieBreaker) Option {
	return func(m *Minimax) {
		if tieBreaker != nil {
			m.tieBreaker = tieBreaker
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *Minimax) {
		m.tieBreaker = NewRandomTieBreaker(seed)
	}
}

// WithMatchConsistency resets the tie breaker at the start of every game, so
// the player repeats itself game after game.
func WithMatchConsistency() Option {
	return func(m *Minimax) {
		m.matchConsistent = true
	}
}

func WithMetrics() Option {
	return func(m *Minimax) {
		m.metrics = metrics.NewCollector()
	}
}

func WithName(name string) Option {
	return func(m *Minimax) {
		if name != "" {
			m.name = name
		}
	}
}

func NewMinimax(options ...Option) *Minimax {
	m := &Minimax{ // Default values
		name:       "minimax",
		depth:      Unlimited,
		heuristic:  Blind,
		cache:      NewTranspositionCache(),
		prune:      true,
		tieBreaker: NewRandomTieBreaker(0),
		metrics:    metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *Minimax) String() string {
	return m.name
}

func (m *Minimax) StartingGame(rules game.Rules, index game.PlayerIndex) error {
	if m.matchConsistent {
		m.tieBreaker.Reset()
	}
	log.Debug().Msgf("%s starting as player %d with depth %d and %d cached positions", m.name, index, m.depth, m.cache.Len())
	return nil
}

func (m *Minimax) Play(position game.Position) (game.Movement, error) {
	return m.PlayContext(context.Background(), position)
}

// PlayContext returns the best movement for the player to move. Among moves
// of equal value the tie breaker decides. The search gives up with ctx's
// error once ctx is done.
func (m *Minimax) PlayContext(ctx context.Context, position game.Position) (game.Movement, error) {
	rules := position.Rules()
	if rules.Finished(position) {
		return nil, game.NewUsageError(rules, "asked to play a finished position")
	}
	moves, err := game.CheckedMovements(rules, position)
	if err != nil {
		return nil, err
	}

	s := &search{ctx: ctx, player: position.NextPlayer()}
	m.metrics.Start(m.depth)

	// Root moves use the full window: a bound would hide ties
	best := negInf
	var candidates []game.Movement
	for _, move := range moves {
		value, err := m.search(s, rules.NextPosition(move, position), decrement(m.depth), negInf, posInf)
		if err != nil {
			return nil, err
		}
		switch {
		case value > best || candidates == nil:
			best = value
			candidates = []game.Movement{move}
		case value == best:
			candidates = append(candidates, move)
		}
	}
	m.last = m.metrics.Complete(m.cache.Len())

	move := candidates[m.tieBreaker.Choose(len(candidates))]
	log.Debug().Msgf("%s plays %s valued %g (%d tied of %d)", m.name, move, best, len(candidates), len(moves))
	return move, nil
}

// Evaluate returns the value of position for the player to move in it.
func (m *Minimax) Evaluate(ctx context.Context, position game.Position) (float64, error) {
	s := &search{ctx: ctx, player: position.NextPlayer()}
	return m.search(s, position, m.depth, negInf, posInf)
}

// Metrics describes the last completed move search, when enabled.
func (m *Minimax) Metrics() metrics.SearchMetric {
	return m.last
}

func (m *Minimax) ResetCache() {
	m.cache.Reset()
}

type search struct {
	ctx     context.Context
	player  game.PlayerIndex // point of view of every value
	visited int
}

func (s *search) poll() error {
	s.visited++
	if s.visited%pollEvery == 0 {
		if err := s.ctx.Err(); err != nil {
			return fmt.Errorf("search abandoned after %d positions: %w", s.visited, err)
		}
	}
	return nil
}

func (m *Minimax) search(s *search, position game.Position, depth int, alpha, beta float64) (float64, error) {
	if err := s.poll(); err != nil {
		return 0, err
	}

	rules := position.Rules()
	if rules.Finished(position) {
		m.metrics.AddLeaf()
		return rules.Score(position).Get(s.player), nil
	}
	if depth == 0 {
		m.metrics.AddLeaf()
		return m.heuristic(position, s.player), nil
	}

	if value, ok := m.cache.Probe(position, s.player, depth, alpha, beta); ok {
		m.metrics.AddCacheHit()
		return value, nil
	}

	moves, err := game.CheckedMovements(rules, position)
	if err != nil {
		return 0, err
	}
	m.metrics.AddNode()

	entryAlpha, entryBeta := alpha, beta
	maximizing := position.NextPlayer() == s.player
	value := posInf
	if maximizing {
		value = negInf
	}

	for i, move := range moves {
		child, err := m.search(s, rules.NextPosition(move, position), decrement(depth), alpha, beta)
		if err != nil {
			return 0, err
		}
		if maximizing {
			value = max(value, child)
		} else {
			value = min(value, child)
		}
		if !m.prune {
			continue
		}
		if maximizing {
			alpha = max(alpha, value)
		} else {
			beta = min(beta, value)
		}
		if alpha >= beta {
			if i < len(moves)-1 {
				m.metrics.AddCutoff()
			}
			break
		}
	}

	m.cache.Store(position, s.player, depth, entryAlpha, entryBeta, value)
	return value, nil
}
