// Package player holds baseline players: fixed choices, random choices and a
// recorder. They are opponents for graded players and fixtures for tests.
package player

import (
	"context"
	"fmt"
	"sync"

	"iarena/game"
	"iarena/metrics"

	"golang.org/x/exp/rand"
)

// movements lists the choices of a running position.
func movements(position game.Position) ([]game.Movement, error) {
	rules := position.Rules()
	if rules.Finished(position) {
		return nil, game.NewUsageError(rules, "asked to play a finished position")
	}
	return game.CheckedMovements(rules, position)
}

// First always plays the first possible movement.
type First struct{}

func (First) Play(position game.Position) (game.Movement, error) {
	moves, err := movements(position)
	if err != nil {
		return nil, err
	}
	return moves[0], nil
}

func (First) String() string { return "first" }

// Last always plays the last possible movement.
type Last struct{}

func (Last) Play(position game.Position) (game.Movement, error) {
	moves, err := movements(position)
	if err != nil {
		return nil, err
	}
	return moves[len(moves)-1], nil
}

func (Last) String() string { return "last" }

// Random plays a uniformly drawn movement. With a seed its choices are
// reproducible; with ResetEveryGame it also repeats them in every game.
type Random struct {
	mu             sync.Mutex
	seed           uint64
	rng            *rand.Rand
	resetEveryGame bool
}

// NewRandom draws from a seeded generator that runs on across games.
func NewRandom(seed uint64) *Random {
	return &Random{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// NewMatchConsistentRandom reseeds at the start of every game.
func NewMatchConsistentRandom(seed uint64) *Random {
	r := NewRandom(seed)
	r.resetEveryGame = true
	return r
}

func (r *Random) StartingGame(game.Rules, game.PlayerIndex) error {
	if r.resetEveryGame {
		r.mu.Lock()
		r.rng.Seed(r.seed)
		r.mu.Unlock()
	}
	return nil
}

func (r *Random) Play(position game.Position) (game.Movement, error) {
	moves, err := movements(position)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return moves[r.rng.Intn(len(moves))], nil
}

func (r *Random) String() string { return "random" }

// Record forwards to another player and keeps every movement it returned.
type Record struct {
	Player    game.Player
	Movements []game.Movement
}

func NewRecord(p game.Player) *Record {
	return &Record{Player: p}
}

func (r *Record) StartingGame(rules game.Rules, index game.PlayerIndex) error {
	if starter, ok := r.Player.(game.Starter); ok {
		return starter.StartingGame(rules, index)
	}
	return nil
}

func (r *Record) Play(position game.Position) (game.Movement, error) {
	return r.PlayContext(context.Background(), position)
}

// PlayContext passes ctx on when the recorded player can give up a move.
func (r *Record) PlayContext(ctx context.Context, position game.Position) (game.Movement, error) {
	var move game.Movement
	var err error
	if cp, ok := r.Player.(game.ContextPlayer); ok {
		move, err = cp.PlayContext(ctx, position)
	} else {
		move, err = r.Player.Play(position)
	}
	if err != nil {
		return nil, err
	}
	r.Movements = append(r.Movements, move)
	return move, nil
}

// Metrics is the recorded player's report on its last search, zero when it
// keeps none.
func (r *Record) Metrics() metrics.SearchMetric {
	if m, ok := r.Player.(interface{ Metrics() metrics.SearchMetric }); ok {
		return m.Metrics()
	}
	return metrics.SearchMetric{}
}

func (r *Record) String() string {
	if s, ok := r.Player.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", r.Player)
}
