package game

import (
	"context"
	"fmt"
)

// PlayerIndex identifies a seat in a game. Seats are numbered from 0.
type PlayerIndex int

// NoPlayer is the reserved index meaning "nobody", e.g. a drawn game.
const NoPlayer PlayerIndex = -1

const (
	FirstPlayer PlayerIndex = iota
	SecondPlayer
)

// Other returns the opponent of p in a two player game.
func (p PlayerIndex) Other() PlayerIndex {
	return 1 - p
}

type PositionHash uint64

// Position is an immutable snapshot of a game. Operations on a Position
// never modify it, Rules.NextPosition always returns a new one.
//
// Two positions with the same remaining game must be Equal and share the
// same Hash, otherwise a search cache keyed on them is unsound.
type Position interface {
	NextPlayer() PlayerIndex
	Rules() Rules
	Hash() PositionHash
	Equal(other Position) bool
}

// Movement transforms one position into another. Implementations must be
// comparable values: movements are matched with ==.
type Movement interface {
	fmt.Stringer
}

// Player chooses a movement for the position it is asked to play.
type Player interface {
	Play(position Position) (Movement, error)
}

// Starter is implemented by players that need to prepare before the first
// move of a game (seed caches, reset random generators).
type Starter interface {
	StartingGame(rules Rules, index PlayerIndex) error
}

// ContextPlayer is implemented by players able to give up a move once ctx
// is done.
type ContextPlayer interface {
	Player
	PlayContext(ctx context.Context, position Position) (Movement, error)
}

// Heuristic estimates how favorable a non terminal position is for player.
type Heuristic func(position Position, player PlayerIndex) float64
