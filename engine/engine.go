package engine

import (
	"errors"
	"fmt"
	"time"

	"iarena/game"
	"iarena/meta"
)

// MaxMoves is the default ceiling on plies before a game is declared
// non-terminating.
const MaxMoves = meta.MAX_MOVES

type State int

const (
	NotStarted State = iota
	Running
	Finished
	Faulted
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Faulted:
		return "faulted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	ErrConfiguration = errors.New("invalid game configuration")
	ErrIllegalMove   = errors.New("illegal movement")
	ErrTimeout       = errors.New("time budget exceeded")
	ErrMoveLimit     = errors.New("move limit exceeded")
	ErrPlayer        = errors.New("player failed")
)

type FaultKind int

const (
	IllegalMove FaultKind = iota
	Timeout
	MoveLimit
	PlayerError
)

func (k FaultKind) sentinel() error {
	switch k {
	case IllegalMove:
		return ErrIllegalMove
	case Timeout:
		return ErrTimeout
	case MoveLimit:
		return ErrMoveLimit
	default:
		return ErrPlayer
	}
}

func (k FaultKind) String() string {
	return k.sentinel().Error()
}

// Fault ends a game because a participant broke the rules of the match. It
// never carries a score: the caller decides how a faulted game counts.
type Fault struct {
	Kind     FaultKind
	Player   game.PlayerIndex // game.NoPlayer when nobody is to blame
	Movement game.Movement    // nil when the player produced none
	Position game.Position    // position the player was asked to play, if any
	Moves    int
	Err      error
}

func (f *Fault) Error() string {
	msg := fmt.Sprintf("%s: player %d after %d moves", f.Kind, f.Player, f.Moves)
	if f.Movement != nil {
		msg += fmt.Sprintf(", movement %s", f.Movement)
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Fault) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Kind.sentinel()}
	}
	return []error{f.Kind.sentinel(), f.Err}
}

// Turn is one ply of a game, as reported to observers.
type Turn struct {
	Ply      int
	Player   game.PlayerIndex
	Movement game.Movement
	Position game.Position // position after the movement
	Duration time.Duration
}
