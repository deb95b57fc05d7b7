package game

import (
	"iarena/utils"
)

// Rules is shared by every position of a game and never changes.
type Rules interface {
	NPlayers() int
	FirstPosition() Position
	NextPosition(movement Movement, position Position) Position
	// PossibleMovements must not be empty for a position that is not finished.
	PossibleMovements(position Position) []Movement
	Finished(position Position) bool
	// Score is only defined for finished positions.
	Score(position Position) *ScoreBoard
}

// MovementChecker lets a Rules implementation answer legality faster than
// listing every movement.
type MovementChecker interface {
	IsMovementPossible(movement Movement, position Position) bool
}

// IsMovementPossible reports whether movement is one of the possible
// movements of position.
func IsMovementPossible(rules Rules, movement Movement, position Position) bool {
	if movement == nil {
		return false
	}
	if checker, ok := rules.(MovementChecker); ok {
		return checker.IsMovementPossible(movement, position)
	}
	return utils.FindIndex(rules.PossibleMovements(position), movement) >= 0
}

// CheckedScore scores position, reporting a usage error instead of asking
// rules to score a game that is not over.
func CheckedScore(rules Rules, position Position) (*ScoreBoard, error) {
	if !rules.Finished(position) {
		return nil, NewUsageError(rules, "score requested for a position that is not finished")
	}
	return rules.Score(position), nil
}

// CheckedMovements lists the movements of a non terminal position, failing
// when rules offer none.
func CheckedMovements(rules Rules, position Position) ([]Movement, error) {
	moves := rules.PossibleMovements(position)
	if len(moves) == 0 && !rules.Finished(position) {
		return nil, NewUsageError(rules, "no possible movements for a position that is not finished")
	}
	return moves, nil
}
