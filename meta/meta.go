// meta/meta.go
package meta

import "time"

// GO_ROUTINES defines the number of games a tournament plays at once.
const GO_ROUTINES = 8

// MAX_MOVES defines the ceiling on plies before a game is faulted.
const MAX_MOVES = 10000

// MOVE_TIMEOUT defines the default budget of a single move.
const MOVE_TIMEOUT = 5 * time.Second

// GAME_TIMEOUT defines the default budget of a whole game.
const GAME_TIMEOUT = 5 * time.Minute

// START_TIMEOUT defines the default budget of a player getting ready.
const START_TIMEOUT = 5 * time.Second

// REPETITIONS defines how many times a tournament plays every seating.
const REPETITIONS = 1
