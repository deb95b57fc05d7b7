package searcher

import (
	"math"

	"iarena/game"
)

// Unlimited depth searches until every branch reaches a finished position.
const Unlimited = -1

// pollEvery is how many visited positions go by between two checks of the
// search context.
const pollEvery = 256

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

// Blind is the default heuristic: every unfinished position is worth 0.
func Blind(game.Position, game.PlayerIndex) float64 {
	return 0
}

func decrement(depth int) int {
	if depth == Unlimited {
		return Unlimited
	}
	return depth - 1
}

// deepEnough reports whether a result searched at cached depth can answer a
// search at requested depth.
func deepEnough(cached, requested int) bool {
	if cached == Unlimited {
		return true
	}
	if requested == Unlimited {
		return false
	}
	return cached >= requested
}
