package searcher

import (
	"fmt"

	"iarena/game"
)

// brokenRules never finishes and never offers a movement.
type brokenRules struct{}

type brokenPosition struct{}

func (brokenPosition) NextPlayer() game.PlayerIndex   { return game.FirstPlayer }
func (brokenPosition) Rules() game.Rules              { return brokenRules{} }
func (brokenPosition) Hash() game.PositionHash        { return 0 }
func (brokenPosition) Equal(other game.Position) bool { return other == brokenPosition{} }

func (brokenRules) NPlayers() int                                           { return 2 }
func (brokenRules) FirstPosition() game.Position                            { return brokenPosition{} }
func (brokenRules) NextPosition(game.Movement, game.Position) game.Position { return brokenPosition{} }
func (brokenRules) PossibleMovements(game.Position) []game.Movement         { return nil }
func (brokenRules) Finished(game.Position) bool                             { return false }
func (brokenRules) Score(game.Position) *game.ScoreBoard                    { panic("not finished") }

// treeRules is an explicit game tree. Leaves carry the first player's score,
// the second player gets its opposite.
type treeRules struct {
	children map[string][]string
	leaves   map[string]float64
}

type treeMove string

func (m treeMove) String() string { return string(m) }

type treePosition struct {
	rules *treeRules
	name  string
	depth int
}

func (p treePosition) NextPlayer() game.PlayerIndex { return game.PlayerIndex(p.depth % 2) }
func (p treePosition) Rules() game.Rules            { return p.rules }
func (p treePosition) Hash() game.PositionHash      { return game.PositionHash(len(p.name)) }
func (p treePosition) Equal(other game.Position) bool {
	o, ok := other.(treePosition)
	return ok && o.name == p.name
}
func (p treePosition) String() string { return fmt.Sprintf("%s@%d", p.name, p.depth) }

func (r *treeRules) NPlayers() int                { return 2 }
func (r *treeRules) FirstPosition() game.Position { return treePosition{rules: r, name: "root"} }

func (r *treeRules) NextPosition(m game.Movement, p game.Position) game.Position {
	tp := p.(treePosition)
	return treePosition{rules: r, name: string(m.(treeMove)), depth: tp.depth + 1}
}

func (r *treeRules) PossibleMovements(p game.Position) []game.Movement {
	var moves []game.Movement
	for _, child := range r.children[p.(treePosition).name] {
		moves = append(moves, treeMove(child))
	}
	return moves
}

func (r *treeRules) Finished(p game.Position) bool {
	_, ok := r.leaves[p.(treePosition).name]
	return ok
}

func (r *treeRules) Score(p game.Position) *game.ScoreBoard {
	v := r.leaves[p.(treePosition).name]
	return game.ScoreBoardOf(v, -v)
}

// reference is exhaustive minimax without pruning nor cache.
func reference(p game.Position, player game.PlayerIndex, depth int, heuristic game.Heuristic) float64 {
	rules := p.Rules()
	if rules.Finished(p) {
		return rules.Score(p).Get(player)
	}
	if depth == 0 {
		return heuristic(p, player)
	}
	maximizing := p.NextPlayer() == player
	best := posInf
	if maximizing {
		best = negInf
	}
	for _, m := range rules.PossibleMovements(p) {
		v := reference(rules.NextPosition(m, p), player, decrement(depth), heuristic)
		if maximizing {
			best = max(best, v)
		} else {
			best = min(best, v)
		}
	}
	return best
}
