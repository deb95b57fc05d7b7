package games

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"

	"iarena/game"
)

// Nim: piles of sticks, each player removes any number of sticks from one
// pile. Whoever takes the last stick loses.

var DefaultNimPiles = []int{1, 3, 5, 7}

type NimMovement struct {
	Pile   int
	Remove int
}

func (m NimMovement) String() string {
	return fmt.Sprintf("{pile: %d remove: %d}", m.Pile, m.Remove)
}

type NimPosition struct {
	rules  *NimRules
	piles  []int
	player game.PlayerIndex
}

func (p *NimPosition) NextPlayer() game.PlayerIndex { return p.player }
func (p *NimPosition) Rules() game.Rules            { return p.rules }

// Piles returns a copy of the remaining sticks per pile.
func (p *NimPosition) Piles() []int {
	piles := make([]int, len(p.piles))
	copy(piles, p.piles)
	return piles
}

func (p *NimPosition) Sticks() int {
	total := 0
	for _, n := range p.piles {
		total += n
	}
	return total
}

func (p *NimPosition) Hash() game.PositionHash {
	hasher := fnv.New64a()
	binary.Write(hasher, binary.LittleEndian, int64(p.player))
	for _, n := range p.piles {
		binary.Write(hasher, binary.LittleEndian, int64(n))
	}
	return game.PositionHash(hasher.Sum64())
}

func (p *NimPosition) Equal(other game.Position) bool {
	o, ok := other.(*NimPosition)
	if !ok || o.player != p.player || len(o.piles) != len(p.piles) {
		return false
	}
	for i := range p.piles {
		if p.piles[i] != o.piles[i] {
			return false
		}
	}
	return true
}

func (p *NimPosition) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "player %d:", p.player)
	for i, n := range p.piles {
		fmt.Fprintf(&sb, " %d:%s", i, strings.Repeat("|", n))
	}
	return sb.String()
}

type NimRules struct {
	piles []int
}

func NewNimRules(piles ...int) *NimRules {
	if len(piles) == 0 {
		piles = DefaultNimPiles
	}
	own := make([]int, len(piles))
	copy(own, piles)
	return &NimRules{piles: own}
}

func (r *NimRules) NPlayers() int { return 2 }

func (r *NimRules) FirstPosition() game.Position {
	return r.Position(r.piles, game.FirstPlayer)
}

// Position builds an arbitrary position of this game.
func (r *NimRules) Position(piles []int, next game.PlayerIndex) *NimPosition {
	own := make([]int, len(piles))
	copy(own, piles)
	return &NimPosition{rules: r, piles: own, player: next}
}

func (r *NimRules) NextPosition(movement game.Movement, position game.Position) game.Position {
	p := position.(*NimPosition)
	m := movement.(NimMovement)
	piles := p.Piles()
	piles[m.Pile] -= m.Remove
	return &NimPosition{rules: r, piles: piles, player: p.player.Other()}
}

func (r *NimRules) PossibleMovements(position game.Position) []game.Movement {
	p := position.(*NimPosition)
	var moves []game.Movement
	for pile, n := range p.piles {
		for remove := 1; remove <= n; remove++ {
			moves = append(moves, NimMovement{Pile: pile, Remove: remove})
		}
	}
	return moves
}

func (r *NimRules) IsMovementPossible(movement game.Movement, position game.Position) bool {
	p := position.(*NimPosition)
	m, ok := movement.(NimMovement)
	if !ok || m.Pile < 0 || m.Pile >= len(p.piles) {
		return false
	}
	return m.Remove >= 1 && m.Remove <= p.piles[m.Pile]
}

// Finished once at most one stick remains: the last one is forced.
func (r *NimRules) Finished(position game.Position) bool {
	return position.(*NimPosition).Sticks() <= 1
}

func (r *NimRules) Score(position game.Position) *game.ScoreBoard {
	p := position.(*NimPosition)
	if !r.Finished(p) {
		panic(game.NewUsageError(r, "nim score on a running game"))
	}
	loser := p.player
	if p.Sticks() == 0 {
		// The previous player took the last stick
		loser = p.player.Other()
	}
	s := game.NewScoreBoard()
	s.Define(loser, 0)
	s.Define(loser.Other(), 1)
	return s
}
