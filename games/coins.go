package games

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"iarena/game"
)

// Coins: a single pile, each player removes between MinPlay and MaxPlay
// coins. The player left without a valid move loses.

type CoinsMovement struct {
	Remove int
}

func (m CoinsMovement) String() string {
	return fmt.Sprintf("{remove: %d}", m.Remove)
}

type CoinsPosition struct {
	rules  *CoinsRules
	coins  int
	player game.PlayerIndex
}

func (p *CoinsPosition) NextPlayer() game.PlayerIndex { return p.player }
func (p *CoinsPosition) Rules() game.Rules            { return p.rules }
func (p *CoinsPosition) Coins() int                   { return p.coins }

func (p *CoinsPosition) Hash() game.PositionHash {
	hasher := fnv.New64a()
	binary.Write(hasher, binary.LittleEndian, int64(p.player))
	binary.Write(hasher, binary.LittleEndian, int64(p.coins))
	binary.Write(hasher, binary.LittleEndian, int64(p.rules.MinPlay))
	binary.Write(hasher, binary.LittleEndian, int64(p.rules.MaxPlay))
	return game.PositionHash(hasher.Sum64())
}

// Equal positions have the same future: the play range is part of it.
func (p *CoinsPosition) Equal(other game.Position) bool {
	o, ok := other.(*CoinsPosition)
	return ok && o.coins == p.coins && o.player == p.player &&
		o.rules.MinPlay == p.rules.MinPlay && o.rules.MaxPlay == p.rules.MaxPlay
}

func (p *CoinsPosition) String() string {
	return fmt.Sprintf("player %d: %d coins", p.player, p.coins)
}

type CoinsRules struct {
	Initial int
	MinPlay int
	MaxPlay int
}

func NewCoinsRules(initial, minPlay, maxPlay int) *CoinsRules {
	if minPlay < 1 || maxPlay < minPlay {
		panic(fmt.Sprintf("invalid coins play range [%d, %d]", minPlay, maxPlay))
	}
	return &CoinsRules{Initial: initial, MinPlay: minPlay, MaxPlay: maxPlay}
}

func (r *CoinsRules) NPlayers() int { return 2 }

func (r *CoinsRules) FirstPosition() game.Position {
	return r.Position(r.Initial, game.FirstPlayer)
}

func (r *CoinsRules) Position(coins int, next game.PlayerIndex) *CoinsPosition {
	return &CoinsPosition{rules: r, coins: coins, player: next}
}

func (r *CoinsRules) NextPosition(movement game.Movement, position game.Position) game.Position {
	p := position.(*CoinsPosition)
	m := movement.(CoinsMovement)
	return &CoinsPosition{rules: r, coins: p.coins - m.Remove, player: p.player.Other()}
}

func (r *CoinsRules) PossibleMovements(position game.Position) []game.Movement {
	p := position.(*CoinsPosition)
	var moves []game.Movement
	for remove := r.MinPlay; remove <= r.MaxPlay && remove <= p.coins; remove++ {
		moves = append(moves, CoinsMovement{Remove: remove})
	}
	return moves
}

func (r *CoinsRules) Finished(position game.Position) bool {
	return position.(*CoinsPosition).coins < r.MinPlay
}

func (r *CoinsRules) Score(position game.Position) *game.ScoreBoard {
	p := position.(*CoinsPosition)
	if !r.Finished(p) {
		panic(game.NewUsageError(r, "coins score on a running game"))
	}
	s := game.NewScoreBoard()
	s.Define(p.player, -1)
	s.Define(p.player.Other(), 1)
	return s
}
