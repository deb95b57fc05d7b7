package game

import (
	"fmt"
	"strings"
)

type Score = float64

// ScoreBoard maps players to scores, ordered by player index. Players never
// defined read as 0.
type ScoreBoard struct {
	scores []Score
}

func NewScoreBoard() *ScoreBoard {
	return &ScoreBoard{}
}

// ScoreBoardOf builds a board from the scores of players 0, 1, ...
func ScoreBoardOf(scores ...Score) *ScoreBoard {
	s := &ScoreBoard{scores: make([]Score, len(scores))}
	copy(s.scores, scores)
	return s
}

func (s *ScoreBoard) grow(player PlayerIndex) {
	if player < 0 {
		panic(fmt.Sprintf("invalid player index %d", player))
	}
	for len(s.scores) <= int(player) {
		s.scores = append(s.scores, 0)
	}
}

// Define sets the score of player.
func (s *ScoreBoard) Define(player PlayerIndex, score Score) {
	s.grow(player)
	s.scores[player] = score
}

// Add accumulates score into player's total.
func (s *ScoreBoard) Add(player PlayerIndex, score Score) {
	s.grow(player)
	s.scores[player] += score
}

func (s *ScoreBoard) Get(player PlayerIndex) Score {
	if player < 0 || int(player) >= len(s.scores) {
		return 0
	}
	return s.scores[player]
}

// Players returns every index the board holds a score for.
func (s *ScoreBoard) Players() []PlayerIndex {
	players := make([]PlayerIndex, len(s.scores))
	for i := range s.scores {
		players[i] = PlayerIndex(i)
	}
	return players
}

func (s *ScoreBoard) Len() int {
	return len(s.scores)
}

// Total is the sum of every score; constant for constant-sum games.
func (s *ScoreBoard) Total() Score {
	total := 0.0
	for _, score := range s.scores {
		total += score
	}
	return total
}

// Join adds every score of other into s.
func (s *ScoreBoard) Join(other *ScoreBoard) {
	if other == nil {
		return
	}
	for i, score := range other.scores {
		s.Add(PlayerIndex(i), score)
	}
}

// Winner returns the player with the highest score, or NoPlayer when the
// highest score is shared or the board is empty.
func (s *ScoreBoard) Winner() PlayerIndex {
	winner := NoPlayer
	unique := false
	for i, score := range s.scores {
		switch {
		case winner == NoPlayer || score > s.scores[winner]:
			winner = PlayerIndex(i)
			unique = true
		case score == s.scores[winner]:
			unique = false
		}
	}
	if !unique {
		return NoPlayer
	}
	return winner
}

func (s *ScoreBoard) Clone() *ScoreBoard {
	return ScoreBoardOf(s.scores...)
}

func (s *ScoreBoard) String() string {
	parts := make([]string, len(s.scores))
	for i, score := range s.scores {
		parts[i] = fmt.Sprintf("%d:%g", i, score)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
