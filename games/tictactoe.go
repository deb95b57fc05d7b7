package games

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"

	"iarena/game"
)

// TicTacToe on a 3x3 board. Three in a row wins (+1, loser -1), a full
// board without a line is a draw (0 each).

type Piece int8

const (
	Empty Piece = iota
	Cross       // first player
	Nought      // second player
)

type TicTacToeMovement struct {
	Row    int
	Column int
}

func (m TicTacToeMovement) String() string {
	return fmt.Sprintf("[%d, %d]", m.Row, m.Column)
}

type TicTacToePosition struct {
	rules *TicTacToeRules
	board [9]Piece
}

func (p *TicTacToePosition) Rules() game.Rules { return p.rules }

func (p *TicTacToePosition) At(row, column int) Piece {
	return p.board[row*3+column]
}

// NextPlayer is derived from the number of pieces on the board.
func (p *TicTacToePosition) NextPlayer() game.PlayerIndex {
	placed := 0
	for _, piece := range p.board {
		if piece != Empty {
			placed++
		}
	}
	return game.PlayerIndex(placed % 2)
}

func (p *TicTacToePosition) Hash() game.PositionHash {
	hasher := fnv.New64a()
	binary.Write(hasher, binary.LittleEndian, p.board)
	return game.PositionHash(hasher.Sum64())
}

func (p *TicTacToePosition) Equal(other game.Position) bool {
	o, ok := other.(*TicTacToePosition)
	return ok && o.board == p.board
}

func (p *TicTacToePosition) String() string {
	symbols := map[Piece]string{Empty: " ", Cross: "X", Nought: "O"}
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		sb.WriteString("|")
		for column := 0; column < 3; column++ {
			sb.WriteString(symbols[p.At(row, column)])
			sb.WriteString("|")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

func (p *TicTacToePosition) winner() Piece {
	for _, line := range lines {
		a := p.board[line[0]]
		if a != Empty && a == p.board[line[1]] && a == p.board[line[2]] {
			return a
		}
	}
	return Empty
}

func (p *TicTacToePosition) full() bool {
	for _, piece := range p.board {
		if piece == Empty {
			return false
		}
	}
	return true
}

type TicTacToeRules struct {
	initial [9]Piece
}

func NewTicTacToeRules() *TicTacToeRules {
	return &TicTacToeRules{}
}

// NewTicTacToeRulesFrom starts the game from a prefilled board, given row by
// row.
func NewTicTacToeRulesFrom(board [9]Piece) *TicTacToeRules {
	return &TicTacToeRules{initial: board}
}

func (r *TicTacToeRules) NPlayers() int { return 2 }

func (r *TicTacToeRules) FirstPosition() game.Position {
	return &TicTacToePosition{rules: r, board: r.initial}
}

func (r *TicTacToeRules) NextPosition(movement game.Movement, position game.Position) game.Position {
	p := position.(*TicTacToePosition)
	m := movement.(TicTacToeMovement)
	next := &TicTacToePosition{rules: r, board: p.board}
	piece := Cross
	if p.NextPlayer() == game.SecondPlayer {
		piece = Nought
	}
	next.board[m.Row*3+m.Column] = piece
	return next
}

func (r *TicTacToeRules) PossibleMovements(position game.Position) []game.Movement {
	p := position.(*TicTacToePosition)
	var moves []game.Movement
	for i, piece := range p.board {
		if piece == Empty {
			moves = append(moves, TicTacToeMovement{Row: i / 3, Column: i % 3})
		}
	}
	return moves
}

func (r *TicTacToeRules) Finished(position game.Position) bool {
	p := position.(*TicTacToePosition)
	return p.winner() != Empty || p.full()
}

func (r *TicTacToeRules) Score(position game.Position) *game.ScoreBoard {
	p := position.(*TicTacToePosition)
	if !r.Finished(p) {
		panic(game.NewUsageError(r, "tictactoe score on a running game"))
	}
	switch p.winner() {
	case Cross:
		return game.ScoreBoardOf(1, -1)
	case Nought:
		return game.ScoreBoardOf(-1, 1)
	default:
		return game.ScoreBoardOf(0, 0)
	}
}
