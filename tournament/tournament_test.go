package tournament

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"iarena/engine"
	"iarena/game"
	"iarena/games"
	"iarena/metrics"
	"iarena/player"
	"iarena/searcher"

	"github.com/stretchr/testify/require"
)

type cheater struct{}

func (cheater) Play(game.Position) (game.Movement, error) {
	return games.NimMovement{Pile: -1, Remove: 1}, nil
}

func minimaxEntrant() Entrant {
	return Entrant{Name: "minimax", New: func() game.Player {
		return searcher.NewMinimax(searcher.WithMetrics())
	}}
}

func randomEntrant(seed uint64) Entrant {
	return Entrant{Name: "random", New: func() game.Player { return player.NewRandom(seed) }}
}

func TestSeatings(t *testing.T) {
	require.Equal(t, [][]int{{0, 1}, {1, 0}}, seatings(2, 2))

	three := seatings(3, 2)
	require.Len(t, three, 6)
	require.Contains(t, three, []int{2, 0})
	require.Contains(t, three, []int{1, 2})

	require.Len(t, seatings(3, 3), 6)
	require.Len(t, seatings(4, 2), 12)
}

func TestNew(t *testing.T) {
	rules := games.NewNimRules()

	_, err := New(rules, []Entrant{minimaxEntrant()})
	require.ErrorIs(t, err, engine.ErrConfiguration)

	_, err = New(rules, []Entrant{minimaxEntrant(), {Name: "nobody"}})
	require.ErrorIs(t, err, engine.ErrConfiguration)

	_, err = New(nil, nil)
	require.ErrorIs(t, err, engine.ErrConfiguration)
}

func TestRun(t *testing.T) {
	rules := games.NewNimRules(1, 3, 5, 7)

	t.Run("every seating is played", func(t *testing.T) {
		tour, err := New(rules, []Entrant{randomEntrant(1), minimaxEntrant()}, WithRepetitions(3), WithConcurrency(2))
		require.NoError(t, err)
		result, err := tour.Run(context.Background())
		require.NoError(t, err)

		require.Len(t, result.Games, 6)
		require.Equal(t, "minimax", result.Standings[0].Name)
		require.GreaterOrEqual(t, result.Standings[0].Wins, 3, "Minimax never loses from the second seat")
		for _, s := range result.Standings {
			require.Equal(t, 6, s.Games)
			require.Zero(t, s.Faults)
		}
		require.Equal(t, 6.0, result.Standings[0].Score+result.Standings[1].Score, "Every Nim game hands out one point")

		ids := map[string]bool{}
		for _, g := range result.Games {
			ids[g.ID] = true
			require.Len(t, g.Players, 2)
			require.Empty(t, g.Fault)
		}
		require.Len(t, ids, 6)
		require.NotEmpty(t, result.Moves)
	})

	t.Run("faults cost the guilty entrant", func(t *testing.T) {
		entrants := []Entrant{
			{Name: "cheater", New: func() game.Player { return cheater{} }},
			{Name: "first", New: func() game.Player { return player.First{} }},
		}
		tour, err := New(rules, entrants)
		require.NoError(t, err)
		result, err := tour.Run(context.Background())
		require.NoError(t, err)

		require.Equal(t, Standing{Name: "first", Games: 2}, result.Standings[0])
		require.Equal(t, Standing{Name: "cheater", Faults: 2, Games: 2}, result.Standings[1])
		for _, g := range result.Games {
			require.NotEmpty(t, g.Fault)
			require.Equal(t, int(game.NoPlayer), g.Winner)
		}
	})

	t.Run("game options reach every game", func(t *testing.T) {
		long := games.NewCoinsRules(50, 1, 1)
		entrants := []Entrant{
			{Name: "a", New: func() game.Player { return player.First{} }},
			{Name: "b", New: func() game.Player { return player.Last{} }},
		}
		tour, err := New(long, entrants, WithGameOptions(engine.WithMaxMoves(5)))
		require.NoError(t, err)
		result, err := tour.Run(context.Background())
		require.NoError(t, err)
		for _, s := range result.Standings {
			require.Zero(t, s.Score)
			require.Zero(t, s.Faults, "Nobody is to blame for the move limit")
		}
		for _, g := range result.Games {
			require.Equal(t, 5, g.Moves)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		tour, err := New(rules, []Entrant{randomEntrant(1), randomEntrant(2)})
		require.NoError(t, err)
		_, err = tour.Run(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("records are written", func(t *testing.T) {
		writer, err := metrics.NewWriter(t.TempDir())
		require.NoError(t, err)
		tour, err := New(rules, []Entrant{randomEntrant(1), minimaxEntrant()}, WithWriter(writer))
		require.NoError(t, err)
		_, err = tour.Run(context.Background())
		require.NoError(t, err)

		for _, name := range []string{"game_records.csv", "move_records.csv", "standings.csv"} {
			_, err := os.Stat(filepath.Join(writer.Dir(), name))
			require.NoError(t, err, name)
		}
	})
}
