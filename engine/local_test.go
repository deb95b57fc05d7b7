package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"iarena/game"
	"iarena/games"
	"iarena/player"
	"iarena/searcher"
	"iarena/timelimit"

	"github.com/stretchr/testify/require"
)

// Stub players

type fixedPlayer struct{ movement game.Movement }

func (p fixedPlayer) Play(game.Position) (game.Movement, error) { return p.movement, nil }

type sleepyPlayer struct{ sleep time.Duration }

func (p sleepyPlayer) Play(position game.Position) (game.Movement, error) {
	time.Sleep(p.sleep)
	return player.First{}.Play(position)
}

type failingPlayer struct{ err error }

func (p failingPlayer) Play(game.Position) (game.Movement, error) { return nil, p.err }

type panickingPlayer struct{}

func (panickingPlayer) Play(game.Position) (game.Movement, error) { panic("lost my marbles") }

type starterPlayer struct {
	player.First
	err   error
	sleep time.Duration
	mu    sync.Mutex
	seats []game.PlayerIndex
}

func (p *starterPlayer) StartingGame(_ game.Rules, index game.PlayerIndex) error {
	time.Sleep(p.sleep)
	p.mu.Lock()
	p.seats = append(p.seats, index)
	p.mu.Unlock()
	return p.err
}

func requireFault(t *testing.T, err error, kind FaultKind, who game.PlayerIndex) *Fault {
	t.Helper()
	var fault *Fault
	require.ErrorAs(t, err, &fault)
	require.Equal(t, kind, fault.Kind)
	require.Equal(t, who, fault.Player)
	return fault
}

func TestNewGame(t *testing.T) {
	rules := games.NewNimRules()

	t.Run("player count must match the rules", func(t *testing.T) {
		_, err := NewGame(rules, []game.Player{player.First{}})
		require.ErrorIs(t, err, ErrConfiguration)
		_, err = NewGame(rules, []game.Player{player.First{}, player.First{}, player.First{}})
		require.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("nil player", func(t *testing.T) {
		_, err := NewGame(rules, []game.Player{player.First{}, nil})
		require.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("nil rules", func(t *testing.T) {
		_, err := NewGame(nil, nil)
		require.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("fresh game", func(t *testing.T) {
		g, err := NewGame(rules, []game.Player{player.First{}, player.Last{}})
		require.NoError(t, err)
		require.Equal(t, NotStarted, g.State())
		require.Nil(t, g.Position())
		require.Zero(t, g.Moves())
		require.NotEmpty(t, g.ID())
	})
}

func TestPlayNim(t *testing.T) {
	rules := games.NewNimRules(1, 3, 5, 7)

	t.Run("minimax against minimax", func(t *testing.T) {
		first := searcher.NewMinimax(searcher.WithSeed(1), searcher.WithMetrics())
		second := searcher.NewMinimax(searcher.WithSeed(2))
		g, err := NewGame(rules, []game.Player{first, second})
		require.NoError(t, err)

		score, err := g.Play()
		require.NoError(t, err)
		require.Equal(t, Finished, g.State())
		require.True(t, rules.Finished(g.Position()))
		require.Equal(t, game.SecondPlayer, score.Winner(), "The first player loses 1^3^5^7 against perfect play")
		require.Equal(t, score.String(), g.Score().String())
		require.Nil(t, g.Fault())

		history := g.History()
		require.Len(t, history, g.Moves())
		for i, turn := range history {
			require.Equal(t, i+1, turn.Ply)
			require.Equal(t, game.PlayerIndex(i%2), turn.Player)
		}
		stats := g.MoveMetrics()
		require.Len(t, stats, len(history), "Both searchers report on every move")
		require.Equal(t, game.FirstPlayer, game.PlayerIndex(stats[0].Player))
		require.Positive(t, stats[0].Nodes)
		require.Zero(t, stats[1].Nodes, "Metrics are off for the second player")
	})

	t.Run("minimax beats random from a winning seat", func(t *testing.T) {
		g, err := NewGame(rules, []game.Player{player.NewRandom(3), searcher.NewMinimax()})
		require.NoError(t, err)
		score, err := g.Play()
		require.NoError(t, err)
		require.Equal(t, game.SecondPlayer, score.Winner())
		require.Equal(t, 1.0, score.Get(game.SecondPlayer))
		require.Equal(t, 0.0, score.Get(game.FirstPlayer))

		metric := g.Metric()
		require.Equal(t, g.ID(), metric.ID)
		require.Equal(t, []string{"random", "minimax"}, metric.Players)
		require.Equal(t, 1, metric.Winner)
		require.Equal(t, []float64{0, 1}, metric.Scores)
		require.Empty(t, metric.Fault)
		require.Equal(t, g.Moves(), metric.Moves)
	})

	t.Run("recorded players keep their name and metrics", func(t *testing.T) {
		random := player.NewRecord(player.NewRandom(3))
		minimax := player.NewRecord(searcher.NewMinimax(searcher.WithMetrics()))
		g, err := NewGame(rules, []game.Player{random, minimax})
		require.NoError(t, err)
		score, err := g.Play()
		require.NoError(t, err)
		require.Equal(t, game.SecondPlayer, score.Winner())
		require.Equal(t, []string{"random", "minimax"}, g.Metric().Players)
		require.Equal(t, g.Moves(), len(random.Movements)+len(minimax.Movements))

		stats := g.MoveMetrics()
		require.Len(t, stats, g.Moves())
		for _, s := range stats {
			if s.Player == 1 {
				require.Positive(t, s.Nodes, "ply %d", s.Ply)
			} else {
				require.Zero(t, s.Nodes, "ply %d", s.Ply)
			}
		}
	})

	t.Run("a game is played once", func(t *testing.T) {
		g, err := NewGame(rules, []game.Player{player.First{}, player.First{}})
		require.NoError(t, err)
		_, err = g.Play()
		require.NoError(t, err)
		_, err = g.Play()
		require.Error(t, err)
		require.Equal(t, Finished, g.State())
	})
}

func TestFaults(t *testing.T) {
	nim := games.NewNimRules(1, 3, 5, 7)

	t.Run("illegal movement", func(t *testing.T) {
		illegal := games.NimMovement{Pile: 9, Remove: 1}
		g, err := NewGame(nim, []game.Player{player.First{}, fixedPlayer{illegal}})
		require.NoError(t, err)

		score, err := g.Play()
		require.Nil(t, score)
		require.ErrorIs(t, err, ErrIllegalMove)
		fault := requireFault(t, err, IllegalMove, game.SecondPlayer)
		require.Equal(t, illegal, fault.Movement)
		require.Equal(t, 1, fault.Moves)
		require.Equal(t, Faulted, g.State())
		require.Same(t, fault, g.Fault())
		require.Nil(t, g.Score())
	})

	t.Run("nil movement", func(t *testing.T) {
		g, err := NewGame(nim, []game.Player{fixedPlayer{}, player.First{}}, WithoutLegalityCheck())
		require.NoError(t, err)
		_, err = g.Play()
		requireFault(t, err, IllegalMove, game.FirstPlayer)
	})

	t.Run("player error", func(t *testing.T) {
		boom := errors.New("boom")
		g, err := NewGame(nim, []game.Player{failingPlayer{boom}, player.First{}})
		require.NoError(t, err)
		_, err = g.Play()
		requireFault(t, err, PlayerError, game.FirstPlayer)
		require.ErrorIs(t, err, ErrPlayer)
		require.ErrorIs(t, err, boom)
	})

	t.Run("player panic", func(t *testing.T) {
		g, err := NewGame(nim, []game.Player{player.First{}, panickingPlayer{}})
		require.NoError(t, err)
		_, err = g.Play()
		requireFault(t, err, PlayerError, game.SecondPlayer)
		var panicked *timelimit.PanicError
		require.ErrorAs(t, err, &panicked)
		require.Equal(t, Faulted, g.State())
	})

	t.Run("move limit", func(t *testing.T) {
		long := games.NewCoinsRules(100, 1, 1)
		g, err := NewGame(long, []game.Player{player.First{}, player.First{}}, WithMaxMoves(10))
		require.NoError(t, err)
		_, err = g.Play()
		fault := requireFault(t, err, MoveLimit, game.NoPlayer)
		require.ErrorIs(t, err, ErrMoveLimit)
		require.Equal(t, 10, fault.Moves)
		require.Equal(t, 10, g.Moves())
	})

	t.Run("last allowed move may end the game", func(t *testing.T) {
		short := games.NewCoinsRules(10, 1, 1)
		g, err := NewGame(short, []game.Player{player.First{}, player.First{}}, WithMaxMoves(10))
		require.NoError(t, err)
		_, err = g.Play()
		require.NoError(t, err)
	})

	t.Run("legality check can be turned off", func(t *testing.T) {
		coins := games.NewCoinsRules(10, 1, 2)
		greedy := fixedPlayer{games.CoinsMovement{Remove: 5}}

		g, err := NewGame(coins, []game.Player{greedy, greedy})
		require.NoError(t, err)
		_, err = g.Play()
		requireFault(t, err, IllegalMove, game.FirstPlayer)

		g, err = NewGame(coins, []game.Player{greedy, greedy}, WithoutLegalityCheck())
		require.NoError(t, err)
		score, err := g.Play()
		require.NoError(t, err)
		require.Equal(t, 2, g.Moves())
		require.Equal(t, game.SecondPlayer, score.Winner())
	})

	t.Run("broken rules abort without a fault", func(t *testing.T) {
		g, err := NewGame(brokenRules{games.NewCoinsRules(5, 1, 2)}, []game.Player{player.First{}, player.First{}})
		require.NoError(t, err)
		_, err = g.Play()
		require.ErrorIs(t, err, game.ErrUsage)
		var fault *Fault
		require.False(t, errors.As(err, &fault))
		require.Equal(t, Faulted, g.State())
		require.Nil(t, g.Fault())
	})
}

// brokenRules hands the move to a player that is not seated.
type brokenRules struct{ *games.CoinsRules }

type brokenPosition struct{ game.Position }

func (brokenPosition) NextPlayer() game.PlayerIndex { return 7 }

func (r brokenRules) FirstPosition() game.Position {
	return brokenPosition{r.CoinsRules.FirstPosition()}
}

func (r brokenRules) Finished(game.Position) bool { return false }

func TestClock(t *testing.T) {
	nim := games.NewNimRules(1, 3, 5, 7)

	t.Run("slow move", func(t *testing.T) {
		g, err := NewClockGame(nim, []game.Player{player.First{}, sleepyPlayer{time.Second}}, 20*time.Millisecond, 0)
		require.NoError(t, err)

		begin := time.Now()
		_, err = g.Play()
		require.Less(t, time.Since(begin), 500*time.Millisecond, "The game should not wait for the sleeper")
		fault := requireFault(t, err, Timeout, game.SecondPlayer)
		require.ErrorIs(t, err, ErrTimeout)
		require.ErrorIs(t, err, timelimit.ErrTimeout)
		require.Nil(t, fault.Movement)
		require.Equal(t, 1, fault.Moves)
	})

	t.Run("slow game", func(t *testing.T) {
		coins := games.NewCoinsRules(1000, 1, 1)
		slow := sleepyPlayer{5 * time.Millisecond}
		g, err := NewClockGame(coins, []game.Player{slow, slow}, 100*time.Millisecond, 60*time.Millisecond)
		require.NoError(t, err)

		begin := time.Now()
		_, err = g.Play()
		require.Less(t, time.Since(begin), 500*time.Millisecond)
		var fault *Fault
		require.ErrorAs(t, err, &fault)
		require.Equal(t, Timeout, fault.Kind)
		require.Contains(t, []game.PlayerIndex{game.FirstPlayer, game.SecondPlayer}, fault.Player)
		require.Positive(t, fault.Moves)
		require.Less(t, fault.Moves, 1000)

		// The abandoned loop must not move a faulted game
		require.Equal(t, fault.Moves, g.Moves())
		require.True(t, fault.Position == g.Position(), "The fault describes the last published position")
		time.Sleep(30 * time.Millisecond)
		require.Equal(t, fault.Moves, g.Moves())
		require.Len(t, g.History(), fault.Moves)
		require.Equal(t, Faulted, g.State())
	})

	t.Run("cooperative players stop on timeout", func(t *testing.T) {
		ttt := games.NewTicTacToeRules()
		deep := searcher.NewMinimax(searcher.WithoutCache(), searcher.WithoutPruning())
		g, err := NewClockGame(ttt, []game.Player{deep, player.First{}}, 10*time.Millisecond, time.Second)
		require.NoError(t, err)
		_, err = g.Play()
		requireFault(t, err, Timeout, game.FirstPlayer)
	})

	t.Run("fast players finish", func(t *testing.T) {
		g, err := NewClockGame(nim, []game.Player{searcher.NewMinimax(), searcher.NewMinimax()}, time.Second, 5*time.Second)
		require.NoError(t, err)
		score, err := g.Play()
		require.NoError(t, err)
		require.Equal(t, game.SecondPlayer, score.Winner())
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		g, err := NewGame(nim, []game.Player{player.First{}, sleepyPlayer{time.Second}})
		require.NoError(t, err)
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		_, err = g.PlayContext(ctx)
		require.ErrorIs(t, err, context.Canceled)
		require.Equal(t, Faulted, g.State())
		require.Nil(t, g.Fault())
	})
}

func TestStartingGame(t *testing.T) {
	nim := games.NewNimRules(1, 2)

	t.Run("every starter learns its seat", func(t *testing.T) {
		a, b := &starterPlayer{}, &starterPlayer{}
		g, err := NewGame(nim, []game.Player{a, b})
		require.NoError(t, err)
		_, err = g.Play()
		require.NoError(t, err)
		require.Equal(t, []game.PlayerIndex{game.FirstPlayer}, a.seats)
		require.Equal(t, []game.PlayerIndex{game.SecondPlayer}, b.seats)
	})

	t.Run("start error faults the player", func(t *testing.T) {
		refuse := errors.New("not today")
		g, err := NewGame(nim, []game.Player{&starterPlayer{}, &starterPlayer{err: refuse}})
		require.NoError(t, err)
		_, err = g.Play()
		fault := requireFault(t, err, PlayerError, game.SecondPlayer)
		require.ErrorIs(t, err, refuse)
		require.Nil(t, fault.Position)
		require.Nil(t, g.Position(), "No position is reached before every player started")
	})

	t.Run("start timeout", func(t *testing.T) {
		slow := &starterPlayer{sleep: time.Second}
		g, err := NewGame(nim, []game.Player{slow, player.First{}}, WithStartTimeout(20*time.Millisecond))
		require.NoError(t, err)
		begin := time.Now()
		_, err = g.Play()
		require.Less(t, time.Since(begin), 500*time.Millisecond)
		requireFault(t, err, Timeout, game.FirstPlayer)
	})
}

func TestObserver(t *testing.T) {
	coins := games.NewCoinsRules(9, 1, 3)
	var turns []Turn
	var also int
	g, err := NewGame(coins, []game.Player{player.NewRandom(1), player.NewRandom(2)},
		WithObserver(func(turn Turn) { turns = append(turns, turn) }),
		WithObserver(func(Turn) { also++ }),
		WithObserver(nil),
	)
	require.NoError(t, err)
	_, err = g.Play()
	require.NoError(t, err)

	require.Equal(t, g.History(), turns)
	require.Equal(t, len(turns), also)
	last := turns[len(turns)-1]
	require.True(t, coins.Finished(last.Position))
	require.True(t, last.Position.Equal(g.Position()))
}

func TestStateString(t *testing.T) {
	require.Equal(t, "faulted", Faulted.String())
	require.Equal(t, "state(9)", State(9).String())
	require.Equal(t, ErrMoveLimit.Error(), MoveLimit.String())
}
