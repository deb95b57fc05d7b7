package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"iarena/game"
	"iarena/metrics"
	"iarena/timelimit"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Option func(g *Game)

// WithMoveTimeout bounds every single Play call.
func WithMoveTimeout(timeout time.Duration) Option {
	return func(g *Game) {
		if timeout > 0 {
			g.moveTimeout = timeout
		}
	}
}

// WithGameTimeout bounds the whole running phase, from the first position to
// the final score.
func WithGameTimeout(timeout time.Duration) Option {
	return func(g *Game) {
		if timeout > 0 {
			g.gameTimeout = timeout
		}
	}
}

// WithStartTimeout bounds every StartingGame call.
func WithStartTimeout(timeout time.Duration) Option {
	return func(g *Game) {
		if timeout > 0 {
			g.startTimeout = timeout
		}
	}
}

func WithMaxMoves(n int) Option {
	return func(g *Game) {
		if n > 0 {
			g.maxMoves = n
		}
	}
}

// WithoutLegalityCheck trusts players to return possible movements.
func WithoutLegalityCheck() Option {
	return func(g *Game) {
		g.checkLegality = false
	}
}

// WithObserver is called after every ply, from the goroutine running the game.
func WithObserver(observer func(Turn)) Option {
	return func(g *Game) {
		if observer != nil {
			g.observers = append(g.observers, observer)
		}
	}
}

// metered is implemented by players that report on their last search.
type metered interface {
	Metrics() metrics.SearchMetric
}

// Game plays one match between players seated in order: players[i] plays as
// game.PlayerIndex(i). A Game is played once.
type Game struct {
	id            uuid.UUID
	rules         game.Rules
	players       []game.Player
	moveTimeout   time.Duration
	gameTimeout   time.Duration
	startTimeout  time.Duration
	maxMoves      int
	checkLegality bool
	observers     []func(Turn)

	mu        sync.Mutex
	state     State
	position  game.Position
	mover     game.PlayerIndex
	history   []Turn
	moveStats []metrics.MoveMetric
	fault     *Fault
	score     *game.ScoreBoard
	startTime time.Time
	endTime   time.Time
}

func NewGame(rules game.Rules, players []game.Player, options ...Option) (*Game, error) {
	if rules == nil {
		return nil, fmt.Errorf("%w: no rules", ErrConfiguration)
	}
	if len(players) != rules.NPlayers() {
		return nil, fmt.Errorf("%w: %T needs %d players, %d were given", ErrConfiguration, rules, rules.NPlayers(), len(players))
	}
	for i, p := range players {
		if p == nil {
			return nil, fmt.Errorf("%w: player %d is nil", ErrConfiguration, i)
		}
	}

	g := &Game{ // Default values
		id:            uuid.New(),
		rules:         rules,
		players:       append([]game.Player(nil), players...),
		maxMoves:      MaxMoves,
		checkLegality: true,
		mover:         game.NoPlayer,
	}
	for _, option := range options {
		option(g)
	}
	return g, nil
}

// NewClockGame is a Game where every move and the whole game run against a
// clock. A player exceeding either budget faults the game.
func NewClockGame(rules game.Rules, players []game.Player, moveTimeout, gameTimeout time.Duration, options ...Option) (*Game, error) {
	clock := []Option{WithMoveTimeout(moveTimeout), WithGameTimeout(gameTimeout)}
	return NewGame(rules, players, append(clock, options...)...)
}

func (g *Game) ID() string {
	return g.id.String()
}

func (g *Game) Rules() game.Rules {
	return g.rules
}

func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Position is the current position, nil before the game starts running.
func (g *Game) Position() game.Position {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

func (g *Game) Moves() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.history)
}

func (g *Game) History() []Turn {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Turn(nil), g.history...)
}

// Fault is set once the game is Faulted by a participant.
func (g *Game) Fault() *Fault {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fault
}

// Score is set once the game is Finished.
func (g *Game) Score() *game.ScoreBoard {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.score == nil {
		return nil
	}
	return g.score.Clone()
}

// MoveMetrics holds the search report of every move made by a metered player.
func (g *Game) MoveMetrics() []metrics.MoveMetric {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]metrics.MoveMetric(nil), g.moveStats...)
}

// Metric summarizes a game that is over.
func (g *Game) Metric() metrics.GameMetric {
	g.mu.Lock()
	defer g.mu.Unlock()

	m := metrics.GameMetric{
		ID:        g.ID(),
		Winner:    int(game.NoPlayer),
		StartTime: g.startTime,
		EndTime:   g.endTime,
		Duration:  g.endTime.Sub(g.startTime),
		Moves:     len(g.history),
	}
	for _, p := range g.players {
		m.Players = append(m.Players, name(p))
	}
	if g.score != nil {
		m.Winner = int(g.score.Winner())
		for i := range g.players {
			m.Scores = append(m.Scores, g.score.Get(game.PlayerIndex(i)))
		}
	}
	if g.fault != nil {
		m.Fault = g.fault.Error()
	}
	return m
}

func (g *Game) Play() (*game.ScoreBoard, error) {
	return g.PlayContext(context.Background())
}

// PlayContext runs the game to its end. It returns the final score, or a
// *Fault naming the player to blame. Any other error means the rules broke
// their contract or ctx was done; the game is Faulted without a Fault.
func (g *Game) PlayContext(ctx context.Context) (*game.ScoreBoard, error) {
	g.mu.Lock()
	if g.state != NotStarted {
		state := g.state
		g.mu.Unlock()
		return nil, fmt.Errorf("game %s is %s", g.ID(), state)
	}
	g.state = Running
	g.startTime = time.Now()
	g.mu.Unlock()

	log.Info().Msgf("game %s: %T with players %v", g.ID(), g.rules, g.names())

	if err := g.start(ctx); err != nil {
		return nil, g.abort(err)
	}

	score, err := timelimit.Run(ctx, g.gameTimeout, g.run)
	if err != nil {
		if errors.Is(err, timelimit.ErrTimeout) {
			err = g.timeoutFault(err)
		}
		return nil, g.abort(err)
	}

	g.mu.Lock()
	g.state = Finished
	g.score = score
	g.endTime = time.Now()
	moves := len(g.history)
	g.mu.Unlock()

	log.Info().Msgf("game %s finished after %d moves: %s", g.ID(), moves, score)
	return score.Clone(), nil
}

// start lets every player prepare, each within the start timeout.
func (g *Game) start(ctx context.Context) error {
	for i, p := range g.players {
		starter, ok := p.(game.Starter)
		if !ok {
			continue
		}
		index := game.PlayerIndex(i)
		err := timelimit.Do(ctx, g.startTimeout, func(context.Context) error {
			return starter.StartingGame(g.rules, index)
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &Fault{Kind: kindOf(err), Player: index, Err: err}
		}
	}
	return nil
}

func (g *Game) run(ctx context.Context) (*game.ScoreBoard, error) {
	position := g.rules.FirstPosition()
	if err := g.advance(nil, position); err != nil {
		return nil, err
	}

	for ply := 1; !g.rules.Finished(position); ply++ {
		mover := position.NextPlayer()
		if mover < 0 || int(mover) >= len(g.players) {
			return nil, game.NewUsageError(g.rules, fmt.Sprintf("player %d to move in a %d player game", mover, len(g.players)))
		}
		g.setMover(mover)

		begin := time.Now()
		movement, err := g.ask(ctx, mover, position)
		if err != nil {
			return nil, err
		}
		if movement == nil || (g.checkLegality && !game.IsMovementPossible(g.rules, movement, position)) {
			return nil, &Fault{Kind: IllegalMove, Player: mover, Movement: movement, Position: position, Moves: ply - 1}
		}

		next := g.rules.NextPosition(movement, position)
		turn := &Turn{Ply: ply, Player: mover, Movement: movement, Position: next, Duration: time.Since(begin)}
		if err := g.advance(turn, next); err != nil {
			return nil, err
		}
		log.Debug().Msgf("game %s: ply %d, player %d plays %s in %s", g.ID(), ply, mover, movement, turn.Duration)
		for _, observe := range g.observers {
			observe(*turn)
		}

		if ply >= g.maxMoves && !g.rules.Finished(next) {
			return nil, &Fault{Kind: MoveLimit, Player: game.NoPlayer, Position: next, Moves: ply,
				Err: fmt.Errorf("%d moves played", ply)}
		}
		position = next
	}
	return game.CheckedScore(g.rules, position)
}

// ask gets a movement from the mover within the move timeout.
func (g *Game) ask(ctx context.Context, mover game.PlayerIndex, position game.Position) (game.Movement, error) {
	p := g.players[mover]
	movement, err := timelimit.Run(ctx, g.moveTimeout, func(ctx context.Context) (game.Movement, error) {
		if cp, ok := p.(game.ContextPlayer); ok {
			return cp.PlayContext(ctx, position)
		}
		return p.Play(position)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &Fault{Kind: kindOf(err), Player: mover, Position: position, Moves: g.Moves(), Err: err}
	}

	if m, ok := p.(metered); ok {
		g.mu.Lock()
		g.moveStats = append(g.moveStats, metrics.MoveMetric{Ply: len(g.history) + 1, Player: int(mover), SearchMetric: m.Metrics()})
		g.mu.Unlock()
	}
	return movement, nil
}

// advance publishes a new position. It fails once the game was abandoned by
// the game timeout, so a late worker never changes a faulted game.
func (g *Game) advance(turn *Turn, position game.Position) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Running {
		return fmt.Errorf("game %s is %s", g.ID(), g.state)
	}
	if turn != nil {
		g.history = append(g.history, *turn)
	}
	g.position = position
	return nil
}

func (g *Game) setMover(mover game.PlayerIndex) {
	g.mu.Lock()
	g.mover = mover
	g.mu.Unlock()
}

// timeoutFault blames the player who was to move when the game ran out of
// time. The game leaves Running in the same step, so the abandoned loop
// cannot play past the fault.
func (g *Game) timeoutFault(err error) *Fault {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Faulted
	g.fault = &Fault{Kind: Timeout, Player: g.mover, Position: g.position, Moves: len(g.history), Err: err}
	return g.fault
}

// abort moves the game to Faulted and returns err.
func (g *Game) abort(err error) error {
	g.mu.Lock()
	g.state = Faulted
	g.endTime = time.Now()
	var fault *Fault
	if errors.As(err, &fault) {
		g.fault = fault
	}
	g.mu.Unlock()

	if fault != nil {
		log.Warn().Msgf("game %s faulted: %s", g.ID(), fault)
		return fault
	}
	log.Error().Msgf("game %s aborted: %s", g.ID(), err)
	return fmt.Errorf("game %s aborted: %w", g.ID(), err)
}

func (g *Game) names() []string {
	names := make([]string, len(g.players))
	for i, p := range g.players {
		names[i] = name(p)
	}
	return names
}

func kindOf(err error) FaultKind {
	if errors.Is(err, timelimit.ErrTimeout) {
		return Timeout
	}
	return PlayerError
}

func name(p game.Player) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
