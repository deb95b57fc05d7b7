// Package tournament plays every seating of a set of entrants against each
// other and ranks them.
package tournament

import (
	"context"
	"fmt"
	"sort"

	"iarena/engine"
	"iarena/game"
	"iarena/meta"
	"iarena/metrics"
	"iarena/utils"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRepetitions = meta.REPETITIONS
	DefaultConcurrency = meta.GO_ROUTINES
)

// Entrant builds a fresh player for every game it takes part in, so no
// player is ever shared between concurrent games.
type Entrant struct {
	Name string
	New  func() game.Player
}

type Standing struct {
	Name   string
	Score  float64
	Wins   int
	Faults int // games lost to a fault of this entrant
	Games  int
}

type Result struct {
	Standings []Standing // best first
	Games     []metrics.GameMetric
	Moves     []metrics.MoveRecord
}

type Option func(t *Tournament)

// WithRepetitions plays every seating n times.
func WithRepetitions(n int) Option {
	return func(t *Tournament) {
		if n > 0 {
			t.repetitions = n
		}
	}
}

// WithConcurrency bounds the number of games played at once.
func WithConcurrency(n int) Option {
	return func(t *Tournament) {
		if n > 0 {
			t.concurrency = n
		}
	}
}

// WithGameOptions configures every game of the tournament.
func WithGameOptions(options ...engine.Option) Option {
	return func(t *Tournament) {
		t.gameOptions = append(t.gameOptions, options...)
	}
}

// WithWriter stores game records, move records and standings once the
// tournament is over.
func WithWriter(writer *metrics.Writer) Option {
	return func(t *Tournament) {
		t.writer = writer
	}
}

type Tournament struct {
	rules       game.Rules
	entrants    []Entrant
	repetitions int
	concurrency int
	gameOptions []engine.Option
	writer      *metrics.Writer
}

func New(rules game.Rules, entrants []Entrant, options ...Option) (*Tournament, error) {
	if rules == nil {
		return nil, fmt.Errorf("%w: no rules", engine.ErrConfiguration)
	}
	if len(entrants) < rules.NPlayers() {
		return nil, fmt.Errorf("%w: %T needs %d players, %d entrants were given", engine.ErrConfiguration, rules, rules.NPlayers(), len(entrants))
	}
	for i, e := range entrants {
		if e.New == nil {
			return nil, fmt.Errorf("%w: entrant %d (%s) has no player factory", engine.ErrConfiguration, i, e.Name)
		}
	}

	t := &Tournament{ // Default values
		rules:       rules,
		entrants:    entrants,
		repetitions: DefaultRepetitions,
		concurrency: DefaultConcurrency,
	}
	for _, option := range options {
		option(t)
	}
	return t, nil
}

// Seatings lists, for every game of one repetition, the entrant seated as
// each player.
func (t *Tournament) Seatings() [][]int {
	return seatings(len(t.entrants), t.rules.NPlayers())
}

// seatings returns every ordered choice of k distinct entrants out of n.
func seatings(n, k int) [][]int {
	var result [][]int
	orders := utils.Permutations(k)
	for _, chosen := range combinations(n, k) {
		for _, order := range orders {
			seating := make([]int, k)
			for seat, i := range order {
				seating[seat] = chosen[i]
			}
			result = append(result, seating)
		}
	}
	return result
}

func combinations(n, k int) [][]int {
	if k == 0 {
		return [][]int{{}}
	}
	var result [][]int
	for last := k - 1; last < n; last++ {
		for _, head := range combinations(last, k-1) {
			combination := make([]int, 0, k)
			result = append(result, append(append(combination, head...), last))
		}
	}
	return result
}

type outcome struct {
	seating []int
	game    *engine.Game
	score   *game.ScoreBoard
	fault   *engine.Fault
}

// Run plays every game and ranks the entrants. Faulted games score nothing;
// the entrant to blame is charged a fault. Any other game error stops the
// tournament.
func (t *Tournament) Run(ctx context.Context) (*Result, error) {
	var plan [][]int
	for r := 0; r < t.repetitions; r++ {
		plan = append(plan, t.Seatings()...)
	}
	log.Info().Msgf("tournament: %d entrants, %d games of %T", len(t.entrants), len(plan), t.rules)

	outcomes := make([]outcome, len(plan))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(t.concurrency)
	for i, seating := range plan {
		group.Go(func() error {
			o, err := t.play(ctx, seating)
			if err != nil {
				return fmt.Errorf("game %d of %d: %w", i+1, len(plan), err)
			}
			outcomes[i] = o
			log.Info().Msgf("tournament: completed game %d of %d", i+1, len(plan))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := t.rank(outcomes)
	if t.writer != nil {
		if err := t.write(result); err != nil {
			return nil, err
		}
		log.Info().Msgf("tournament: records stored in %s", t.writer.Dir())
	}
	return result, nil
}

func (t *Tournament) play(ctx context.Context, seating []int) (outcome, error) {
	players := make([]game.Player, len(seating))
	for seat, entrant := range seating {
		players[seat] = t.entrants[entrant].New()
	}
	g, err := engine.NewGame(t.rules, players, t.gameOptions...)
	if err != nil {
		return outcome{}, err
	}

	o := outcome{seating: seating, game: g}
	o.score, err = g.PlayContext(ctx)
	if err != nil {
		o.fault = g.Fault()
		if o.fault == nil {
			return outcome{}, err
		}
	}
	return o, nil
}

func (t *Tournament) rank(outcomes []outcome) *Result {
	totals := game.NewScoreBoard()
	wins := make([]int, len(t.entrants))
	faults := make([]int, len(t.entrants))
	played := make([]int, len(t.entrants))
	result := &Result{}

	for _, o := range outcomes {
		for _, entrant := range o.seating {
			played[entrant]++
		}
		if o.fault != nil && o.fault.Player != game.NoPlayer {
			faults[o.seating[o.fault.Player]]++
		}
		if o.score != nil {
			seated := game.NewScoreBoard()
			for seat, entrant := range o.seating {
				seated.Define(game.PlayerIndex(entrant), o.score.Get(game.PlayerIndex(seat)))
			}
			totals.Join(seated)
			if winner := o.score.Winner(); winner != game.NoPlayer {
				wins[o.seating[winner]]++
			}
		}

		metric := o.game.Metric()
		names := make([]string, len(o.seating))
		for seat, entrant := range o.seating {
			names[seat] = t.entrants[entrant].Name
		}
		metric.Players = names
		result.Games = append(result.Games, metric)
		for _, m := range o.game.MoveMetrics() {
			result.Moves = append(result.Moves, metrics.MoveRecord{Game: metric.ID, MoveMetric: m})
		}
	}

	for i, e := range t.entrants {
		result.Standings = append(result.Standings, Standing{
			Name:   e.Name,
			Score:  totals.Get(game.PlayerIndex(i)),
			Wins:   wins[i],
			Faults: faults[i],
			Games:  played[i],
		})
	}
	sort.SliceStable(result.Standings, func(i, j int) bool {
		a, b := result.Standings[i], result.Standings[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Faults < b.Faults
	})
	return result
}

func (t *Tournament) write(result *Result) error {
	if err := t.writer.WriteGameRecords(result.Games); err != nil {
		return err
	}
	if err := t.writer.WriteMoveRecords(result.Moves); err != nil {
		return err
	}

	names := make([]string, len(result.Standings))
	scores := make([]float64, len(result.Standings))
	wins := make([]int, len(result.Standings))
	faults := make([]int, len(result.Standings))
	for i, s := range result.Standings {
		names[i], scores[i], wins[i], faults[i] = s.Name, s.Score, s.Wins, s.Faults
	}
	return t.writer.WriteStandings(names, scores, wins, faults)
}
