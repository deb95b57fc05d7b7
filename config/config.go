// Package config describes matches and tournaments in YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"iarena/engine"
	"iarena/game"
	"iarena/games"
	"iarena/meta"
	"iarena/player"
	"iarena/searcher"
	"iarena/tournament"

	"gopkg.in/yaml.v3"
)

// Config is a match (exactly one player per seat) or a tournament (any
// number of entrants, at least one per seat).
type Config struct {
	Game            GameConfig       `yaml:"game"`
	Players         []PlayerConfig   `yaml:"players"`
	Clock           ClockConfig      `yaml:"clock"`
	MaxMoves        int              `yaml:"max_moves"`
	NoLegalityCheck bool             `yaml:"no_legality_check"` // trust players to return possible movements
	Tournament      TournamentConfig `yaml:"tournament"`
}

type GameConfig struct {
	Name         string `yaml:"name"`
	games.Params `yaml:",inline"`
}

type PlayerConfig struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"` // minimax, random, first or last

	// Minimax and random
	Seed            uint64 `yaml:"seed"`
	MatchConsistent bool   `yaml:"match_consistent"`

	// Minimax only
	Depth   int  `yaml:"depth"` // 0 searches to the end of the game
	NoCache bool `yaml:"no_cache"`
	NoPrune bool `yaml:"no_prune"`
}

// ClockConfig holds time budgets. A zero budget is unlimited.
type ClockConfig struct {
	Move  time.Duration `yaml:"move"`
	Game  time.Duration `yaml:"game"`
	Start time.Duration `yaml:"start"`
}

type TournamentConfig struct {
	Repetitions int    `yaml:"repetitions"`
	Concurrency int    `yaml:"concurrency"`
	Output      string `yaml:"output"` // records directory; none when empty
}

var kinds = []string{"minimax", "random", "first", "last"}

func Default() *Config {
	return &Config{
		Game: GameConfig{Name: "nim"},
		Players: []PlayerConfig{
			{Name: "minimax", Kind: "minimax"},
			{Name: "random", Kind: "random"},
		},
		Clock: ClockConfig{
			Move:  meta.MOVE_TIMEOUT,
			Game:  meta.GAME_TIMEOUT,
			Start: meta.START_TIMEOUT,
		},
		MaxMoves: meta.MAX_MOVES,
		Tournament: TournamentConfig{
			Repetitions: meta.REPETITIONS,
			Concurrency: meta.GO_ROUTINES,
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// fields are rejected.
func Parse(data []byte) (*Config, error) {
	c := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if _, err := c.Rules(); err != nil {
		return err
	}
	if len(c.Players) == 0 {
		return errors.New("no players configured")
	}
	names := map[string]bool{}
	for i, p := range c.Players {
		if err := p.validate(); err != nil {
			return fmt.Errorf("player %d: %w", i, err)
		}
		name := p.name(i)
		if names[name] {
			return fmt.Errorf("player %d: duplicate name %q", i, name)
		}
		names[name] = true
	}
	if c.Clock.Move < 0 || c.Clock.Game < 0 || c.Clock.Start < 0 {
		return errors.New("clock budgets cannot be negative")
	}
	if c.MaxMoves < 0 {
		return fmt.Errorf("max_moves cannot be negative: %d", c.MaxMoves)
	}
	if c.Tournament.Repetitions < 0 || c.Tournament.Concurrency < 0 {
		return errors.New("tournament repetitions and concurrency cannot be negative")
	}
	return nil
}

func (p PlayerConfig) validate() error {
	switch p.Kind {
	case "minimax":
		if p.Depth < 0 {
			return fmt.Errorf("depth cannot be negative: %d", p.Depth)
		}
	case "random", "first", "last":
		if p.Depth != 0 || p.NoCache || p.NoPrune {
			return fmt.Errorf("%s player takes no search options", p.Kind)
		}
	default:
		return fmt.Errorf("unknown player kind %q (known: %v)", p.Kind, kinds)
	}
	return nil
}

func (p PlayerConfig) name(i int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("%s-%d", p.Kind, i)
}

// New builds a fresh player.
func (p PlayerConfig) New(name string) game.Player {
	switch p.Kind {
	case "minimax":
		options := []searcher.Option{searcher.WithName(name), searcher.WithSeed(p.Seed), searcher.WithMetrics()}
		if p.Depth > 0 {
			options = append(options, searcher.WithDepth(p.Depth))
		}
		if p.NoCache {
			options = append(options, searcher.WithoutCache())
		}
		if p.NoPrune {
			options = append(options, searcher.WithoutPruning())
		}
		if p.MatchConsistent {
			options = append(options, searcher.WithMatchConsistency())
		}
		return searcher.NewMinimax(options...)
	case "random":
		if p.MatchConsistent {
			return player.NewMatchConsistentRandom(p.Seed)
		}
		return player.NewRandom(p.Seed)
	case "first":
		return player.First{}
	default:
		return player.Last{}
	}
}

func (c *Config) Rules() (game.Rules, error) {
	return games.New(c.Game.Name, c.Game.Params)
}

// Entrants lists the configured players, each with its own factory.
func (c *Config) Entrants() []tournament.Entrant {
	entrants := make([]tournament.Entrant, len(c.Players))
	for i, p := range c.Players {
		name := p.name(i)
		entrants[i] = tournament.Entrant{Name: name, New: func() game.Player { return p.New(name) }}
	}
	return entrants
}

// Match seats the configured players in order.
func (c *Config) Match() (*engine.Game, error) {
	rules, err := c.Rules()
	if err != nil {
		return nil, err
	}
	players := make([]game.Player, len(c.Players))
	for i, e := range c.Entrants() {
		players[i] = e.New()
	}
	return engine.NewGame(rules, players, c.GameOptions()...)
}

func (c *Config) GameOptions() []engine.Option {
	options := []engine.Option{
		engine.WithMoveTimeout(c.Clock.Move),
		engine.WithGameTimeout(c.Clock.Game),
		engine.WithStartTimeout(c.Clock.Start),
		engine.WithMaxMoves(c.MaxMoves),
	}
	if c.NoLegalityCheck {
		options = append(options, engine.WithoutLegalityCheck())
	}
	return options
}

func (c *Config) TournamentOptions() []tournament.Option {
	return []tournament.Option{
		tournament.WithRepetitions(c.Tournament.Repetitions),
		tournament.WithConcurrency(c.Tournament.Concurrency),
		tournament.WithGameOptions(c.GameOptions()...),
	}
}
