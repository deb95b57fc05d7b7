package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"iarena/config"
	"iarena/game"
	"iarena/games"
	"iarena/metrics"
	"iarena/tournament"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	cfg        *config.Config

	rootCmd = &cobra.Command{
		Use:           "iarena",
		Short:         "Play turn-based games between automated players",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			zerolog.SetGlobalLevel(level)
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

			if configPath == "" {
				cfg = config.Default()
				return nil
			}
			cfg, err = config.Load(configPath)
			return err
		},
	}

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play one game between the configured players, seated in order",
		Args:  cobra.NoArgs,
		RunE:  runPlay,
	}

	tournamentCmd = &cobra.Command{
		Use:   "tournament",
		Short: "Play every seating of the configured players and rank them",
		Args:  cobra.NoArgs,
		RunE:  runTournament,
	}

	gamesCmd = &cobra.Command{
		Use:   "games",
		Short: "List the known games",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(games.Names(), "\n"))
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML match or tournament description")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "trace, debug, info, warn or error")
	rootCmd.AddCommand(playCmd, tournamentCmd, gamesCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Msgf("%v", err)
		os.Exit(1)
	}
}

func runPlay(cmd *cobra.Command, args []string) error {
	g, err := cfg.Match()
	if err != nil {
		return err
	}
	score, err := g.PlayContext(cmd.Context())
	out := cmd.OutOrStdout()
	if fault := g.Fault(); fault != nil {
		fmt.Fprintf(out, "game %s faulted after %d moves: %s\n", g.ID(), g.Moves(), fault)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "game %s finished after %d moves, winner %d\n", g.ID(), g.Moves(), score.Winner())
	for i, e := range cfg.Entrants() {
		fmt.Fprintf(out, "  %d %-12s %g\n", i, e.Name, score.Get(game.PlayerIndex(i)))
	}
	return nil
}

func runTournament(cmd *cobra.Command, args []string) error {
	rules, err := cfg.Rules()
	if err != nil {
		return err
	}
	options := cfg.TournamentOptions()
	if cfg.Tournament.Output != "" {
		writer, err := metrics.NewWriter(cfg.Tournament.Output)
		if err != nil {
			return err
		}
		options = append(options, tournament.WithWriter(writer))
	}

	t, err := tournament.New(rules, cfg.Entrants(), options...)
	if err != nil {
		return err
	}
	result, err := t.Run(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-4s %-12s %8s %5s %6s %5s\n", "rank", "player", "score", "wins", "faults", "games")
	for i, s := range result.Standings {
		fmt.Fprintf(out, "%-4d %-12s %8g %5d %6d %5d\n", i+1, s.Name, s.Score, s.Wins, s.Faults, s.Games)
	}
	return nil
}
