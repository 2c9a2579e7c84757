package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"

	"ipdmatch/bot"
	"ipdmatch/config"
	"ipdmatch/game"
	"ipdmatch/runner"
)

var (
	configPath string
	logLevel   string
	strategyA  string
	strategyB  string
	samples    int
	noise      float64
	maxRounds  int
	terminate  float64
	seed       uint64
	replicates int
	workers    int

	rootCmd = &cobra.Command{
		Use:           "ipdmatch",
		Short:         "Play iterated prisoner's dilemma matches between two strategies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play a match and print the mean payoff per round of each player",
		RunE:  runPlay,
	}

	strategiesCmd = &cobra.Command{
		Use:   "strategies",
		Short: "List the available strategies",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range bot.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")

	f := playCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML match config")
	f.StringVar(&strategyA, "a", "", "strategy for player A")
	f.StringVar(&strategyB, "b", "", "strategy for player B")
	f.IntVar(&samples, "samples", 0, "samples to average when the match is random")
	f.Float64Var(&noise, "noise", 0, "probability that a move is flipped")
	f.IntVar(&maxRounds, "rounds", 0, "rounds per sample")
	f.Float64Var(&terminate, "termination", 0, "per round probability that the game goes on, sets the rounds")
	f.Uint64Var(&seed, "seed", 0, "seed for all random draws, 0 seeds from the clock")
	f.IntVar(&replicates, "replicates", 0, "independent matches to play, with consecutive seeds")
	f.IntVar(&workers, "workers", 0, "matches to play at once")

	rootCmd.AddCommand(playCmd, strategiesCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runPlay(cmd *cobra.Command, _ []string) error {
	logger := newLogger(os.Stderr, logLevel)

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	jobs := buildJobs(cfg)
	logger.Info("playing",
		"a", cfg.A.Strategy,
		"b", cfg.B.Strategy,
		"replicates", len(jobs),
		"seed", cfg.Seed,
	)

	results, err := runner.Run(cmd.Context(), jobs, runner.Options{Workers: cfg.Workers, Logger: logger})
	if err != nil {
		return err
	}

	return printResults(cmd.OutOrStdout(), results)
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("a") {
		cfg.A = config.Player{Strategy: strategyA}
	}
	if f.Changed("b") {
		cfg.B = config.Player{Strategy: strategyB}
	}
	if f.Changed("samples") {
		cfg.Samples = samples
	}
	if f.Changed("noise") {
		cfg.Noise = noise
	}
	if f.Changed("rounds") {
		cfg.MaxRounds = maxRounds
	}
	if f.Changed("termination") {
		cfg.Termination = terminate
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("replicates") {
		cfg.Replicates = replicates
	}
	if f.Changed("workers") {
		cfg.Workers = workers
	}
}

func buildJobs(cfg config.Config) []runner.Job {
	jobs := make([]runner.Job, cfg.Replicates)
	for i := range jobs {
		jobs[i] = runner.Job{
			Name:    fmt.Sprintf("%s vs %s #%d", cfg.A.Strategy, cfg.B.Strategy, i+1),
			A:       factory(cfg.A),
			B:       factory(cfg.B),
			Payoffs: cfg.GamePayoffs(),
			Config:  cfg.Match(),
			Seed:    cfg.Seed + uint64(i),
		}
	}
	return jobs
}

func factory(p config.Player) runner.StrategyFactory {
	return func(rng *rand.Rand) (game.Strategy, error) {
		return bot.New(p.Strategy, p.Params, rng)
	}
}

func printResults(w io.Writer, results []runner.Result) error {
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%-32s error: %v\n", r.Name, r.Err)
			continue
		}
		fmt.Fprintf(w, "%-32s seed=%-20d A=%.4f B=%.4f samples=%d seA=%.4f seB=%.4f\n",
			r.Name, r.Seed, r.ResultA, r.ResultB, r.Stats.Samples, r.Stats.StdErrA, r.Stats.StdErrB)
	}

	if failed > 0 {
		return errors.Errorf("%d of %d matches failed", failed, len(results))
	}
	return nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
