// Package runner plays independent matches in parallel.
//
// Every job gets fresh strategy instances and its own generators, all
// derived from the job seed, so a job produces the same result no matter
// which worker runs it or in what order.
package runner

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"ipdmatch/game"
	"ipdmatch/match"
)

// StrategyFactory builds a new strategy for a single job. Randomizing
// strategies should draw from rng.
type StrategyFactory func(rng *rand.Rand) (game.Strategy, error)

type Job struct {
	Name    string
	A, B    StrategyFactory
	Payoffs game.Payoffs
	Config  match.Config
	Seed    uint64
}

type Result struct {
	ID      uuid.UUID
	Name    string
	Seed    uint64
	ResultA float64
	ResultB float64
	Stats   match.SampleStats
	Elapsed time.Duration
	Err     error
}

// failer is implemented by strategies that can fail while playing, such
// as a network bot whose activation errors.
type failer interface {
	Err() error
}

type Options struct {
	// Workers caps the number of matches playing at once. Zero means
	// GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// Run plays every job and returns the results in job order. A job that
// fails to build records its error in Result.Err without stopping the
// others. Cancelling ctx stops jobs that have not started yet; a match
// that is already playing always runs to completion.
func Run(ctx context.Context, jobs []Job, opts Options) ([]Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	results := make([]Result, len(jobs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		if gCtx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			results[i] = runJob(job, logger)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, errors.Wrap(err, "run cancelled")
	}
	if err := ctx.Err(); err != nil {
		return results, errors.Wrap(err, "run cancelled")
	}

	return results, nil
}

func runJob(job Job, logger *slog.Logger) (res Result) {
	res = Result{
		ID:   uuid.New(),
		Name: job.Name,
		Seed: job.Seed,
	}
	logger = logger.With("job_id", res.ID.String(), "job", job.Name, "seed", job.Seed)
	logger.Debug("job started")

	// a strategy returning an invalid move panics inside Play
	defer func() {
		if r := recover(); r != nil {
			res.Err = errors.Errorf("job %q panicked: %v", job.Name, r)
			logger.Error("job failed", "error", res.Err)
		}
	}()

	start := time.Now()
	m, err := build(job, logger)
	if err != nil {
		res.Err = err
		logger.Error("job failed", "error", err)
		return res
	}

	m.Play()

	if err := strategyErr(m); err != nil {
		res.Err = errors.Wrapf(err, "job %q", job.Name)
		logger.Error("job failed", "error", res.Err)
		return res
	}

	res.ResultA, res.ResultB = m.Results()
	res.Stats = m.Stats()
	res.Elapsed = time.Since(start)

	logger.Debug("job finished",
		"result_a", res.ResultA,
		"result_b", res.ResultB,
		"elapsed", res.Elapsed,
	)
	return res
}

func build(job Job, logger *slog.Logger) (*match.Match, error) {
	if job.A == nil || job.B == nil {
		return nil, errors.Wrapf(match.ErrNilStrategy, "job %q", job.Name)
	}

	// one stream for the noise, one per player
	rng := rand.New(rand.NewSource(job.Seed))
	rngA := rand.New(rand.NewSource(rng.Uint64()))
	rngB := rand.New(rand.NewSource(rng.Uint64()))

	a, err := job.A(rngA)
	if err != nil {
		return nil, errors.Wrapf(err, "job %q: player a", job.Name)
	}
	b, err := job.B(rngB)
	if err != nil {
		return nil, errors.Wrapf(err, "job %q: player b", job.Name)
	}

	m, err := match.New(a, b, job.Payoffs, job.Config, match.WithRand(rng), match.WithLogger(logger))
	if err != nil {
		return nil, errors.Wrapf(err, "job %q", job.Name)
	}
	return m, nil
}

func strategyErr(m *match.Match) error {
	a, b := m.Strategies()
	if f, ok := a.(failer); ok && f.Err() != nil {
		return errors.Wrap(f.Err(), "player a")
	}
	if f, ok := b.(failer); ok && f.Err() != nil {
		return errors.Wrap(f.Err(), "player b")
	}
	return nil
}
