package runner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"ipdmatch/bot"
	"ipdmatch/game"
	"ipdmatch/match"
)

func fixed(s game.Strategy) StrategyFactory {
	return func(*rand.Rand) (game.Strategy, error) { return s, nil }
}

func random(p float64) StrategyFactory {
	return func(rng *rand.Rand) (game.Strategy, error) { return bot.NewRandomBot(p, rng), nil }
}

func TestRun_ResultsInJobOrder(t *testing.T) {
	cfg := match.Config{Samples: 1, MaxRounds: 10}
	jobs := []Job{
		{Name: "cc", A: fixed(bot.CooperateBot{}), B: fixed(bot.CooperateBot{}), Payoffs: game.StandardPayoffs(), Config: cfg},
		{Name: "dd", A: fixed(bot.DefectBot{}), B: fixed(bot.DefectBot{}), Payoffs: game.StandardPayoffs(), Config: cfg},
		{Name: "dc", A: fixed(bot.DefectBot{}), B: fixed(bot.CooperateBot{}), Payoffs: game.StandardPayoffs(), Config: cfg},
		{Name: "tft-d", A: fixed(bot.TitForTatBot{}), B: fixed(bot.DefectBot{}), Payoffs: game.StandardPayoffs(), Config: cfg},
	}

	results, err := Run(context.Background(), jobs, Options{Workers: 2})
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	want := [][2]float64{{3, 3}, {1, 1}, {5, 0}, {0.9, 1.4}}
	for i, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, jobs[i].Name, r.Name)
		assert.NotEqual(t, uuid.Nil, r.ID)
		assert.InDelta(t, want[i][0], r.ResultA, 1e-12, r.Name)
		assert.InDelta(t, want[i][1], r.ResultB, 1e-12, r.Name)
	}
}

func TestRun_ReproducibleForSeed(t *testing.T) {
	cfg := match.Config{Samples: 30, Noise: 0.1, MaxRounds: 40}
	job := Job{Name: "rand-tft", A: random(0.3), B: fixed(bot.TitForTatBot{}), Payoffs: game.StandardPayoffs(), Config: cfg, Seed: 1234}

	jobs := []Job{job, job, job}
	results, err := Run(context.Background(), jobs, Options{Workers: 3})
	require.NoError(t, err)

	for _, r := range results[1:] {
		assert.Equal(t, results[0].ResultA, r.ResultA)
		assert.Equal(t, results[0].ResultB, r.ResultB)
		assert.Equal(t, results[0].Stats, r.Stats)
	}

	job.Seed = 4321
	other, err := Run(context.Background(), []Job{job}, Options{})
	require.NoError(t, err)
	assert.NotEqual(t, results[0].ResultA, other[0].ResultA)
}

func TestRun_JobErrorsDoNotStopOthers(t *testing.T) {
	broken := func(*rand.Rand) (game.Strategy, error) { return nil, errors.New("no such bot") }
	cfg := match.Config{Samples: 1, MaxRounds: 5}

	jobs := []Job{
		{Name: "broken", A: broken, B: fixed(bot.DefectBot{}), Payoffs: game.StandardPayoffs(), Config: cfg},
		{Name: "bad-config", A: fixed(bot.DefectBot{}), B: fixed(bot.DefectBot{}), Payoffs: game.StandardPayoffs()},
		{Name: "missing", A: fixed(bot.DefectBot{}), Payoffs: game.StandardPayoffs(), Config: cfg},
		{Name: "ok", A: fixed(bot.DefectBot{}), B: fixed(bot.DefectBot{}), Payoffs: game.StandardPayoffs(), Config: cfg},
	}

	results, err := Run(context.Background(), jobs, Options{Workers: 1})
	require.NoError(t, err)

	assert.ErrorContains(t, results[0].Err, "no such bot")
	assert.True(t, errors.Is(results[1].Err, match.ErrMaxRounds))
	assert.True(t, errors.Is(results[2].Err, match.ErrNilStrategy))
	assert.NoError(t, results[3].Err)
	assert.Equal(t, 1.0, results[3].ResultA)
}

type invalidBot struct{ game.Deterministic }

func (invalidBot) FirstMove() game.Move                             { return game.Move(7) }
func (invalidBot) NextMove(int, []game.Move, []game.Move) game.Move { return game.Move(7) }

type failingBot struct {
	bot.CooperateBot
	err error
}

func (f failingBot) Err() error { return f.err }

func TestRun_PanickingStrategyIsAJobError(t *testing.T) {
	cfg := match.Config{Samples: 1, MaxRounds: 5}
	jobs := []Job{
		{Name: "invalid", A: fixed(invalidBot{}), B: fixed(bot.DefectBot{}), Payoffs: game.StandardPayoffs(), Config: cfg},
		{Name: "ok", A: fixed(bot.DefectBot{}), B: fixed(bot.DefectBot{}), Payoffs: game.StandardPayoffs(), Config: cfg},
	}

	results, err := Run(context.Background(), jobs, Options{Workers: 2})
	require.NoError(t, err)

	require.Error(t, results[0].Err)
	assert.ErrorContains(t, results[0].Err, "panicked")
	assert.Equal(t, "invalid", results[0].Name)
	assert.NoError(t, results[1].Err)
}

func TestRun_StrategyErrorIsAJobError(t *testing.T) {
	cfg := match.Config{Samples: 1, MaxRounds: 5}
	broken := failingBot{err: errors.New("activation failed")}
	jobs := []Job{
		{Name: "b-fails", A: fixed(bot.DefectBot{}), B: fixed(broken), Payoffs: game.StandardPayoffs(), Config: cfg},
		{Name: "healthy", A: fixed(failingBot{}), B: fixed(bot.DefectBot{}), Payoffs: game.StandardPayoffs(), Config: cfg},
	}

	results, err := Run(context.Background(), jobs, Options{Workers: 1})
	require.NoError(t, err)

	assert.ErrorContains(t, results[0].Err, "player b")
	assert.ErrorContains(t, results[0].Err, "activation failed")
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 0.0, results[1].ResultA)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := match.Config{Samples: 1, MaxRounds: 5}
	jobs := []Job{
		{Name: "a", A: fixed(bot.DefectBot{}), B: fixed(bot.DefectBot{}), Payoffs: game.StandardPayoffs(), Config: cfg},
	}

	_, err := Run(ctx, jobs, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_Empty(t *testing.T) {
	results, err := Run(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
}
