package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipdmatch/config"
	"ipdmatch/runner"
)

func TestBuildJobs(t *testing.T) {
	cfg := config.Default()
	cfg.Replicates = 3
	cfg.Seed = 10
	cfg.B = config.Player{Strategy: "random", Params: map[string]any{"p": 0.2}}

	jobs := buildJobs(cfg)
	require.Len(t, jobs, 3)
	for i, job := range jobs {
		assert.Equal(t, uint64(10+i), job.Seed)
		assert.Equal(t, cfg.Match(), job.Config)
		assert.Equal(t, cfg.GamePayoffs(), job.Payoffs)
	}
	assert.Equal(t, "tft vs random #2", jobs[1].Name)

	results, err := runner.Run(context.Background(), jobs, runner.Options{Workers: 2})
	require.NoError(t, err)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, 100, r.Stats.Samples)
	}
}

func TestBuildJobs_UnknownStrategy(t *testing.T) {
	cfg := config.Default()
	cfg.A = config.Player{Strategy: "nobody"}

	results, err := runner.Run(context.Background(), buildJobs(cfg), runner.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = printResults(&buf, results)
	assert.Error(t, err)
	assert.Contains(t, buf.String(), "unknown strategy")
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	err := printResults(&buf, []runner.Result{
		{Name: "tft vs defect #1", Seed: 1, ResultA: 0.9, ResultB: 1.4},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "A=0.9000 B=1.4000")

	buf.Reset()
	err = printResults(&buf, []runner.Result{{Name: "x", Err: errors.New("boom")}})
	assert.EqualError(t, err, "1 of 1 matches failed")
	assert.Contains(t, buf.String(), "boom")
}

func TestStrategiesCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"strategies"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "tft\n")
	assert.Contains(t, buf.String(), "grudger\n")
}

func TestPlayCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"play", "--a", "tft", "--b", "defect", "--rounds", "10", "--seed", "1"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "A=0.9000 B=1.4000")
}

func TestPlayCommand_Termination(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"play", "--a", "tft", "--b", "defect", "--termination", "0.9", "--seed", "1"})
	defer rootCmd.SetArgs(nil)

	// 0.9 per round gives 7 rounds: one sucker payoff then six mutual defections
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "A=0.8571 B=1.5714")
}
