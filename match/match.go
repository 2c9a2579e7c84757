// Package match plays two strategies against each other for a fixed number
// of rounds and reports the mean per round payoff of each player.
//
// A Match owns its history buffers and its random generator. It is not
// safe for concurrent use; independent matches may run in parallel as long
// as they do not share strategies with mutable state.
package match

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"ipdmatch/game"
)

var (
	ErrNilStrategy = errors.New("strategy must not be nil")
	ErrMaxRounds   = errors.New("max rounds must be at least 1")
	ErrSamples     = errors.New("samples must be at least 1")
	ErrNoise       = errors.New("noise must be a probability in [0, 1]")
	ErrTermination = errors.New("termination probability must be in (0, 1)")
)

// Config holds the parameters fixed for the lifetime of a match.
type Config struct {
	Samples   int
	Noise     float64
	MaxRounds int
}

func (c Config) Validate() error {
	if c.MaxRounds < 1 {
		return errors.Wrapf(ErrMaxRounds, "got %d", c.MaxRounds)
	}
	if c.Samples < 1 {
		return errors.Wrapf(ErrSamples, "got %d", c.Samples)
	}
	if math.IsNaN(c.Noise) || c.Noise < 0 || c.Noise > 1 {
		return errors.Wrapf(ErrNoise, "got %v", c.Noise)
	}
	return nil
}

// RoundsForTermination converts a per round continuation probability into
// the fixed game length whose chance of being reached is one half.
func RoundsForTermination(p float64) (int, error) {
	if math.IsNaN(p) || p <= 0 || p >= 1 {
		return 0, errors.Wrapf(ErrTermination, "got %v", p)
	}
	rounds := int(math.Log(0.5)/math.Log(p) + 0.5)
	if rounds < 1 {
		return 0, errors.Wrapf(ErrMaxRounds, "termination %v gives %d rounds", p, rounds)
	}
	return rounds, nil
}

type Match struct {
	a, b    game.Strategy
	payoffs game.Payoffs
	config  Config

	historyA []game.Move
	historyB []game.Move

	round   int
	samples int
	sumA    int64
	sumB    int64
	resultA float64
	resultB float64

	// per sample mean payoffs, kept for Stats
	sampleA []float64
	sampleB []float64

	rng    *rand.Rand
	logger *slog.Logger
}

// New builds a match between a and b. Samples, noise and max rounds are
// taken from cfg in that order; an invalid cfg produces no match.
func New(a, b game.Strategy, payoffs game.Payoffs, cfg Config, opts ...Option) (*Match, error) {
	if a == nil || b == nil {
		return nil, ErrNilStrategy
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid match config")
	}

	m := &Match{
		a:        a,
		b:        b,
		payoffs:  payoffs,
		config:   cfg,
		historyA: make([]game.Move, cfg.MaxRounds),
		historyB: make([]game.Move, cfg.MaxRounds),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = newClockRand()
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}

	return m, nil
}

// Reset rebinds the strategies and clears the results so the match can be
// played again. Buffers, payoffs and config are kept.
func (m *Match) Reset(a, b game.Strategy) error {
	if a == nil || b == nil {
		return ErrNilStrategy
	}

	m.a = a
	m.b = b
	m.round = 0
	m.samples = 0
	m.sumA = 0
	m.sumB = 0
	m.resultA = 0
	m.resultB = 0
	m.sampleA = m.sampleA[:0]
	m.sampleB = m.sampleB[:0]

	return nil
}

// Play runs the match to completion. A match that has already been played
// is left untouched until Reset.
func (m *Match) Play() {
	if m.round > 0 {
		return
	}

	m.samples = m.effectiveSamples()
	for i := 0; i < m.samples; i++ {
		m.playSample()
	}

	total := float64(m.samples) * float64(m.config.MaxRounds)
	m.resultA = float64(m.sumA) / total
	m.resultB = float64(m.sumB) / total

	m.logger.Debug("match played",
		"effective_samples", m.samples,
		"max_rounds", m.config.MaxRounds,
		"noise", m.config.Noise,
		"result_a", m.resultA,
		"result_b", m.resultB,
	)
}

// effectiveSamples collapses the configured samples to one when nothing in
// the match is random, since every sample would be identical.
func (m *Match) effectiveSamples() int {
	if m.config.Noise > 0 || m.a.Randomizing() || m.b.Randomizing() {
		return m.config.Samples
	}
	return 1
}

func (m *Match) playSample() {
	var sumA, sumB int64

	a := m.noiseFilter(m.a.FirstMove())
	b := m.noiseFilter(m.b.FirstMove())
	m.historyA[0] = a
	m.historyB[0] = b
	pa, pb := m.score(a, b)
	sumA += int64(pa)
	sumB += int64(pb)

	for r := 1; r < m.config.MaxRounds; r++ {
		m.round = r

		// each player sees its own history first
		a = m.noiseFilter(m.a.NextMove(r, m.historyA[:r], m.historyB[:r]))
		b = m.noiseFilter(m.b.NextMove(r, m.historyB[:r], m.historyA[:r]))

		m.historyA[r] = a
		m.historyB[r] = b
		pa, pb = m.score(a, b)
		sumA += int64(pa)
		sumB += int64(pb)
	}
	m.round = m.config.MaxRounds

	m.sumA += sumA
	m.sumB += sumB

	rounds := float64(m.config.MaxRounds)
	m.sampleA = append(m.sampleA, float64(sumA)/rounds)
	m.sampleB = append(m.sampleB, float64(sumB)/rounds)
}

func (m *Match) score(a, b game.Move) (int, int) {
	if !a.Valid() || !b.Valid() {
		panic(fmt.Sprintf("match: strategy returned invalid move (a=%v, b=%v)", a, b))
	}
	return m.payoffs.Score(a, b)
}

func (m *Match) ResultA() float64 { return m.resultA }
func (m *Match) ResultB() float64 { return m.resultB }

func (m *Match) Results() (float64, float64) {
	return m.resultA, m.resultB
}

// Totals returns the integer payoff sums across every sampled round.
func (m *Match) Totals() (int64, int64) {
	return m.sumA, m.sumB
}

func (m *Match) Round() int { return m.round }

// Played reports whether Play has run since construction or the last Reset.
func (m *Match) Played() bool { return m.round > 0 }

func (m *Match) Config() Config { return m.config }

func (m *Match) Payoffs() game.Payoffs { return m.payoffs }

// Strategies returns the two strategies currently bound to the match.
func (m *Match) Strategies() (game.Strategy, game.Strategy) { return m.a, m.b }

// EffectiveSamples is the number of samples the last Play evaluated, or 0
// if the match has not been played.
func (m *Match) EffectiveSamples() int { return m.samples }

// HistoryA returns a copy of player A's moves in the most recent sample.
func (m *Match) HistoryA() []game.Move {
	return append([]game.Move(nil), m.historyA...)
}

// HistoryB returns a copy of player B's moves in the most recent sample.
func (m *Match) HistoryB() []game.Move {
	return append([]game.Move(nil), m.historyB...)
}
