package bot

import (
	"slices"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"ipdmatch/game"
)

// TatForTitBot copies the opponent like TitForTatBot but opens with a defection.
type TatForTitBot struct{ game.Deterministic }

func (TatForTitBot) FirstMove() game.Move { return game.Defect }

func (TatForTitBot) NextMove(_ int, _, opponent []game.Move) game.Move {
	return game.Last(opponent)
}

// TitForTwoTatsBot only answers every second defection.
type TitForTwoTatsBot struct {
	game.Deterministic
	defections int
}

func (t *TitForTwoTatsBot) FirstMove() game.Move {
	t.defections = 0
	return game.Cooperate
}

func (t *TitForTwoTatsBot) NextMove(_ int, _, opponent []game.Move) game.Move {
	if game.Last(opponent) == game.Defect {
		t.defections++
	}
	if t.defections >= 2 {
		t.defections = 0
		return game.Defect
	}
	return game.Cooperate
}

// TwoTitsForTatBot punishes every defection with two defections.
type TwoTitsForTatBot struct {
	game.Deterministic
	punish int
}

func (t *TwoTitsForTatBot) FirstMove() game.Move {
	t.punish = 0
	return game.Cooperate
}

func (t *TwoTitsForTatBot) NextMove(_ int, _, opponent []game.Move) game.Move {
	if t.punish >= 1 {
		t.punish--
		return game.Defect
	}
	if game.Last(opponent) == game.Defect {
		t.punish = 1
		return game.Defect
	}
	return game.Cooperate
}

// PavlovBot plays win-stay lose-shift. It opens with a defection and
// switches its move whenever the opponent defected.
type PavlovBot struct {
	game.Deterministic
	condition game.Move
}

func (p *PavlovBot) FirstMove() game.Move {
	p.condition = game.Defect
	return p.condition
}

func (p *PavlovBot) NextMove(_ int, _, opponent []game.Move) game.Move {
	if game.Last(opponent) == game.Defect {
		p.condition = p.condition.Opposite()
	}
	return p.condition
}

type testerState uint8

const (
	testerTest testerState = iota
	testerEvaluate
	testerConsolation
	testerDove
	testerHawk
	testerTitForTat
)

// TesterBot defects twice to see whether the opponent retaliates. A
// retaliating opponent gets two rounds of cooperation and then tit for tat,
// anyone else is exploited every second round.
type TesterBot struct {
	game.Deterministic
	state testerState
}

func (t *TesterBot) FirstMove() game.Move {
	t.state = testerTest
	return game.Defect
}

func (t *TesterBot) NextMove(_ int, _, opponent []game.Move) game.Move {
	switch t.state {
	case testerTest:
		t.state = testerEvaluate
		return game.Defect
	case testerEvaluate:
		if game.Last(opponent) == game.Defect {
			t.state = testerConsolation
			return game.Cooperate
		}
		t.state = testerDove
		return game.Defect
	case testerConsolation:
		t.state = testerTitForTat
		return game.Cooperate
	case testerDove:
		t.state = testerHawk
		return game.Cooperate
	case testerHawk:
		t.state = testerDove
		return game.Defect
	}
	return game.Last(opponent)
}

var (
	allDefect   = []game.Move{game.Defect, game.Defect, game.Defect, game.Defect, game.Defect}
	alternating = []game.Move{game.Cooperate, game.Defect, game.Cooperate, game.Defect, game.Cooperate}
)

// GenerousTitForTatBot plays tit for tat but offers cooperation to break
// out of five rounds of its own defection or alternation.
type GenerousTitForTatBot struct{ game.Deterministic }

func (GenerousTitForTatBot) FirstMove() game.Move { return game.Cooperate }

func (GenerousTitForTatBot) NextMove(_ int, own, opponent []game.Move) game.Move {
	if len(own) >= 5 {
		tail := own[len(own)-5:]
		if slices.Equal(tail, allDefect) || slices.Equal(tail, alternating) {
			return game.Cooperate
		}
	}
	return game.Last(opponent)
}

// DowningBot estimates how often its own defections were punished over the
// last twenty rounds and cooperates only while that rate exceeds Threshold.
type DowningBot struct {
	game.Deterministic
	Threshold float64
}

func NewDowningBot(threshold float64) DowningBot {
	return DowningBot{Threshold: threshold}
}

func (DowningBot) FirstMove() game.Move { return game.Cooperate }

func (d DowningBot) NextMove(_ int, own, opponent []game.Move) game.Move {
	n := len(own)
	switch {
	case n < 3:
		return game.Cooperate
	case n < 6:
		return game.Defect
	case n == 6:
		return game.Cooperate
	}

	var playedD, punished int
	for i := min(n-1, 20); i > 0; i-- {
		if own[n-i-1] == game.Defect {
			playedD++
			if opponent[n-i] == game.Defect {
				punished++
			}
		}
	}
	if playedD == 0 {
		return game.Last(opponent)
	}
	if float64(punished)/float64(playedD) > d.Threshold {
		return game.Cooperate
	}
	return game.Defect
}

// FixedPatternBot cycles through Pattern regardless of the opponent.
type FixedPatternBot struct {
	game.Deterministic
	Pattern []game.Move
	pos     int
}

func NewFixedPatternBot(pattern []game.Move) (*FixedPatternBot, error) {
	if len(pattern) == 0 {
		return nil, errors.New("fixed pattern: pattern is empty")
	}
	return &FixedPatternBot{Pattern: pattern}, nil
}

func (f *FixedPatternBot) FirstMove() game.Move {
	f.pos = 0
	return f.Pattern[f.pos]
}

func (f *FixedPatternBot) NextMove(int, []game.Move, []game.Move) game.Move {
	f.pos = (f.pos + 1) % len(f.Pattern)
	return f.Pattern[f.pos]
}

// SignalingCheaterBot plays Signal first. Afterwards it cooperates for
// good if the opponent opened with the same signal and defects otherwise.
type SignalingCheaterBot struct {
	game.Deterministic
	Signal []game.Move
}

func NewSignalingCheaterBot(signal []game.Move) (SignalingCheaterBot, error) {
	if len(signal) == 0 {
		return SignalingCheaterBot{}, errors.New("signaling cheater: signal is empty")
	}
	return SignalingCheaterBot{Signal: signal}, nil
}

func (s SignalingCheaterBot) FirstMove() game.Move { return s.Signal[0] }

func (s SignalingCheaterBot) NextMove(round int, _, opponent []game.Move) game.Move {
	if round < len(s.Signal) {
		return s.Signal[round]
	}
	if slices.Equal(opponent[:len(s.Signal)], s.Signal) {
		return game.Cooperate
	}
	return game.Defect
}

// JossBot plays tit for tat but defects unprovoked one time in ten.
type JossBot struct {
	rng *rand.Rand
}

func NewJossBot(rng *rand.Rand) *JossBot {
	return &JossBot{rng: rng}
}

func (j *JossBot) Randomizing() bool { return true }

func (j *JossBot) FirstMove() game.Move { return game.Cooperate }

func (j *JossBot) NextMove(_ int, _, opponent []game.Move) game.Move {
	if game.Last(opponent) == game.Defect || j.rng.Float64() < 0.1 {
		return game.Defect
	}
	return game.Cooperate
}

// TranquilizerBot cooperates but defects unprovoked with a probability
// that grows by 0.01 a round up to one half. Two opponent defections in a
// row are always answered.
type TranquilizerBot struct {
	rng  *rand.Rand
	evil float64
}

func NewTranquilizerBot(rng *rand.Rand) *TranquilizerBot {
	return &TranquilizerBot{rng: rng}
}

func (t *TranquilizerBot) Randomizing() bool { return true }

func (t *TranquilizerBot) FirstMove() game.Move {
	t.evil = 0
	return game.Cooperate
}

func (t *TranquilizerBot) NextMove(_ int, _, opponent []game.Move) game.Move {
	if t.evil < 0.5 {
		t.evil += 0.01
	}
	if n := len(opponent); n >= 2 && opponent[n-1] == game.Defect && opponent[n-2] == game.Defect {
		return game.Defect
	}
	if t.rng.Float64() < t.evil {
		return game.Defect
	}
	return game.Cooperate
}

// ParameterizedTitForTatBot is tit for tat with errors: after a defection
// it forgives with probability GoodRate, after cooperation it defects with
// probability EvilRate.
type ParameterizedTitForTatBot struct {
	GoodRate float64
	EvilRate float64
	rng      *rand.Rand
}

func NewParameterizedTitForTatBot(goodRate, evilRate float64, rng *rand.Rand) *ParameterizedTitForTatBot {
	return &ParameterizedTitForTatBot{GoodRate: goodRate, EvilRate: evilRate, rng: rng}
}

func (p *ParameterizedTitForTatBot) Randomizing() bool { return true }

func (p *ParameterizedTitForTatBot) FirstMove() game.Move {
	return p.react(game.Cooperate)
}

func (p *ParameterizedTitForTatBot) NextMove(_ int, _, opponent []game.Move) game.Move {
	return p.react(game.Last(opponent))
}

func (p *ParameterizedTitForTatBot) react(last game.Move) game.Move {
	if last == game.Defect {
		if p.rng.Float64() < p.GoodRate {
			return game.Cooperate
		}
		return game.Defect
	}
	if p.rng.Float64() < p.EvilRate {
		return game.Defect
	}
	return game.Cooperate
}
