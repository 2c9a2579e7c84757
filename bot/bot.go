package bot

import (
	"golang.org/x/exp/rand"

	"ipdmatch/game"
)

type CooperateBot struct{ game.Deterministic }

func (CooperateBot) FirstMove() game.Move { return game.Cooperate }

func (CooperateBot) NextMove(int, []game.Move, []game.Move) game.Move {
	return game.Cooperate
}

type DefectBot struct{ game.Deterministic }

func (DefectBot) FirstMove() game.Move { return game.Defect }

func (DefectBot) NextMove(int, []game.Move, []game.Move) game.Move {
	return game.Defect
}

// TitForTatBot cooperates first and then copies whatever the opponent did
// last round.
type TitForTatBot struct{ game.Deterministic }

func (TitForTatBot) FirstMove() game.Move { return game.Cooperate }

func (TitForTatBot) NextMove(_ int, _, opponent []game.Move) game.Move {
	if game.Last(opponent) == game.Defect {
		return game.Defect
	}
	return game.Cooperate
}

// TitForTatBotReverse punishes cooperation and rewards defection.
type TitForTatBotReverse struct{ game.Deterministic }

func (TitForTatBotReverse) FirstMove() game.Move { return game.Cooperate }

func (TitForTatBotReverse) NextMove(_ int, _, opponent []game.Move) game.Move {
	if game.Last(opponent) == game.Cooperate {
		return game.Defect
	}
	return game.Cooperate
}

// GrudgerBot cooperates until the opponent defects once, then never again.
type GrudgerBot struct {
	game.Deterministic
	punish bool
}

func (g *GrudgerBot) FirstMove() game.Move {
	g.punish = false
	return game.Cooperate
}

func (g *GrudgerBot) NextMove(_ int, _, opponent []game.Move) game.Move {
	if g.punish {
		return game.Defect
	}
	if game.Last(opponent) == game.Defect {
		g.punish = true
		return game.Defect
	}
	return game.Cooperate
}

// RandomBot defects with probability P on every move, ignoring history.
type RandomBot struct {
	P   float64
	rng *rand.Rand
}

func NewRandomBot(p float64, rng *rand.Rand) *RandomBot {
	return &RandomBot{P: p, rng: rng}
}

// NewRandomDefectBot mostly cooperates but defects one time in ten.
func NewRandomDefectBot(rng *rand.Rand) *RandomBot {
	return NewRandomBot(0.1, rng)
}

func NewOftenRandomDefectBot(rng *rand.Rand) *RandomBot {
	return NewRandomBot(1.0/3.0, rng)
}

func (r *RandomBot) Randomizing() bool { return true }

func (r *RandomBot) FirstMove() game.Move { return r.decision() }

func (r *RandomBot) NextMove(int, []game.Move, []game.Move) game.Move {
	return r.decision()
}

func (r *RandomBot) decision() game.Move {
	if r.rng.Float64() < r.P {
		return game.Defect
	}
	return game.Cooperate
}
