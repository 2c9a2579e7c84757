package game

// Strategy is a player in a match.
//
// FirstMove is called once per sample before any history exists. NextMove
// is called for every later round with the strategy's own moves first and
// the opponent's second, each holding exactly round entries. The slices
// belong to the match and must not be kept or modified.
type Strategy interface {
	Randomizing() bool
	FirstMove() Move
	NextMove(round int, own, opponent []Move) Move
}

// Deterministic can be embedded by strategies whose output only depends
// on the history they are shown.
type Deterministic struct{}

func (Deterministic) Randomizing() bool { return false }

// Last returns the most recent move in a history, or Cooperate when it is empty.
func Last(history []Move) Move {
	if len(history) == 0 {
		return Cooperate
	}
	return history[len(history)-1]
}
