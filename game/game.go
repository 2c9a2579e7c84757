package game

import (
	"fmt"

	"github.com/pkg/errors"
)

type Move uint8

const (
	Cooperate Move = iota
	Defect
)

func (m Move) Valid() bool {
	return m == Cooperate || m == Defect
}

// Opposite is what a communication error turns the move into.
func (m Move) Opposite() Move {
	if m == Cooperate {
		return Defect
	}
	return Cooperate
}

func (m Move) String() string {
	switch m {
	case Cooperate:
		return "C"
	case Defect:
		return "D"
	}
	return fmt.Sprintf("Move(%d)", uint8(m))
}

// Payoffs maps a pair of moves to the pair of per round payoffs,
// indexed [moveA][moveB][player] with player 0 = A and 1 = B.
type Payoffs [2][2][2]int

// NewPayoffs fills the table from the temptation, reward, punishment
// and sucker values. Nothing is enforced about their ordering.
func NewPayoffs(t, r, p, s int) Payoffs {
	var table Payoffs

	// if both defect they both get punished
	table[Defect][Defect] = [2]int{p, p}

	// if you defect and they don't you get the temptation
	// and they get the sucker payoff
	table[Defect][Cooperate] = [2]int{t, s}
	table[Cooperate][Defect] = [2]int{s, t}

	// if both play nice then both get the reward
	table[Cooperate][Cooperate] = [2]int{r, r}

	return table
}

// StandardPayoffs is the canonical T=5, R=3, P=1, S=0 table.
func StandardPayoffs() Payoffs {
	return NewPayoffs(5, 3, 1, 0)
}

func (p Payoffs) Score(a, b Move) (int, int) {
	cell := p[a][b]
	return cell[0], cell[1]
}

// TRPS returns the four values the table was built from.
func (p Payoffs) TRPS() (t, r, pun, s int) {
	return p[Defect][Cooperate][0], p[Cooperate][Cooperate][0], p[Defect][Defect][0], p[Cooperate][Defect][0]
}

// ParseMoves reads a pattern such as "CDDC". Case is ignored.
func ParseMoves(s string) ([]Move, error) {
	moves := make([]Move, 0, len(s))
	for _, r := range s {
		switch r {
		case 'C', 'c':
			moves = append(moves, Cooperate)
		case 'D', 'd':
			moves = append(moves, Defect)
		default:
			return nil, errors.Errorf("invalid move %q in %q", r, s)
		}
	}
	return moves, nil
}
