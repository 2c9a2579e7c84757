package match

import "ipdmatch/game"

// noiseFilter flips the intended move with probability noise. The flip
// happens before either player sees the move, so both histories record
// what actually got played.
func (m *Match) noiseFilter(intended game.Move) game.Move {
	switch {
	case m.config.Noise == 0:
		return intended
	case m.config.Noise == 1:
		return intended.Opposite()
	case m.rng.Float64() < m.config.Noise:
		return intended.Opposite()
	}
	return intended
}
