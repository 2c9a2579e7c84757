package bot

import (
	"io"

	"github.com/pkg/errors"
	"github.com/yaricom/goNEAT/v2/neat/genetics"
	"github.com/yaricom/goNEAT/v2/neat/network"

	"ipdmatch/game"
)

// Network is the part of a NEAT phenotype the bot drives.
// *network.Network from goNEAT satisfies it.
type Network interface {
	LoadSensors(inputs []float64) error
	Activate() (bool, error)
	ReadOutputs() []float64
	Flush() (bool, error)
}

// noHistory is fed to both sensors before the first move.
const noHistory = -1.0

// NeuralNetworkBot asks an evolved network what to play, given its own
// and the opponent's previous move. The network is flushed at the start
// of every sample so activations never leak from one game into the next.
type NeuralNetworkBot struct {
	game.Deterministic
	net Network
	err error
}

func NewNeuralNetworkBot(net Network) *NeuralNetworkBot {
	return &NeuralNetworkBot{net: net}
}

// NewNeuralNetworkBotFromGenome reads a plain text goNEAT genome and builds
// its phenotype. The genome must have exactly two input neurons, own and
// opponent move, and at least one output.
func NewNeuralNetworkBotFromGenome(r io.Reader) (*NeuralNetworkBot, error) {
	genome, err := genetics.ReadGenome(r, 1)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read genome")
	}

	var inputs, outputs int
	for _, node := range genome.Nodes {
		switch node.NeuronType {
		case network.InputNeuron:
			inputs++
		case network.OutputNeuron:
			outputs++
		}
	}
	if inputs != 2 || outputs < 1 {
		return nil, errors.Errorf("genome must have 2 inputs and at least 1 output, got %d and %d", inputs, outputs)
	}

	net, err := genome.Genesis(1)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build network from genome")
	}

	return NewNeuralNetworkBot(net), nil
}

// Err returns the first error the network reported. A bot with an error
// keeps playing, treating the failed activation as cooperation.
func (n *NeuralNetworkBot) Err() error {
	return n.err
}

func (n *NeuralNetworkBot) FirstMove() game.Move {
	if _, err := n.net.Flush(); err != nil {
		n.record(errors.Wrap(err, "failed to flush network"))
	}
	return n.decision(noHistory, noHistory)
}

func (n *NeuralNetworkBot) NextMove(_ int, own, opponent []game.Move) game.Move {
	return n.decision(float64(game.Last(own)), float64(game.Last(opponent)))
}

func (n *NeuralNetworkBot) decision(own, opponent float64) game.Move {
	if err := n.net.LoadSensors([]float64{own, opponent}); err != nil {
		n.record(errors.Wrap(err, "failed to load sensors"))
		return game.Cooperate
	}

	if _, err := n.net.Activate(); err != nil {
		n.record(errors.Wrap(err, "failed to activate network"))
		return game.Cooperate
	}
	outputs := n.net.ReadOutputs()

	// based on what the network says play!
	if len(outputs) > 0 && outputs[0] > 0.5 {
		return game.Defect
	}
	return game.Cooperate
}

func (n *NeuralNetworkBot) record(err error) {
	if n.err == nil {
		n.err = err
	}
}
