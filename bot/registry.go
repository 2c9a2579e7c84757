package bot

import (
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"golang.org/x/exp/rand"

	"ipdmatch/game"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Params carries strategy options as they come out of a config file.
type Params map[string]any

type factory func(params Params, rng *rand.Rand) (game.Strategy, error)

var factories = map[string]factory{
	"cooperate": func(Params, *rand.Rand) (game.Strategy, error) { return CooperateBot{}, nil },
	"defect":    func(Params, *rand.Rand) (game.Strategy, error) { return DefectBot{}, nil },
	"tft":       func(Params, *rand.Rand) (game.Strategy, error) { return TitForTatBot{}, nil },
	"tft-reverse": func(Params, *rand.Rand) (game.Strategy, error) {
		return TitForTatBotReverse{}, nil
	},
	"grudger": func(Params, *rand.Rand) (game.Strategy, error) { return &GrudgerBot{}, nil },
	"random":  newRandomFromParams,
	"random-defect": func(_ Params, rng *rand.Rand) (game.Strategy, error) {
		return NewRandomDefectBot(rng), nil
	},
	"often-random-defect": func(_ Params, rng *rand.Rand) (game.Strategy, error) {
		return NewOftenRandomDefectBot(rng), nil
	},
	"network": newNetworkFromParams,

	"tat-for-tit":      func(Params, *rand.Rand) (game.Strategy, error) { return TatForTitBot{}, nil },
	"tit-for-two-tats": func(Params, *rand.Rand) (game.Strategy, error) { return &TitForTwoTatsBot{}, nil },
	"two-tits-for-tat": func(Params, *rand.Rand) (game.Strategy, error) { return &TwoTitsForTatBot{}, nil },
	"pavlov":           func(Params, *rand.Rand) (game.Strategy, error) { return &PavlovBot{}, nil },
	"tester":           func(Params, *rand.Rand) (game.Strategy, error) { return &TesterBot{}, nil },
	"generous-tft":     func(Params, *rand.Rand) (game.Strategy, error) { return GenerousTitForTatBot{}, nil },
	"joss": func(_ Params, rng *rand.Rand) (game.Strategy, error) {
		return NewJossBot(rng), nil
	},
	"tranquilizer": func(_ Params, rng *rand.Rand) (game.Strategy, error) {
		return NewTranquilizerBot(rng), nil
	},
	"downing":           newDowningFromParams,
	"parameterized-tft": newParameterizedTitForTatFromParams,
	"fixed-pattern":     newFixedPatternFromParams,
	"signaling-cheater": newSignalingCheaterFromParams,
}

// New builds a fresh strategy by name. Randomizing strategies draw from
// rng, which must not be shared with a concurrently running match.
func New(name string, params Params, rng *rand.Rand) (game.Strategy, error) {
	f, ok := factories[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q", name)
	}
	return f(params, rng)
}

// Names lists every registered strategy in sorted order.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// probability reads params[key] as a value in [0, 1], falling back to def.
func probability(params Params, name, key string, def float64) (float64, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	p, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, errors.Wrapf(err, "%s: invalid %s", name, key)
	}
	if p < 0 || p > 1 {
		return 0, errors.Errorf("%s: %s must be in [0, 1], got %v", name, key, p)
	}
	return p, nil
}

func newRandomFromParams(params Params, rng *rand.Rand) (game.Strategy, error) {
	p, err := probability(params, "random", "p", 0.5)
	if err != nil {
		return nil, err
	}
	return NewRandomBot(p, rng), nil
}

func newDowningFromParams(params Params, _ *rand.Rand) (game.Strategy, error) {
	threshold, err := probability(params, "downing", "threshold", 0.9)
	if err != nil {
		return nil, err
	}
	return NewDowningBot(threshold), nil
}

func newParameterizedTitForTatFromParams(params Params, rng *rand.Rand) (game.Strategy, error) {
	good, err := probability(params, "parameterized-tft", "goodrate", 0.2)
	if err != nil {
		return nil, err
	}
	evil, err := probability(params, "parameterized-tft", "evilrate", 0.05)
	if err != nil {
		return nil, err
	}
	return NewParameterizedTitForTatBot(good, evil, rng), nil
}

func movesParam(params Params, name, key, def string) ([]game.Move, error) {
	s := def
	if v, ok := params[key]; ok {
		var err error
		if s, err = cast.ToStringE(v); err != nil {
			return nil, errors.Wrapf(err, "%s: invalid %s", name, key)
		}
	}
	moves, err := game.ParseMoves(s)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: invalid %s", name, key)
	}
	return moves, nil
}

func newFixedPatternFromParams(params Params, _ *rand.Rand) (game.Strategy, error) {
	pattern, err := movesParam(params, "fixed-pattern", "pattern", "CDDC")
	if err != nil {
		return nil, err
	}
	return NewFixedPatternBot(pattern)
}

func newSignalingCheaterFromParams(params Params, _ *rand.Rand) (game.Strategy, error) {
	signal, err := movesParam(params, "signaling-cheater", "signal", "DCC")
	if err != nil {
		return nil, err
	}
	return NewSignalingCheaterBot(signal)
}

func newNetworkFromParams(params Params, _ *rand.Rand) (game.Strategy, error) {
	path, err := cast.ToStringE(params["genome"])
	if err != nil || path == "" {
		return nil, errors.New("network: genome path is required")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "network: failed to open genome file")
	}
	defer f.Close()

	return NewNeuralNetworkBotFromGenome(f)
}
