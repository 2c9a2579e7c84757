// Package config loads the YAML description of a match run.
//
// A file looks like:
//
//	payoffs: {t: 5, r: 3, p: 1, s: 0}
//	samples: 100
//	noise: 0.01
//	max_rounds: 200
//	termination: 0
//	seed: 42
//	replicates: 4
//	workers: 4
//	a: {strategy: tft}
//	b: {strategy: random, params: {p: 0.3}}
//
// Missing fields keep the values from Default.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"ipdmatch/game"
	"ipdmatch/match"
)

var validate = validator.New()

type Payoffs struct {
	T int `yaml:"t"`
	R int `yaml:"r"`
	P int `yaml:"p"`
	S int `yaml:"s"`
}

type Player struct {
	Strategy string         `yaml:"strategy" validate:"required"`
	Params   map[string]any `yaml:"params,omitempty"`
}

type Config struct {
	Payoffs   Payoffs `yaml:"payoffs"`
	Samples   int     `yaml:"samples" validate:"gte=1"`
	Noise     float64 `yaml:"noise" validate:"gte=0,lte=1"`
	MaxRounds int     `yaml:"max_rounds" validate:"gte=1"`

	// Termination, when set, replaces MaxRounds with the game length a
	// match ending with this probability each round reaches half the time.
	Termination float64 `yaml:"termination" validate:"gte=0,lt=1"`

	// Seed 0 means seed from the clock.
	Seed       uint64 `yaml:"seed"`
	Replicates int    `yaml:"replicates" validate:"gte=1"`
	Workers    int    `yaml:"workers" validate:"gte=0"`

	A Player `yaml:"a"`
	B Player `yaml:"b"`
}

func Default() Config {
	return Config{
		Payoffs:    Payoffs{T: 5, R: 3, P: 1, S: 0},
		Samples:    100,
		Noise:      0,
		MaxRounds:  200,
		Replicates: 1,
		Workers:    4,
		A:          Player{Strategy: "tft"},
		B:          Player{Strategy: "defect"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read the config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse the config file")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if c.Termination > 0 {
		if _, err := match.RoundsForTermination(c.Termination); err != nil {
			return errors.Wrap(err, "invalid config")
		}
	}
	return nil
}

func (c Config) GamePayoffs() game.Payoffs {
	return game.NewPayoffs(c.Payoffs.T, c.Payoffs.R, c.Payoffs.P, c.Payoffs.S)
}

// Match converts the file settings into a match configuration. A
// termination probability that Validate accepts takes precedence over
// max_rounds.
func (c Config) Match() match.Config {
	cfg := match.Config{
		Samples:   c.Samples,
		Noise:     c.Noise,
		MaxRounds: c.MaxRounds,
	}
	if c.Termination > 0 {
		if rounds, err := match.RoundsForTermination(c.Termination); err == nil {
			cfg.MaxRounds = rounds
		}
	}
	return cfg
}
