// Package config loads, saves, and validates run configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/hybridsim/internal/dynamo"
)

const (
	DefaultDt           = 0.01
	DefaultSDEDt        = 0.0005
	DefaultCheckpoints  = 100
	DefaultIterations   = 1000
	DefaultLearningRate = 0.01
	DefaultTrainTraj    = 8
	DefaultPlotTraj     = 32
	DefaultDetuning     = 1.0
	DefaultMaxAmplitude = 2.0
	DefaultDecay        = 0.1
	DefaultLossWeight   = 1.0
	DefaultHidden       = 10
)

type Config struct {
	Scenario     string  `yaml:"scenario"`
	Dt           float64 `yaml:"dt"`
	Checkpoints  int     `yaml:"checkpoints"`
	Iterations   int     `yaml:"iterations"`
	LearningRate float64 `yaml:"learning_rate"`
	Seed         int64   `yaml:"seed"`
	Hidden       int     `yaml:"hidden"`

	// Ensemble sizes: training evaluations and diagnostic/plot evaluations.
	TrainTraj int `yaml:"train_traj"`
	PlotTraj  int `yaml:"plot_traj"`

	// Sequential forces in-order trajectory evaluation for reproducible
	// scheduling; results are index-stable either way.
	Sequential bool `yaml:"sequential"`

	// Qubit physics.
	Detuning     float64 `yaml:"detuning"`
	MaxAmplitude float64 `yaml:"max_amplitude"`
	Decay        float64 `yaml:"decay"`
	LossWeight   float64 `yaml:"loss_weight"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:     "dosing",
		Dt:           DefaultDt,
		Checkpoints:  DefaultCheckpoints,
		Iterations:   DefaultIterations,
		LearningRate: DefaultLearningRate,
		Hidden:       DefaultHidden,
		TrainTraj:    DefaultTrainTraj,
		PlotTraj:     DefaultPlotTraj,
		Detuning:     DefaultDetuning,
		MaxAmplitude: DefaultMaxAmplitude,
		Decay:        DefaultDecay,
		LossWeight:   DefaultLossWeight,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects malformed configuration before any integration starts.
func (c *Config) Validate() error {
	if c.Scenario != "dosing" && c.Scenario != "qubit" {
		return fmt.Errorf("%w: unknown scenario %q", dynamo.ErrBadConfig, c.Scenario)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt=%g", dynamo.ErrBadConfig, c.Dt)
	}
	if c.Checkpoints < 2 {
		return fmt.Errorf("%w: checkpoints=%d", dynamo.ErrBadConfig, c.Checkpoints)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("%w: iterations=%d", dynamo.ErrBadConfig, c.Iterations)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: learning_rate=%g", dynamo.ErrBadConfig, c.LearningRate)
	}
	if c.Hidden <= 0 {
		return fmt.Errorf("%w: hidden=%d", dynamo.ErrBadConfig, c.Hidden)
	}
	if c.Scenario == "qubit" {
		if c.TrainTraj <= 0 || c.PlotTraj <= 0 {
			return fmt.Errorf("%w: trajectory counts %d/%d", dynamo.ErrBadConfig, c.TrainTraj, c.PlotTraj)
		}
		if c.Decay < 0 {
			return fmt.Errorf("%w: decay=%g", dynamo.ErrBadConfig, c.Decay)
		}
		if c.MaxAmplitude <= 0 {
			return fmt.Errorf("%w: max_amplitude=%g", dynamo.ErrBadConfig, c.MaxAmplitude)
		}
	}
	return nil
}
