package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/hybridsim/internal/dynamo"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown scenario", func(c *Config) { c.Scenario = "pendulum" }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"one checkpoint", func(c *Config) { c.Checkpoints = 1 }},
		{"zero iterations", func(c *Config) { c.Iterations = 0 }},
		{"negative learning rate", func(c *Config) { c.LearningRate = -0.1 }},
		{"zero hidden", func(c *Config) { c.Hidden = 0 }},
		{"zero trajectories", func(c *Config) { c.Scenario = "qubit"; c.TrainTraj = 0 }},
		{"negative decay", func(c *Config) { c.Scenario = "qubit"; c.Decay = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, dynamo.ErrBadConfig) {
				t.Errorf("expected ErrBadConfig, got %v", err)
			}
		})
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Scenario = "qubit"
	cfg.Dt = 0.0005
	cfg.PlotTraj = 64

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Scenario != "qubit" || loaded.Dt != 0.0005 || loaded.PlotTraj != 64 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("scenario: qubit\ndecay: 0.3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Scenario != "qubit" || loaded.Decay != 0.3 {
		t.Errorf("file values lost: %+v", loaded)
	}
	if loaded.Dt != DefaultDt || loaded.Iterations != DefaultIterations {
		t.Errorf("defaults not applied: dt=%g iterations=%d", loaded.Dt, loaded.Iterations)
	}
}

func TestPresets(t *testing.T) {
	for scenario, presets := range Presets {
		for name, cfg := range presets {
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset %s/%s invalid: %v", scenario, name, err)
			}
		}
	}

	if GetPreset("dosing", "reference") == nil {
		t.Error("dosing/reference preset missing")
	}
	if GetPreset("dosing", "nope") != nil {
		t.Error("unknown preset returned")
	}
	if len(ListPresets("qubit")) == 0 {
		t.Error("qubit presets missing")
	}
}
