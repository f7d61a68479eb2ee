package config

var Presets = map[string]map[string]*Config{
	"dosing": {
		"reference": {
			Scenario: "dosing", Dt: 0.01, Checkpoints: 100,
			Iterations: 1000, LearningRate: 0.01, Hidden: 10,
		},
		"quick": {
			Scenario: "dosing", Dt: 0.05, Checkpoints: 40,
			Iterations: 100, LearningRate: 0.05, Hidden: 10,
		},
	},
	"qubit": {
		"reference": {
			Scenario: "qubit", Dt: 0.0005, Checkpoints: 20,
			Iterations: 100, LearningRate: 0.01, Hidden: 8,
			TrainTraj: 8, PlotTraj: 32,
			Detuning: 1.0, MaxAmplitude: 2.0, Decay: 0.1, LossWeight: 1.0,
		},
		"quick": {
			Scenario: "qubit", Dt: 0.005, Checkpoints: 10,
			Iterations: 30, LearningRate: 0.05, Hidden: 8,
			TrainTraj: 4, PlotTraj: 16,
			Detuning: 1.0, MaxAmplitude: 2.0, Decay: 0.1, LossWeight: 1.0,
		},
		"strong-decay": {
			Scenario: "qubit", Dt: 0.0005, Checkpoints: 20,
			Iterations: 100, LearningRate: 0.01, Hidden: 8,
			TrainTraj: 8, PlotTraj: 32,
			Detuning: 1.0, MaxAmplitude: 4.0, Decay: 0.5, LossWeight: 1.0,
		},
	},
}

func GetPreset(scenario, preset string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := scenarioPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	return names
}
