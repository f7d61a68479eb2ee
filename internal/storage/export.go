package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/hybridsim/internal/dynamo"
)

type ExportData struct {
	Scenario string             `json:"scenario"`
	Dt       float64            `json:"dt"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Metrics  map[string]float64 `json:"metrics"`
}

func ExportJSON(path string, scenario string, dt float64, metrics map[string]float64, sol *dynamo.Solution) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return exportJSON(file, scenario, dt, metrics, sol)
}

func ExportJSONStdout(scenario string, dt float64, metrics map[string]float64, sol *dynamo.Solution) error {
	return exportJSON(os.Stdout, scenario, dt, metrics, sol)
}

func exportJSON(w io.Writer, scenario string, dt float64, metrics map[string]float64, sol *dynamo.Solution) error {
	data := ExportData{
		Scenario: scenario,
		Dt:       dt,
		Steps:    len(sol.Times),
		Times:    sol.Times,
		States:   make([][]float64, len(sol.States)),
		Metrics:  metrics,
	}
	for i, s := range sol.States {
		data.States[i] = s
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
