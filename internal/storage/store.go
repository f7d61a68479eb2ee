// Package storage persists training runs on disk. Each run gets its own
// directory under the base dir: metadata.json describes the run, loss.csv
// holds the per-iteration loss history, params.json the trained parameter
// vector, and optional solution CSVs hold simulated trajectories.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/hybridsim/internal/dynamo"
	"github.com/san-kum/hybridsim/internal/params"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Scenario     string             `json:"scenario"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Dt           float64            `json:"dt"`
	Iterations   int                `json:"iterations"`
	LearningRate float64            `json:"learning_rate"`
	FinalLoss    float64            `json:"final_loss"`
	Metrics      map[string]float64 `json:"metrics"`
}

// SaveRun writes a completed training run and returns its run ID.
func (s *Store) SaveRun(meta RunMetadata, losses []float64, p *params.Vector) (string, error) {
	meta.ID = fmt.Sprintf("%s_%s", meta.Scenario, uuid.NewString()[:8])
	meta.Timestamp = time.Now()
	if len(losses) > 0 {
		meta.FinalLoss = losses[len(losses)-1]
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeLossCSV(filepath.Join(runDir, "loss.csv"), losses); err != nil {
		return "", err
	}

	if p != nil {
		if err := params.Save(filepath.Join(runDir, "params.json"), p); err != nil {
			return "", err
		}
	}

	return meta.ID, nil
}

func writeLossCSV(path string, losses []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"iteration", "loss"}); err != nil {
		return err
	}
	for i, l := range losses {
		row := []string{strconv.Itoa(i), strconv.FormatFloat(l, 'g', -1, 64)}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// SaveSolution writes a simulated trajectory under an existing run as
// <name>.csv with a time column followed by one column per component.
func (s *Store) SaveSolution(runID, name string, sol *dynamo.Solution) error {
	file, err := os.Create(filepath.Join(s.baseDir, runID, name+".csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if len(sol.States) == 0 {
		return nil
	}

	header := []string{"time"}
	for i := range sol.States[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range sol.States {
		row := []string{strconv.FormatFloat(sol.Times[i], 'f', 6, 64)}
		for _, val := range sol.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadLosses(runID string) ([]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "loss.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	losses := make([]float64, 0, len(records))
	for i := 1; i < len(records); i++ {
		if len(records[i]) < 2 {
			continue
		}
		l, err := strconv.ParseFloat(records[i][1], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: run %s loss row %d: %w", runID, i, err)
		}
		losses = append(losses, l)
	}
	return losses, nil
}

func (s *Store) LoadParams(runID string) (*params.Vector, error) {
	return params.Load(filepath.Join(s.baseDir, runID, "params.json"))
}

func (s *Store) LoadSolution(runID, name string) (*dynamo.Solution, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name+".csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	sol := &dynamo.Solution{}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < 2 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		state := make(dynamo.State, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("storage: run %s %s row %d: %w", runID, name, i, err)
			}
			state = append(state, val)
		}

		sol.Times = append(sol.Times, t)
		sol.States = append(sol.States, state)
	}
	return sol, nil
}
