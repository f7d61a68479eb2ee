package params

import (
	"encoding/json"
	"fmt"
	"os"
)

// Save writes the vector with its layout as indented JSON, the checkpoint
// format used by the run store.
func Save(path string, v *Vector) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Load reads a vector back and checks the layout is internally consistent.
func Load(path string) (*Vector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var v Vector
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v.Layout.Total() != len(v.Data) {
		return nil, fmt.Errorf("params: layout declares %d values, file holds %d",
			v.Layout.Total(), len(v.Data))
	}
	return &v, nil
}
