// Package params holds the flat learnable parameter vector shared by the
// neural controller and the physical scalars of a system. The vector is
// partitioned into named blocks through a layout descriptor so callers can
// slice out their part without hard-coded offsets.
package params

import (
	"fmt"
	"math/rand"
)

// Block names one contiguous run of the flat vector.
type Block struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// Layout is an ordered block list describing a vector's partition.
type Layout []Block

func (l Layout) Total() int {
	n := 0
	for _, b := range l {
		n += b.Size
	}
	return n
}

// Range returns the [start, end) indices of a named block.
func (l Layout) Range(name string) (int, int, error) {
	off := 0
	for _, b := range l {
		if b.Name == name {
			return off, off + b.Size, nil
		}
		off += b.Size
	}
	return 0, 0, fmt.Errorf("params: unknown block %q", name)
}

// Vector is a flat ordered parameter vector with its layout. The optimizer
// owns the canonical copy; everything else receives snapshots.
type Vector struct {
	Layout Layout    `json:"layout"`
	Data   []float64 `json:"data"`
}

// New allocates a zeroed vector for the layout.
func New(layout Layout) *Vector {
	return &Vector{Layout: layout, Data: make([]float64, layout.Total())}
}

func (v *Vector) Clone() *Vector {
	data := make([]float64, len(v.Data))
	copy(data, v.Data)
	return &Vector{Layout: v.Layout, Data: data}
}

// Block slices the named block. The slice aliases the vector; callers that
// mutate it mutate the vector.
func (v *Vector) Block(name string) ([]float64, error) {
	start, end, err := v.Layout.Range(name)
	if err != nil {
		return nil, err
	}
	return v.Data[start:end], nil
}

// MustBlock is Block for layouts the caller built itself.
func (v *Vector) MustBlock(name string) []float64 {
	b, err := v.Block(name)
	if err != nil {
		panic(err)
	}
	return b
}

// InitNormal fills a block with small normal-distributed values, the usual
// near-zero initialization for a trainable correction term.
func (v *Vector) InitNormal(name string, stddev float64, rnd *rand.Rand) error {
	b, err := v.Block(name)
	if err != nil {
		return err
	}
	for i := range b {
		b[i] = rnd.NormFloat64() * stddev
	}
	return nil
}

// Set overwrites a named block from src.
func (v *Vector) Set(name string, src []float64) error {
	b, err := v.Block(name)
	if err != nil {
		return err
	}
	if len(src) != len(b) {
		return fmt.Errorf("params: block %q has size %d, got %d values", name, len(b), len(src))
	}
	copy(b, src)
	return nil
}
