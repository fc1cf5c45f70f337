// Package vec provides the labelled dense vector container used by the
// kernels and the CG driver.
package vec

import (
	"github.com/notargets/cgbench/cgerr"
)

// Vector is a fixed-length sequence of doubles with a name label.
// It is mutable in place and not safe for concurrent writes to the same index.
type Vector struct {
	label string
	data  []float64
}

// New allocates a zeroed vector of length n.
func New(label string, n int) (*Vector, error) {
	if n < 0 {
		return nil, cgerr.NewInvalidArgError("vec.New", "negative length %d for %q", n, label)
	}
	return &Vector{label: label, data: make([]float64, n)}, nil
}

// Wrap returns a vector backed by data without copying.
func Wrap(label string, data []float64) *Vector {
	return &Vector{label: label, data: data}
}

// FromSlice returns a vector holding a copy of data.
func FromSlice(label string, data []float64) *Vector {
	v := &Vector{label: label, data: make([]float64, len(data))}
	copy(v.data, data)
	return v
}

// Label returns the vector's name.
func (v *Vector) Label() string { return v.label }

// Len returns the number of entries.
func (v *Vector) Len() int { return len(v.data) }

// At returns entry i.
func (v *Vector) At(i int) float64 { return v.data[i] }

// Set stores val at entry i.
func (v *Vector) Set(i int, val float64) { v.data[i] = val }

// Data exposes the backing slice. Kernels write through it.
func (v *Vector) Data() []float64 { return v.data }

// Fill sets every entry to val.
func (v *Vector) Fill(val float64) {
	for i := range v.data {
		v.data[i] = val
	}
}

// Init sets entry i to fn(i) for every i.
func (v *Vector) Init(fn func(i int) float64) {
	for i := range v.data {
		v.data[i] = fn(i)
	}
}

// CopyToHost copies the entries into dst, which must have the same length.
func (v *Vector) CopyToHost(dst []float64) error {
	if len(dst) != len(v.data) {
		return cgerr.LengthMismatch("vec.CopyToHost", len(v.data), len(dst))
	}
	copy(dst, v.data)
	return nil
}

// Clone returns a deep copy carrying label.
func (v *Vector) Clone(label string) *Vector {
	return FromSlice(label, v.data)
}
