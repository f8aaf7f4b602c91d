// Package matrix provides dense float64 tables addressed through explicit
// row and column key indices.
package matrix

import (
	"fmt"

	"github.com/wkg-uslp/internal/model"
)

// Index maps an ordered set of keys to their positions.
type Index[K comparable] struct {
	keys []K
	pos  map[K]int
}

// NewIndex builds an index over keys, dropping duplicates but keeping first-seen order.
func NewIndex[K comparable](keys []K) *Index[K] {
	idx := &Index[K]{
		keys: make([]K, 0, len(keys)),
		pos:  make(map[K]int, len(keys)),
	}
	for _, k := range keys {
		if _, ok := idx.pos[k]; ok {
			continue
		}
		idx.pos[k] = len(idx.keys)
		idx.keys = append(idx.keys, k)
	}
	return idx
}

// Len returns the number of keys.
func (idx *Index[K]) Len() int { return len(idx.keys) }

// Keys returns the keys in index order. The slice must not be modified.
func (idx *Index[K]) Keys() []K { return idx.keys }

// Lookup returns the position of k.
func (idx *Index[K]) Lookup(k K) (int, bool) {
	i, ok := idx.pos[k]
	return i, ok
}

// Matrix owns dense row-major storage plus its row and column indices.
type Matrix[R, C comparable] struct {
	rows *Index[R]
	cols *Index[C]
	data []float64
}

// New allocates a zeroed matrix over the given row and column keys.
func New[R, C comparable](rows *Index[R], cols *Index[C]) *Matrix[R, C] {
	return &Matrix[R, C]{
		rows: rows,
		cols: cols,
		data: make([]float64, rows.Len()*cols.Len()),
	}
}

// Rows returns the row index.
func (m *Matrix[R, C]) Rows() *Index[R] { return m.rows }

// Cols returns the column index.
func (m *Matrix[R, C]) Cols() *Index[C] { return m.cols }

// Shape returns (rows, columns).
func (m *Matrix[R, C]) Shape() (int, int) { return m.rows.Len(), m.cols.Len() }

// At returns the value at resolved positions. It panics on out of range positions.
func (m *Matrix[R, C]) At(i, j int) float64 {
	return m.data[i*m.cols.Len()+j]
}

// Set stores v at resolved positions.
func (m *Matrix[R, C]) Set(i, j int, v float64) {
	m.data[i*m.cols.Len()+j] = v
}

// Row returns the backing slice for row i. Callers must treat it as read-only.
func (m *Matrix[R, C]) Row(i int) []float64 {
	n := m.cols.Len()
	return m.data[i*n : (i+1)*n]
}

// RowIndex resolves a row key.
func (m *Matrix[R, C]) RowIndex(r R) (int, error) {
	i, ok := m.rows.Lookup(r)
	if !ok {
		return 0, &model.KeyNotFoundError{Axis: "row", Key: fmt.Sprint(r)}
	}
	return i, nil
}

// ColIndex resolves a column key.
func (m *Matrix[R, C]) ColIndex(c C) (int, error) {
	j, ok := m.cols.Lookup(c)
	if !ok {
		return 0, &model.KeyNotFoundError{Axis: "column", Key: fmt.Sprint(c)}
	}
	return j, nil
}

// Get looks a value up by key, failing with *model.KeyNotFoundError on an absent key.
func (m *Matrix[R, C]) Get(r R, c C) (float64, error) {
	i, err := m.RowIndex(r)
	if err != nil {
		return 0, err
	}
	j, err := m.ColIndex(c)
	if err != nil {
		return 0, err
	}
	return m.At(i, j), nil
}

// Max returns the largest stored value, or 0 for an empty matrix.
func (m *Matrix[R, C]) Max() float64 {
	if len(m.data) == 0 {
		return 0
	}
	best := m.data[0]
	for _, v := range m.data[1:] {
		if v > best {
			best = v
		}
	}
	return best
}

// Apply replaces every value v with fn(v).
func (m *Matrix[R, C]) Apply(fn func(float64) float64) {
	for i, v := range m.data {
		m.data[i] = fn(v)
	}
}
