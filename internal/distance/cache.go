// Package distance precomputes normalized proximity between the geohash cells
// of subjects and candidates, one matrix per geohash precision.
package distance

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wkg-uslp/internal/geo"
	"github.com/wkg-uslp/internal/matrix"
	"github.com/wkg-uslp/internal/model"
)

// Matrix is indexed by subject prefix (rows) and candidate prefix (columns).
// Values are 1 for co-located cells and 0 for the farthest pair observed.
type Matrix = matrix.Matrix[string, string]

// Cache holds one proximity matrix per precision.
type Cache struct {
	matrices map[int]*Matrix
}

// Build computes a matrix for every precision in precisions.
// Precisions are computed concurrently; the result is read-only.
func Build(ctx context.Context, subjectHashes, candidateHashes []string, precisions []int) (*Cache, error) {
	c := &Cache{matrices: make(map[int]*Matrix, len(precisions))}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, p := range precisions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m := BuildMatrix(subjectHashes, candidateHashes, p)
			mu.Lock()
			c.matrices[p] = m
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return c, nil
}

// BuildMatrix computes the normalized proximity matrix for a single precision.
//
// If every pair is at distance 0 the raw distances are kept, so all entries
// are 0 rather than 1.
func BuildMatrix(subjectHashes, candidateHashes []string, precision int) *Matrix {
	rows := matrix.NewIndex(prefixes(subjectHashes, precision))
	cols := matrix.NewIndex(prefixes(candidateHashes, precision))
	m := matrix.New(rows, cols)

	colCenters := make([]model.Point, cols.Len())
	for j, gh := range cols.Keys() {
		colCenters[j] = geo.Center(gh)
	}

	for i, rgh := range rows.Keys() {
		rc := geo.Center(rgh)
		for j, cgh := range cols.Keys() {
			if rgh == cgh {
				continue
			}
			m.Set(i, j, geo.Haversine(rc, colCenters[j]))
		}
	}

	if span := m.Max(); span > 0 {
		m.Apply(func(d float64) float64 { return 1 - d/span })
	}
	return m
}

// Matrix returns the proximity matrix for precision.
func (c *Cache) Matrix(precision int) (*Matrix, bool) {
	m, ok := c.matrices[precision]
	return m, ok
}

// Precisions lists the precisions held by the cache in ascending order.
func (c *Cache) Precisions() []int {
	out := make([]int, 0, len(c.matrices))
	for p := range c.matrices {
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

func prefixes(hashes []string, precision int) []string {
	out := make([]string, 0, len(hashes))
	for _, gh := range hashes {
		out = append(out, geo.Prefix(gh, precision))
	}
	return out
}
