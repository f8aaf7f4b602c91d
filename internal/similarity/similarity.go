// Package similarity precomputes the embedding and lexical signals used by the scorer.
package similarity

import (
	"math"
	"sort"
	"strings"

	"github.com/wkg-uslp/internal/matrix"
	"github.com/wkg-uslp/internal/model"
)

// ContainmentBonus is added when a candidate's type name appears inside the predicate name.
const ContainmentBonus = 0.5

// LiteralMatrix holds cosine(candidate label, literal) with candidate table positions as rows.
type LiteralMatrix = matrix.Matrix[int, string]

// PredicateMatrix holds cosine(type, predicate) with types as rows.
type PredicateMatrix = matrix.Matrix[string, string]

// ContainmentMatrix holds the type containment bonus with predicates as rows.
type ContainmentMatrix = matrix.Matrix[string, string]

// Cosine returns the cosine similarity of a and b, or 0 when either vector is all zero.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		fa, fb := float64(a[i]), float64(b[i])
		dot += fa * fb
		na += fa * fa
		nb += fb * fb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// rounding can push parallel vectors just past 1
	return math.Max(-1, math.Min(1, cos))
}

// BuildLiteralMatrix computes cosine similarity between every candidate label
// embedding and every literal embedding.
func BuildLiteralMatrix(candidates []model.Candidate, literals model.EmbeddingMap) *LiteralMatrix {
	rowKeys := make([]int, len(candidates))
	for i := range candidates {
		rowKeys[i] = i
	}
	cols := matrix.NewIndex(SortedKeys(literals))
	m := matrix.New(matrix.NewIndex(rowKeys), cols)

	litVecs := vectors(cols.Keys(), literals)
	for i, c := range candidates {
		row := m.Row(i)
		for j, v := range litVecs {
			row[j] = Cosine(c.LabelEmbedding, v)
		}
	}
	return m
}

// BuildPredicateMatrix computes cosine similarity between every type and every predicate.
func BuildPredicateMatrix(types, predicates model.EmbeddingMap) *PredicateMatrix {
	rows := matrix.NewIndex(SortedKeys(types))
	cols := matrix.NewIndex(SortedKeys(predicates))
	m := matrix.New(rows, cols)

	predVecs := vectors(cols.Keys(), predicates)
	for i, t := range rows.Keys() {
		tv := types[t]
		row := m.Row(i)
		for j, pv := range predVecs {
			row[j] = Cosine(tv, pv)
		}
	}
	return m
}

// BuildContainmentMatrix scores ContainmentBonus for every (predicate, type) pair
// where the type name is a case-sensitive substring of the predicate.
func BuildContainmentMatrix(predicates, types []string) *ContainmentMatrix {
	rows := matrix.NewIndex(predicates)
	cols := matrix.NewIndex(types)
	m := matrix.New(rows, cols)

	for i, p := range rows.Keys() {
		for j, t := range cols.Keys() {
			if t == model.Unknown || t == "" {
				continue
			}
			if strings.Contains(p, t) {
				m.Set(i, j, ContainmentBonus)
			}
		}
	}
	return m
}

// SortedKeys returns the keys of an embedding map in lexical order so matrix
// layouts do not depend on map iteration.
func SortedKeys(m model.EmbeddingMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func vectors(keys []string, m model.EmbeddingMap) [][]float32 {
	out := make([][]float32, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}
