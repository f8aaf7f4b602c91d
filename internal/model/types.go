package model

import (
	"fmt"
	"math"
	"sort"
)

// EmbeddingDim is the dimensionality of every label, literal, predicate and type vector.
const EmbeddingDim = 300

// Unknown is the sentinel used for missing English labels and missing types.
const Unknown = "unknown"

// DefaultGeohashPrecision is the precision used when a geohash has to be derived from a location.
const DefaultGeohashPrecision = 6

// MaxGeohashPrecision is the longest geohash prefix a precision map may request.
const MaxGeohashPrecision = 12

// Point is a WGS84 location in degrees
type Point struct {
	Lon float64
	Lat float64
}

// Candidate is a graph entity that a literal may be resolved to
type Candidate struct {
	URI            string
	Label          string
	LabelEn        string
	Location       Point
	Type           string
	Geohash        string
	LabelEmbedding []float32
}

// Subject is a fact whose object is still an unresolved literal
type Subject struct {
	URI       string
	Predicate string
	Literal   string
	Location  Point
	Geohash   string
}

// Match is one output row: the subject fact and the entity its literal resolved to
type Match struct {
	S       string
	P       string
	Literal string
	O       string
	Score   float64
}

// EmbeddingMap maps a distinct corpus value (predicate, literal or type) to its vector.
type EmbeddingMap map[string][]float32

// PrecisionMap fixes how many leading geohash characters are compared per predicate.
type PrecisionMap map[string]int

// Precisions returns the distinct precision values in ascending order.
func (pm PrecisionMap) Precisions() []int {
	seen := make(map[int]struct{}, len(pm))
	out := make([]int, 0, len(pm))
	for _, p := range pm {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Ints(out)
	return out
}

// Maps groups the four key/value documents consumed by a matching run
type Maps struct {
	Predicates EmbeddingMap
	Literals   EmbeddingMap
	Types      EmbeddingMap
	Precision  PrecisionMap
}

// Dataset is the read-only snapshot a run works on
type Dataset struct {
	Candidates []Candidate
	Subjects   []Subject
	Maps       Maps
}

// CheckVector rejects vectors of the wrong dimension or with NaN/Inf components.
func CheckVector(v []float32) error {
	if len(v) != EmbeddingDim {
		return fmt.Errorf("vector has %d dimensions, want %d", len(v), EmbeddingDim)
	}
	for i, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Errorf("component %d is %v, want a finite number", i, x)
		}
	}
	return nil
}
