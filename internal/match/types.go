package match

import (
	"context"
	"time"

	"github.com/wkg-uslp/internal/model"
	"github.com/wkg-uslp/internal/prefilter"
)

// CacheKey identifies subjects that are indistinguishable for matching purposes
type CacheKey struct {
	Prefix    string // subject geohash truncated to the predicate's precision
	Predicate string
	Literal   string
}

// Result is the winning candidate for a cache key
type Result struct {
	URI   string
	Score float64
}

// ScorerStats counts cache traffic and candidate evaluations
type ScorerStats struct {
	Hits        int
	Misses      int
	Evaluations int // individual candidate scores computed
}

// Sink receives matches in processing order
type Sink interface {
	Send(ctx context.Context, m model.Match) error
}

// Options controls a matching run
type Options struct {
	StartValue     int // predicates to skip, ordered by descending frequency
	PredicateLimit int // predicates to process after the skip, 0 means all
	Rules          []prefilter.Rule
	Debug          bool
}

// PredicateCount is a predicate with the number of subjects using it
type PredicateCount struct {
	Predicate string
	Count     int
}

// PredicatePlan describes how one predicate will be processed
type PredicatePlan struct {
	Index     int
	Predicate string
	Subjects  int
	Precision int // 0 when the precision map has no entry
	Eligible  int // prefiltered candidate count
	Skipped   bool
}

// MatrixShape is the size of the distance matrix for one precision
type MatrixShape struct {
	Precision         int
	SubjectPrefixes   int
	CandidatePrefixes int
}

// RunStats summarises a completed (or aborted) run
type RunStats struct {
	RunID             string
	Predicates        int // predicates processed
	SkippedPredicates int // predicates with no eligible candidates
	Subjects          int // rows emitted
	CacheHits         int
	CacheMisses       int
	Evaluations       int
	Duration          time.Duration
}

// ReusePercent is the share of rows emitted by this run that were served from
// the match cache. Subjects of skipped predicates are not counted, so a restarted
// run reports reuse over its own rows only, not over the whole subject table.
func (s RunStats) ReusePercent() float64 {
	if s.Subjects == 0 {
		return 0
	}
	return float64(s.Subjects-s.CacheMisses) / float64(s.Subjects) * 100
}
