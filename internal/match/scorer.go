package match

import (
	"errors"
	"fmt"

	"github.com/wkg-uslp/internal/debug"
	"github.com/wkg-uslp/internal/distance"
	"github.com/wkg-uslp/internal/geo"
	"github.com/wkg-uslp/internal/model"
	"github.com/wkg-uslp/internal/prefilter"
	"github.com/wkg-uslp/internal/similarity"
)

// ErrNoCandidates is returned when the prefilter leaves nothing to score for a predicate.
var ErrNoCandidates = errors.New("no eligible candidates")

// Tables are the precomputed, read-only signals the scorer sums
type Tables struct {
	Distance    *distance.Cache
	Literal     *similarity.LiteralMatrix
	Predicate   *similarity.PredicateMatrix
	Containment *similarity.ContainmentMatrix
}

// Scorer computes the USLP score for subjects and memoizes winners in a Cache.
//
// The score of a candidate is the unweighted sum of four terms: geohash
// proximity, type/predicate cosine, label/literal cosine and the type
// containment bonus. Ties keep the first candidate in table order.
type Scorer struct {
	candidates []model.Candidate
	precision  model.PrecisionMap
	tables     Tables
	prefilter  *prefilter.Prefilter
	cache      *Cache
	debug      bool

	// per-candidate positions resolved once
	typeRow []int         // row in tables.Predicate
	typeCol []int         // column in tables.Containment
	cellCol map[int][]int // precision -> column in the distance matrix

	stats ScorerStats
}

// NewScorer resolves every candidate's type and geohash cells against the tables.
func NewScorer(localDebug bool, candidates []model.Candidate, precision model.PrecisionMap, tables Tables, pf *prefilter.Prefilter, cache *Cache) (*Scorer, error) {
	s := &Scorer{
		candidates: candidates,
		precision:  precision,
		tables:     tables,
		prefilter:  pf,
		cache:      cache,
		debug:      localDebug,
		typeRow:    make([]int, len(candidates)),
		typeCol:    make([]int, len(candidates)),
		cellCol:    make(map[int][]int),
	}

	for i, c := range candidates {
		row, err := tables.Predicate.RowIndex(c.Type)
		if err != nil {
			return nil, &model.ConfigurationError{Kind: "type", Key: c.Type, Err: err}
		}
		col, err := tables.Containment.ColIndex(c.Type)
		if err != nil {
			return nil, &model.ConfigurationError{Kind: "type", Key: c.Type, Err: err}
		}
		s.typeRow[i] = row
		s.typeCol[i] = col
	}

	for _, p := range tables.Distance.Precisions() {
		dm, _ := tables.Distance.Matrix(p)
		cols := make([]int, len(candidates))
		for i, c := range candidates {
			j, err := dm.ColIndex(geo.Prefix(c.Geohash, p))
			if err != nil {
				return nil, fmt.Errorf("candidate %s at precision %d: %w", c.URI, p, err)
			}
			cols[i] = j
		}
		s.cellCol[p] = cols
	}

	return s, nil
}

// Score returns the best candidate for subj, consulting the cache first.
func (s *Scorer) Score(subj model.Subject) (Result, error) {
	precision, ok := s.precision[subj.Predicate]
	if !ok {
		return Result{}, &model.ConfigurationError{Kind: "precision", Key: subj.Predicate}
	}

	key := CacheKey{
		Prefix:    geo.Prefix(subj.Geohash, precision),
		Predicate: subj.Predicate,
		Literal:   subj.Literal,
	}
	if r, ok := s.cache.Get(key); ok {
		s.stats.Hits++
		return r, nil
	}

	r, err := s.evaluate(key, precision)
	if err != nil {
		return Result{}, err
	}
	s.cache.Put(key, r)
	s.stats.Misses++
	return r, nil
}

// evaluate scores every eligible candidate for key and returns the arg-max.
func (s *Scorer) evaluate(key CacheKey, precision int) (Result, error) {
	eligible := s.prefilter.Eligible(key.Predicate)
	if len(eligible) == 0 {
		return Result{}, fmt.Errorf("predicate %s: %w", key.Predicate, ErrNoCandidates)
	}

	dm, ok := s.tables.Distance.Matrix(precision)
	if !ok {
		return Result{}, &model.ConfigurationError{Kind: "precision", Key: key.Predicate,
			Err: fmt.Errorf("no distance matrix for precision %d", precision)}
	}
	distRowIdx, err := dm.RowIndex(key.Prefix)
	if err != nil {
		return Result{}, fmt.Errorf("subject cell %s: %w", key.Prefix, err)
	}
	litCol, err := s.tables.Literal.ColIndex(key.Literal)
	if err != nil {
		return Result{}, &model.ConfigurationError{Kind: "literal", Key: key.Literal, Err: err}
	}
	predCol, err := s.tables.Predicate.ColIndex(key.Predicate)
	if err != nil {
		return Result{}, &model.ConfigurationError{Kind: "predicate", Key: key.Predicate, Err: err}
	}
	containRowIdx, err := s.tables.Containment.RowIndex(key.Predicate)
	if err != nil {
		return Result{}, &model.ConfigurationError{Kind: "predicate", Key: key.Predicate, Err: err}
	}

	distRow := dm.Row(distRowIdx)
	containRow := s.tables.Containment.Row(containRowIdx)
	cells := s.cellCol[precision]

	best := -1
	var bestScore float64
	for _, ci := range eligible {
		score := distRow[cells[ci]] +
			s.tables.Predicate.At(s.typeRow[ci], predCol) +
			s.tables.Literal.At(ci, litCol) +
			containRow[s.typeCol[ci]]
		s.stats.Evaluations++

		if best < 0 || score > bestScore {
			best = ci
			bestScore = score
		}
	}

	winner := s.candidates[best]
	debug.DebugOutput(s.debug, "%s %q @%s -> %s (%.4f) over %d candidates",
		key.Predicate, key.Literal, key.Prefix, winner.URI, bestScore, len(eligible))

	return Result{URI: winner.URI, Score: bestScore}, nil
}

// Stats returns the instrumentation counters
func (s *Scorer) Stats() ScorerStats {
	return s.stats
}
