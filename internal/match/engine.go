package match

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wkg-uslp/internal/debug"
	"github.com/wkg-uslp/internal/distance"
	"github.com/wkg-uslp/internal/model"
	"github.com/wkg-uslp/internal/prefilter"
	"github.com/wkg-uslp/internal/similarity"
)

// Engine owns the precomputed tables for one dataset and runs the matching loop
type Engine struct {
	data      *model.Dataset
	opts      Options
	tables    Tables
	prefilter *prefilter.Prefilter
	order     []PredicateCount
	bySubject map[string][]int // predicate -> subject table positions
	runID     string
	progress  *Progress
	logger    *slog.Logger
}

// Prepare computes distance matrices, similarity matrices and prefilter groups.
// The independent tables are built concurrently; everything is read-only afterwards.
func Prepare(ctx context.Context, data *model.Dataset, opts Options, logger *slog.Logger) (*Engine, error) {
	if opts.StartValue < 0 {
		return nil, fmt.Errorf("start value must be >= 0, got %d", opts.StartValue)
	}
	if opts.PredicateLimit < 0 {
		return nil, fmt.Errorf("predicate limit must be >= 0, got %d", opts.PredicateLimit)
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		data:      data,
		opts:      opts,
		prefilter: prefilter.New(data.Candidates, opts.Rules),
		runID:     uuid.New().String(),
		logger:    logger,
	}
	e.progress = NewProgress(e.runID)
	e.order, e.bySubject = groupSubjects(data.Subjects)

	subjectHashes := make([]string, len(data.Subjects))
	for i, s := range data.Subjects {
		subjectHashes[i] = s.Geohash
	}
	candidateHashes := make([]string, len(data.Candidates))
	for i, c := range data.Candidates {
		candidateHashes[i] = c.Geohash
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer debug.DebugTiming(opts.Debug, "distance matrices")()
		dc, err := distance.Build(gctx, subjectHashes, candidateHashes, data.Maps.Precision.Precisions())
		if err != nil {
			return fmt.Errorf("distance matrices: %w", err)
		}
		e.tables.Distance = dc
		return nil
	})
	g.Go(func() error {
		defer debug.DebugTiming(opts.Debug, "literal similarity")()
		e.tables.Literal = similarity.BuildLiteralMatrix(data.Candidates, data.Maps.Literals)
		return nil
	})
	g.Go(func() error {
		defer debug.DebugTiming(opts.Debug, "predicate similarity")()
		e.tables.Predicate = similarity.BuildPredicateMatrix(data.Maps.Types, data.Maps.Predicates)
		e.tables.Containment = similarity.BuildContainmentMatrix(
			similarity.SortedKeys(data.Maps.Predicates),
			similarity.SortedKeys(data.Maps.Types),
		)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, shape := range e.MatrixShapes() {
		logger.Info("Distance matrix",
			slog.Int("precision", shape.Precision),
			slog.Int("subject_cells", shape.SubjectPrefixes),
			slog.Int("candidate_cells", shape.CandidatePrefixes))
	}

	return e, nil
}

// RunID identifies this engine's run in logs and status output
func (e *Engine) RunID() string { return e.runID }

// Progress returns live counters for the status server
func (e *Engine) Progress() *Progress { return e.progress }

// Order returns predicates by descending subject count, ties by first appearance.
func (e *Engine) Order() []PredicateCount { return e.order }

// MatrixShapes reports the distance matrix size per precision
func (e *Engine) MatrixShapes() []MatrixShape {
	var out []MatrixShape
	for _, p := range e.tables.Distance.Precisions() {
		m, _ := e.tables.Distance.Matrix(p)
		rows, cols := m.Shape()
		out = append(out, MatrixShape{Precision: p, SubjectPrefixes: rows, CandidatePrefixes: cols})
	}
	return out
}

// Plan lists every predicate in processing order with what the run will do with it.
func (e *Engine) Plan() []PredicatePlan {
	plans := make([]PredicatePlan, len(e.order))
	for i, pc := range e.order {
		plans[i] = PredicatePlan{
			Index:     i,
			Predicate: pc.Predicate,
			Subjects:  pc.Count,
			Precision: e.data.Maps.Precision[pc.Predicate],
			Eligible:  len(e.prefilter.Eligible(pc.Predicate)),
			Skipped:   i < e.opts.StartValue,
		}
	}
	return plans
}

// schedule splits the predicate order into the skipped prefix and the work list.
func (e *Engine) schedule() (skipped, todo []PredicateCount) {
	start := e.opts.StartValue
	if start > len(e.order) {
		start = len(e.order)
	}
	skipped, todo = e.order[:start], e.order[start:]
	if e.opts.PredicateLimit > 0 && e.opts.PredicateLimit < len(todo) {
		todo = todo[:e.opts.PredicateLimit]
	}
	return skipped, todo
}

// Run scores every scheduled subject and sends one match per subject to sink,
// grouped by predicate. It is the single producer: the match cache lives and
// dies inside this call.
func (e *Engine) Run(ctx context.Context, sink Sink) (stats RunStats, err error) {
	start := time.Now()
	stats.RunID = e.runID

	skipped, todo := e.schedule()
	if len(skipped) > 0 {
		names := make([]string, len(skipped))
		for i, pc := range skipped {
			names[i] = pc.Predicate
		}
		e.logger.Info("Skipping predicates", slog.Int("start_value", len(skipped)), slog.Any("predicates", names))
	}

	debug.DebugHeader(e.opts.Debug)
	defer debug.DebugFooter(e.opts.Debug)

	cache := NewCache()
	scorer, err := NewScorer(e.opts.Debug, e.data.Candidates, e.data.Maps.Precision, e.tables, e.prefilter, cache)
	if err != nil {
		return stats, err
	}

	e.progress.start(len(todo))
	defer e.progress.finish()

	collect := func() {
		st := scorer.Stats()
		stats.CacheHits = st.Hits
		stats.CacheMisses = st.Misses
		stats.Evaluations = st.Evaluations
		stats.Duration = time.Since(start)
	}
	defer collect()

	for _, pc := range todo {
		e.progress.enter(pc.Predicate)

		if _, restricted := e.prefilter.Match(pc.Predicate); restricted {
			e.logger.Debug("Restricting candidates", slog.String("predicate", pc.Predicate))
		}
		if len(e.prefilter.Eligible(pc.Predicate)) == 0 {
			e.logger.Warn("No candidates for predicate, skipping",
				slog.String("predicate", pc.Predicate), slog.Int("subjects", pc.Count))
			stats.SkippedPredicates++
			e.progress.leave()
			continue
		}

		for _, si := range e.bySubject[pc.Predicate] {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
			subj := e.data.Subjects[si]

			hitsBefore := scorer.Stats().Hits
			r, err := scorer.Score(subj)
			if err != nil {
				return stats, fmt.Errorf("subject %s: %w", subj.URI, err)
			}

			m := model.Match{S: subj.URI, P: subj.Predicate, Literal: subj.Literal, O: r.URI, Score: r.Score}
			if err := sink.Send(ctx, m); err != nil {
				return stats, fmt.Errorf("write match for %s: %w", subj.URI, err)
			}
			stats.Subjects++
			e.progress.row(scorer.Stats().Hits > hitsBefore)
		}

		stats.Predicates++
		e.progress.leave()
	}

	collect()
	e.logger.Info("Matching complete",
		slog.String("run_id", e.runID),
		slog.Int("predicates", stats.Predicates),
		slog.Int("subjects", stats.Subjects),
		slog.Int("skipped_predicates", stats.SkippedPredicates),
		slog.String("cache_reuse", fmt.Sprintf("%.2f%%", stats.ReusePercent())),
		slog.Duration("duration", stats.Duration))

	return stats, nil
}

// groupSubjects orders predicates by descending frequency (ties by first
// appearance) and collects subject positions per predicate in table order.
func groupSubjects(subjects []model.Subject) ([]PredicateCount, map[string][]int) {
	byPredicate := make(map[string][]int)
	var order []PredicateCount
	for i, s := range subjects {
		if _, ok := byPredicate[s.Predicate]; !ok {
			order = append(order, PredicateCount{Predicate: s.Predicate})
		}
		byPredicate[s.Predicate] = append(byPredicate[s.Predicate], i)
	}
	for i := range order {
		order[i].Count = len(byPredicate[order[i].Predicate])
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Count > order[j].Count
	})
	return order, byPredicate
}
