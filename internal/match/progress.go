package match

import (
	"sync"
	"sync/atomic"
	"time"
)

// Progress exposes run counters to observers on other goroutines.
// Only the producer writes to it.
type Progress struct {
	runID      string
	started    time.Time
	total      atomic.Int64 // predicates scheduled
	done       atomic.Int64 // predicates finished
	rows       atomic.Int64
	hits       atomic.Int64
	running    atomic.Bool
	mu         sync.RWMutex
	predicate  string
	finishedAt time.Time
}

// ProgressSnapshot is a point-in-time copy of Progress
type ProgressSnapshot struct {
	RunID            string    `json:"run_id"`
	Running          bool      `json:"running"`
	CurrentPredicate string    `json:"current_predicate,omitempty"`
	PredicatesTotal  int64     `json:"predicates_total"`
	PredicatesDone   int64     `json:"predicates_done"`
	Rows             int64     `json:"rows"`
	CacheHits        int64     `json:"cache_hits"`
	StartedAt        time.Time `json:"started_at"`
	ElapsedSeconds   float64   `json:"elapsed_seconds"`
}

// NewProgress creates progress tracking for runID
func NewProgress(runID string) *Progress {
	return &Progress{runID: runID}
}

func (p *Progress) start(total int) {
	p.mu.Lock()
	p.started = time.Now()
	p.mu.Unlock()
	p.total.Store(int64(total))
	p.running.Store(true)
}

func (p *Progress) enter(predicate string) {
	p.mu.Lock()
	p.predicate = predicate
	p.mu.Unlock()
}

func (p *Progress) row(hit bool) {
	p.rows.Add(1)
	if hit {
		p.hits.Add(1)
	}
}

func (p *Progress) leave() {
	p.done.Add(1)
}

func (p *Progress) finish() {
	p.mu.Lock()
	p.predicate = ""
	p.finishedAt = time.Now()
	p.mu.Unlock()
	p.running.Store(false)
}

// Snapshot returns the current counters
func (p *Progress) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	predicate := p.predicate
	started := p.started
	end := p.finishedAt
	p.mu.RUnlock()

	if end.IsZero() {
		end = time.Now()
	}
	var elapsed float64
	if !started.IsZero() {
		elapsed = end.Sub(started).Seconds()
	}

	return ProgressSnapshot{
		RunID:            p.runID,
		Running:          p.running.Load(),
		CurrentPredicate: predicate,
		PredicatesTotal:  p.total.Load(),
		PredicatesDone:   p.done.Load(),
		Rows:             p.rows.Load(),
		CacheHits:        p.hits.Load(),
		StartedAt:        started,
		ElapsedSeconds:   elapsed,
	}
}
