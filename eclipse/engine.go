package eclipse

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// Source supplies the body positions at an instant. Any light-time or
// aberration correction is applied by the source.
type Source interface {
	State(t time.Time) (BodySet, error)
}

// Engine evaluates candidate instants against a fixed set of radii.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	radii   Radii
	workers int
	log     *slog.Logger
}

// NewEngine validates radii once and returns an engine using up to
// workers goroutines (GOMAXPROCS when workers <= 0). A nil logger means
// slog.Default().
func NewEngine(radii Radii, workers int, logger *slog.Logger) (*Engine, error) {
	if err := radii.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{radii: radii, workers: workers, log: logger}, nil
}

func (e *Engine) Radii() Radii { return e.radii }

func (e *Engine) Workers() int { return e.workers }

// Evaluate classifies one instant and, for eclipses, measures it.
//
// A classified eclipse whose discs turn out not to overlap is returned
// with its kind, zero metrics and an error wrapping ErrDiscsDisjoint.
func (e *Engine) Evaluate(set BodySet) (Record, error) {
	rec := Record{Instant: set.Instant}
	if err := set.Validate(); err != nil {
		return rec, err
	}

	sh, err := BuildShadows(set, e.radii)
	if err != nil {
		return rec, err
	}
	kind, err := Classify(sh, set.Earth, e.radii.Earth)
	if err != nil {
		return rec, err
	}
	rec.Kind = kind
	if kind == None {
		return rec, nil
	}

	m, err := Measure(set, e.radii, kind)
	if err != nil {
		return rec, fmt.Errorf("%s eclipse: %w", kind, err)
	}
	rec.Metrics = m
	return rec, nil
}

// Run evaluates every instant, fetching positions from src. Instants are
// processed in parallel; the results keep the input order. A failure at
// one instant is recorded in its Result and does not stop the others.
func (e *Engine) Run(src Source, instants []time.Time) []Result {
	return e.each(len(instants), func(i int) Result {
		t := instants[i]
		set, err := src.State(t)
		if err != nil {
			return Result{
				Record: Record{Instant: t},
				Err:    fmt.Errorf("positions at %s: %w", t.Format(time.RFC3339), err),
			}
		}
		rec, err := e.Evaluate(set)
		return Result{Record: rec, Err: err}
	})
}

// RunSets evaluates precomputed body positions, one result per set in
// input order. Sets sharing an instant are evaluated independently.
func (e *Engine) RunSets(sets []BodySet) []Result {
	return e.each(len(sets), func(i int) Result {
		rec, err := e.Evaluate(sets[i])
		return Result{Record: rec, Err: err}
	})
}

// each fills n result slots in parallel, bounded by the worker count.
func (e *Engine) each(n int, eval func(i int) Result) []Result {
	results := make([]Result, n)

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range n {
		g.Go(func() error {
			results[i] = eval(i)
			return nil
		})
	}
	_ = g.Wait()

	e.logResults(results)
	return results
}

func (e *Engine) logResults(results []Result) {
	for _, r := range results {
		at := r.Instant.UTC().Format(time.RFC3339)
		if r.Err != nil {
			e.log.Warn("instant not evaluated cleanly", "instant", at, "type", r.Kind.String(), "error", r.Err)
			continue
		}
		e.log.Debug("instant evaluated", "instant", at, "type", r.Kind.String(),
			"magnitude", r.Magnitude, "obscurity", r.Obscurity)
	}
}
