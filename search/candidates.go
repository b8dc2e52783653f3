// Package search finds the instants at which the Sun-Moon angular
// separation seen from the Earth is locally minimal.
package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonphase"
	"golang.org/x/sync/errgroup"

	"github.com/echoflaresat/eclipses/eclipse"
	"github.com/echoflaresat/eclipses/vectors"
)

// lunationsPerYear is the factor Meeus uses to number lunations from
// the new moon of 2000 January 6.
const lunationsPerYear = 12.3685

// invPhi is 1/φ for golden-section search.
var invPhi = (math.Sqrt(5) - 1) / 2

// Source supplies body positions.
type Source interface {
	State(t time.Time) (eclipse.BodySet, error)
}

type Options struct {
	// Bracket is the half-width of the window around each new moon in
	// which the separation minimum is searched.
	Bracket time.Duration
	// Tolerance is the width at which golden-section search stops.
	Tolerance time.Duration
	// Workers bounds parallel refinements; <= 0 means one per new moon.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Bracket:   24 * time.Hour,
		Tolerance: time.Second,
	}
}

// Separation returns the angle in radians between the Earth-Sun and
// Earth-Moon directions at t.
func Separation(src Source, t time.Time) (float64, error) {
	set, err := src.State(t)
	if err != nil {
		return 0, err
	}
	sep := vectors.AngleBetween(set.Sun.Sub(set.Earth), set.Moon.Sub(set.Earth))
	if math.IsNaN(sep) {
		return 0, fmt.Errorf("separation at %s: %w", t.Format(time.RFC3339), eclipse.ErrDegenerateGeometry)
	}
	return sep, nil
}

// NewMoons returns the mean-phase new moons falling within [start, end].
func NewMoons(start, end time.Time) []time.Time {
	var out []time.Time
	k := math.Floor((decimalYear(start)-2000)*lunationsPerYear) - 1
	for ; ; k++ {
		jde := moonphase.New(2000 + k/lunationsPerYear)
		t := julian.JDToTime(jde)
		if t.After(end) {
			return out
		}
		if t.Before(start) {
			continue
		}
		out = append(out, t)
	}
}

// Candidates returns the instants in [start, end] where the Sun-Moon
// separation reaches a local minimum, one per lunation, ascending.
func Candidates(ctx context.Context, src Source, start, end time.Time, opts Options) ([]time.Time, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("empty search range %s .. %s", start, end)
	}
	if opts.Bracket <= 0 || opts.Tolerance <= 0 {
		return nil, fmt.Errorf("bracket %s and tolerance %s must be positive", opts.Bracket, opts.Tolerance)
	}

	// Seed outside the range too: a minimum just inside it may belong to
	// a new moon just outside.
	seeds := NewMoons(start.Add(-opts.Bracket), end.Add(opts.Bracket))
	minima := make([]time.Time, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, seed := range seeds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := minimize(src, seed.Add(-opts.Bracket), seed.Add(opts.Bracket), opts.Tolerance)
			if err != nil {
				return fmt.Errorf("refine new moon %s: %w", seed.Format(time.RFC3339), err)
			}
			minima[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(minima, func(i, j int) bool { return minima[i].Before(minima[j]) })
	out := make([]time.Time, 0, len(minima))
	for _, t := range minima {
		if t.Before(start) || t.After(end) {
			continue
		}
		if n := len(out); n > 0 && t.Sub(out[n-1]) < opts.Bracket {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// minimize runs golden-section search for the separation minimum in
// [lo, hi], which is unimodal over a couple of days around a new moon.
func minimize(src Source, lo, hi time.Time, tol time.Duration) (time.Time, error) {
	a, b := 0.0, hi.Sub(lo).Seconds()
	at := func(s float64) time.Time {
		return lo.Add(time.Duration(s * float64(time.Second))).Round(time.Millisecond)
	}
	f := func(s float64) (float64, error) { return Separation(src, at(s)) }

	c := b - invPhi*(b-a)
	d := a + invPhi*(b-a)
	fc, err := f(c)
	if err != nil {
		return time.Time{}, err
	}
	fd, err := f(d)
	if err != nil {
		return time.Time{}, err
	}

	for b-a > tol.Seconds() {
		if fc < fd {
			b, d, fd = d, c, fc
			c = b - invPhi*(b-a)
			if fc, err = f(c); err != nil {
				return time.Time{}, err
			}
		} else {
			a, c, fc = c, d, fd
			d = a + invPhi*(b-a)
			if fd, err = f(d); err != nil {
				return time.Time{}, err
			}
		}
	}
	return at((a + b) / 2).Round(time.Second), nil
}

func decimalYear(t time.Time) float64 {
	return 2000 + (julian.TimeToJD(t.UTC())-base.J2000)/base.JulianYear
}
