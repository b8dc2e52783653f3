// Package reference cross-checks classifications against the eclipse
// predictor of Meeus' Astronomical Algorithms, chapter 54.
package reference

import (
	"log/slog"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	meeuseclipse "github.com/soniakeys/meeus/v3/eclipse"
	"github.com/soniakeys/meeus/v3/julian"

	"github.com/echoflaresat/eclipses/eclipse"
)

// maxOffsetDays is how far the predicted greatest eclipse may be from the
// checked instant and still refer to the same event.
const maxOffsetDays = 1.0

// Prediction is the reference classification of the new moon nearest an
// instant.
type Prediction struct {
	Kind     eclipse.Kind
	Greatest time.Time
	Gamma    float64
	Central  bool
}

// Predict classifies the solar eclipse, if any, at the new moon nearest t.
func Predict(t time.Time) Prediction {
	jd := julian.TimeToJD(t.UTC())
	year := 2000 + (jd-base.J2000)/base.JulianYear

	typ, central, jmax, γ, _, _, _ := meeuseclipse.Solar(year)
	if typ == meeuseclipse.None || math.Abs(jmax-jd) > maxOffsetDays {
		return Prediction{Kind: eclipse.None}
	}

	p := Prediction{
		Greatest: julian.JDToTime(jmax),
		Gamma:    γ,
		Central:  central,
	}
	switch typ {
	case meeuseclipse.Partial:
		p.Kind = eclipse.Partial
	case meeuseclipse.Annular:
		p.Kind = eclipse.Annular
	case meeuseclipse.AnnularTotal, meeuseclipse.Total:
		p.Kind = eclipse.TotalOrHybrid
	default:
		p.Kind = eclipse.None
	}
	return p
}

// Verdict compares one computed record with the reference.
type Verdict struct {
	Instant time.Time
	Ours    eclipse.Kind
	Theirs  eclipse.Kind
	Agree   bool
}

// Check compares a record with the reference prediction.
func Check(rec eclipse.Record) Verdict {
	theirs := Predict(rec.Instant).Kind
	return Verdict{
		Instant: rec.Instant,
		Ours:    rec.Kind,
		Theirs:  theirs,
		Agree:   theirs == rec.Kind,
	}
}

// CheckAll compares every error-free result and logs each disagreement as
// a warning for manual review. It returns the disagreements.
func CheckAll(results []eclipse.Result, logger *slog.Logger) []Verdict {
	if logger == nil {
		logger = slog.Default()
	}
	var mismatches []Verdict
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		v := Check(r.Record)
		if v.Agree {
			continue
		}
		logger.Warn("classification disagrees with reference predictor, review manually",
			"instant", v.Instant.UTC().Format(time.RFC3339),
			"computed", v.Ours.String(),
			"reference", v.Theirs.String())
		mismatches = append(mismatches, v)
	}
	return mismatches
}
