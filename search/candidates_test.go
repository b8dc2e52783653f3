package search

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/echoflaresat/eclipses/eclipse"
	"github.com/echoflaresat/eclipses/ephem"
	"github.com/echoflaresat/eclipses/vectors"
)

// circularMoon moves the Moon around the Earth at a steady rate, passing
// closest to the Sun direction at conjunction.
type circularMoon struct {
	conjunction time.Time
	latitudeKm  float64
}

func (c circularMoon) State(t time.Time) (eclipse.BodySet, error) {
	const rate = 2 * math.Pi / (29.53 * 86400) // rad/s
	θ := rate * t.Sub(c.conjunction).Seconds()
	return eclipse.BodySet{
		Instant: t,
		Sun:     vectors.Vec3{X: ephem.AUKm},
		Earth:   vectors.Zero(),
		Moon:    vectors.Vec3{X: 384400 * math.Cos(θ), Y: 384400 * math.Sin(θ), Z: c.latitudeKm},
	}, nil
}

type failingSource struct{}

func (failingSource) State(time.Time) (eclipse.BodySet, error) {
	return eclipse.BodySet{}, errors.New("ephemeris unavailable")
}

func TestMinimize(t *testing.T) {
	conj := time.Date(2024, 4, 8, 18, 17, 20, 0, time.UTC)
	src := circularMoon{conjunction: conj, latitudeKm: 2000}

	got, err := minimize(src, conj.Add(-20*time.Hour), conj.Add(28*time.Hour), time.Second)
	if err != nil {
		t.Fatalf("minimize: %v", err)
	}
	if d := got.Sub(conj); d < -2*time.Second || d > 2*time.Second {
		t.Errorf("minimum at %v, want %v (off by %v)", got, conj, d)
	}
}

func TestSeparation(t *testing.T) {
	conj := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	src := circularMoon{conjunction: conj}

	sep, err := Separation(src, conj)
	if err != nil {
		t.Fatalf("Separation: %v", err)
	}
	if sep > 1e-12 {
		t.Errorf("separation at conjunction = %g, want 0", sep)
	}

	half, err := Separation(src, conj.Add(time.Duration(29.53*86400/2)*time.Second))
	if err != nil {
		t.Fatalf("Separation: %v", err)
	}
	if math.Abs(half-math.Pi) > 1e-3 {
		t.Errorf("separation half a month later = %g, want π", half)
	}

	if _, err := Separation(failingSource{}, conj); err == nil {
		t.Error("expected the source error")
	}
}

func TestNewMoons(t *testing.T) {
	moons := NewMoons(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if len(moons) != 13 {
		t.Fatalf("got %d new moons in 2024, want 13", len(moons))
	}

	april := time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC)
	found := false
	for i, m := range moons {
		if i > 0 {
			gap := m.Sub(moons[i-1])
			if gap < 29*24*time.Hour || gap > 30*24*time.Hour {
				t.Errorf("lunation %d lasts %v", i, gap)
			}
		}
		if d := m.Sub(april); d > -time.Hour && d < time.Hour {
			found = true
		}
	}
	if !found {
		t.Errorf("no new moon near %v in %v", april, moons)
	}
}

func TestCandidatesMeeus(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)

	got, err := Candidates(context.Background(), ephem.NewMeeus(), start, end, DefaultOptions())
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d candidates %v, want 3", len(got), got)
	}

	greatest := time.Date(2024, 4, 8, 18, 17, 0, 0, time.UTC)
	if d := got[1].Sub(greatest); d < -time.Hour || d > time.Hour {
		t.Errorf("april candidate %v, want within an hour of %v", got[1], greatest)
	}
	for i := 1; i < len(got); i++ {
		if !got[i].After(got[i-1]) {
			t.Errorf("candidates not ascending: %v", got)
		}
	}
}

func TestCandidatesErrors(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 2, 0)

	if _, err := Candidates(context.Background(), ephem.NewMeeus(), end, start, DefaultOptions()); err == nil {
		t.Error("reversed range should fail")
	}
	if _, err := Candidates(context.Background(), ephem.NewMeeus(), start, end, Options{}); err == nil {
		t.Error("zero options should fail")
	}
	if _, err := Candidates(context.Background(), failingSource{}, start, end, DefaultOptions()); err == nil {
		t.Error("source failure should propagate")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Candidates(ctx, ephem.NewMeeus(), start, end, DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled context: err = %v", err)
	}
}
