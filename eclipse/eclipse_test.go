package eclipse

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/echoflaresat/eclipses/vectors"
)

const (
	auKm          = 149597870.0
	earthMoonMass = 81.30056
)

var epoch = time.Date(2024, 4, 8, 18, 17, 0, 0, time.UTC)

// alignedSet places the Earth at the origin, the Moon at moonKm from it
// rotated offsetDeg off the +x axis, and the Sun 1 AU along +x from the
// Earth-Moon barycenter.
func alignedSet(moonKm, offsetDeg float64) BodySet {
	off := offsetDeg * math.Pi / 180
	moon := vectors.Vec3{X: moonKm * math.Cos(off), Y: moonKm * math.Sin(off)}
	emb := moon.Scale(1 / (1 + earthMoonMass))
	return BodySet{
		Instant: epoch,
		Sun:     emb.Add(vectors.Vec3{X: auKm}),
		EMB:     emb,
		Earth:   vectors.Zero(),
		Moon:    moon,
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultRadii(), 4, nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestEvaluateScenarios(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name      string
		set       BodySet
		want      Kind
		magMin    float64
		magMax    float64
		obscurity func(float64) bool
	}{
		{
			name: "perigee alignment is total",
			set:  alignedSet(363300, 0),
			want: TotalOrHybrid, magMin: 1.04, magMax: 1.05,
			obscurity: func(o float64) bool { return o == 1.0 },
		},
		{
			// The umbra apex falls about 4,800 km from the Earth's
			// center: inside the globe, so the track is hybrid.
			name: "umbra apex inside earth is hybrid",
			set:  alignedSet(378000, 0),
			want: TotalOrHybrid, magMin: 1.0, magMax: 1.01,
			obscurity: func(o float64) bool { return o == 1.0 },
		},
		{
			// At the mean distance the umbra ends ~11,200 km short of
			// the Earth's center.
			name: "mean distance alignment is annular",
			set:  alignedSet(384400, 0),
			want: Annular, magMin: 0.98, magMax: 0.99,
			obscurity: func(o float64) bool { return o > 0.97 && o < 0.98 },
		},
		{
			name: "apogee alignment is annular",
			set:  alignedSet(405500, 0),
			want: Annular, magMin: 0.93, magMax: 0.94,
			obscurity: func(o float64) bool { return o > 0.87 && o < 0.88 },
		},
		{
			name: "one degree offset is partial",
			set:  alignedSet(384400, 1),
			want: Partial, magMin: 0.85, magMax: 0.92,
			obscurity: func(o float64) bool { return o > 0.8 && o < 0.9 },
		},
		{
			name: "grazing offset is a small partial",
			set:  alignedSet(384400, 1.4),
			want: Partial, magMin: 0.1, magMax: 0.2,
			obscurity: func(o float64) bool { return o > 0.03 && o < 0.1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := e.Evaluate(tt.set)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if rec.Kind != tt.want {
				t.Fatalf("kind = %v, want %v", rec.Kind, tt.want)
			}
			if rec.Magnitude < tt.magMin || rec.Magnitude > tt.magMax {
				t.Errorf("magnitude = %.5f, want in [%g, %g]", rec.Magnitude, tt.magMin, tt.magMax)
			}
			if !tt.obscurity(rec.Obscurity) {
				t.Errorf("obscurity = %.5f out of range", rec.Obscurity)
			}
			if !rec.Instant.Equal(epoch) {
				t.Errorf("instant = %v, want %v", rec.Instant, epoch)
			}
		})
	}
}

func TestEvaluateNoEclipse(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		set  BodySet
	}{
		{"two degree offset", alignedSet(384400, 2)},
		{"ten degree offset", alignedSet(384400, 10)},
		{"full moon", alignedSet(384400, 180)},
		{"quarter moon", alignedSet(384400, 90)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := e.Evaluate(tt.set)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if rec.Kind != None {
				t.Errorf("kind = %v, want none", rec.Kind)
			}
			if rec.Metrics != (Metrics{}) {
				t.Errorf("metrics = %+v, want zero for none", rec.Metrics)
			}
		})
	}
}

func TestEarthOnUmbraAxisIsTotal(t *testing.T) {
	r := DefaultRadii()
	set := alignedSet(363300, 0)
	sh, err := BuildShadows(set, r)
	if err != nil {
		t.Fatalf("BuildShadows: %v", err)
	}
	// Put the Earth's center on the axis halfway between Moon and apex.
	earth := set.Moon.Add(sh.Umbra.Apex).Scale(0.5)
	pos, err := sh.Umbra.Locate(earth)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if pos.AngleFromAxis > 1e-9 {
		t.Fatalf("angle from axis = %g, want ~0", pos.AngleFromAxis)
	}
	kind, err := Classify(sh, earth, r.Earth)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if kind != TotalOrHybrid {
		t.Errorf("kind = %v, want total", kind)
	}
}

func TestPenumbraGatesClassification(t *testing.T) {
	r := DefaultRadii()
	for off := 0.0; off <= 3.0; off += 0.05 {
		set := alignedSet(380000, off)
		sh, err := BuildShadows(set, r)
		if err != nil {
			t.Fatalf("BuildShadows: %v", err)
		}
		pos, err := sh.Penumbra.Locate(set.Earth)
		if err != nil {
			t.Fatalf("Locate: %v", err)
		}
		kind, err := Classify(sh, set.Earth, r.Earth)
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		reached := sh.Penumbra.Reaches(pos, r.Earth)
		if !reached && kind != None {
			t.Errorf("offset %.2f°: penumbra not reached but kind = %v", off, kind)
		}
		if reached && kind == None {
			t.Errorf("offset %.2f°: penumbra reached but kind = none", off)
		}
	}
}

func TestDiscMetrics(t *testing.T) {
	tests := []struct {
		name                  string
		dist, rSun, rMoon     float64
		wantMag, wantObs, tol float64
		wantErr               error
	}{
		{name: "disjoint", dist: 3, rSun: 1, rMoon: 1, wantErr: ErrDiscsDisjoint},
		{name: "touching", dist: 2, rSun: 1, rMoon: 1, wantErr: ErrDiscsDisjoint},
		{name: "moon covers sun", dist: 0.01, rSun: 1, rMoon: 1.05, wantMag: 1.05, wantObs: 1},
		{name: "moon inside sun", dist: 0, rSun: 1, rMoon: 0.9, wantMag: 0.9, wantObs: 0.81, tol: 1e-15},
		{name: "internally tangent", dist: 0.1, rSun: 1, rMoon: 0.9, wantMag: 0.9, wantObs: 0.81, tol: 1e-15},
		{
			name: "equal discs offset by one radius",
			dist: 1, rSun: 1, rMoon: 1,
			wantMag: 0.5, wantObs: (2*math.Pi/3 - math.Sqrt(3)/2) / math.Pi, tol: 1e-12,
		},
		{name: "zero sun radius", dist: 0, rSun: 0, rMoon: 1, wantErr: ErrDegenerateGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiscMetrics(tt.dist, tt.rSun, tt.rMoon)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				if got != (Metrics{}) {
					t.Errorf("metrics = %+v, want zero", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DiscMetrics: %v", err)
			}
			if math.Abs(got.Magnitude-tt.wantMag) > tt.tol {
				t.Errorf("magnitude = %.15f, want %.15f", got.Magnitude, tt.wantMag)
			}
			if math.Abs(got.Obscurity-tt.wantObs) > tt.tol {
				t.Errorf("obscurity = %.15f, want %.15f", got.Obscurity, tt.wantObs)
			}
		})
	}
}

func TestMeasureRejectsNone(t *testing.T) {
	_, err := Measure(alignedSet(384400, 0), DefaultRadii(), None)
	if !errors.Is(err, ErrNotEclipse) {
		t.Errorf("err = %v, want ErrNotEclipse", err)
	}
}

func TestEvaluateRejectsBadInput(t *testing.T) {
	e := newTestEngine(t)

	nan := alignedSet(384400, 0)
	nan.Moon.Y = math.NaN()
	if _, err := e.Evaluate(nan); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NaN moon: err = %v, want ErrInvalidInput", err)
	}

	same := alignedSet(384400, 0)
	same.Moon = same.Earth
	if _, err := e.Evaluate(same); !errors.Is(err, ErrDegenerateGeometry) {
		t.Errorf("coincident earth/moon: err = %v, want ErrDegenerateGeometry", err)
	}
}

func TestRadiiValidate(t *testing.T) {
	tests := []struct {
		name string
		r    Radii
		ok   bool
	}{
		{"defaults", DefaultRadii(), true},
		{"negative earth", Radii{Sun: 696340, Moon: 1737.1, Earth: -1}, false},
		{"zero moon", Radii{Sun: 696340, Moon: 0, Earth: 6371}, false},
		{"infinite sun", Radii{Sun: math.Inf(1), Moon: 1737.1, Earth: 6371}, false},
		{"moon larger than sun", Radii{Sun: 1000, Moon: 1737.1, Earth: 6371}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidRadius) {
				t.Errorf("err = %v, want ErrInvalidRadius", err)
			}
		})
	}

	if _, err := NewEngine(Radii{}, 1, nil); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("NewEngine with zero radii: err = %v", err)
	}
}

func TestKindText(t *testing.T) {
	for _, k := range Kinds {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText: %v", err)
		}
		var back Kind
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", b, err)
		}
		if back != k {
			t.Errorf("round trip %v -> %q -> %v", k, b, back)
		}
	}
	if k, err := ParseKind("Hybrid"); err != nil || k != TotalOrHybrid {
		t.Errorf("ParseKind(Hybrid) = %v, %v", k, err)
	}
	if _, err := ParseKind("lunar"); err == nil {
		t.Error("ParseKind(lunar) should fail")
	}
}
