// Package eclipse classifies solar eclipses from the positions of the
// Sun, Moon and Earth and measures their magnitude and obscurity.
package eclipse

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/echoflaresat/eclipses/vectors"
)

var (
	ErrDegenerateGeometry = errors.New("degenerate geometry")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidRadius      = errors.New("invalid radius")
	ErrDiscsDisjoint      = errors.New("sun and moon discs do not overlap")
	ErrNotEclipse         = errors.New("instant is not an eclipse")
)

// Kind is the classification of one candidate instant.
type Kind int

const (
	None Kind = iota
	Partial
	TotalOrHybrid
	Annular
)

// Kinds lists every classification in display order.
var Kinds = []Kind{None, Partial, TotalOrHybrid, Annular}

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Partial:
		return "partial"
	case TotalOrHybrid:
		return "total"
	case Annular:
		return "annular"
	default:
		return "unknown"
	}
}

// ParseKind parses the String form of a Kind. "hybrid" is accepted for
// TotalOrHybrid.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return None, nil
	case "partial":
		return Partial, nil
	case "total", "hybrid":
		return TotalOrHybrid, nil
	case "annular":
		return Annular, nil
	default:
		return None, fmt.Errorf("unknown eclipse kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Radii holds the physical radii, in kilometres, of the three bodies.
type Radii struct {
	Sun   float64 `toml:"sun"`
	Moon  float64 `toml:"moon"`
	Earth float64 `toml:"earth"`
}

// DefaultRadii returns the IAU nominal solar radius, the mean lunar radius
// and the mean terrestrial radius.
func DefaultRadii() Radii {
	return Radii{Sun: 696340.0, Moon: 1737.1, Earth: 6371.0}
}

// Validate rejects non-positive or non-finite radii and a Moon that is
// not smaller than the Sun (no umbra could form).
func (r Radii) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"sun", r.Sun}, {"moon", r.Moon}, {"earth", r.Earth}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v <= 0 {
			return fmt.Errorf("%s radius %g: %w", f.name, f.v, ErrInvalidRadius)
		}
	}
	if r.Moon >= r.Sun {
		return fmt.Errorf("moon radius %g not smaller than sun radius %g: %w", r.Moon, r.Sun, ErrInvalidRadius)
	}
	return nil
}

// BodySet holds the positions (km) of the Sun, the Earth-Moon barycenter,
// the Earth and the Moon at one instant, all in one common frame.
type BodySet struct {
	Instant time.Time
	Sun     vectors.Vec3
	EMB     vectors.Vec3
	Earth   vectors.Vec3
	Moon    vectors.Vec3
}

// Validate rejects non-finite coordinates and coincident body centers.
func (b BodySet) Validate() error {
	for _, v := range []struct {
		name string
		pos  vectors.Vec3
	}{{"sun", b.Sun}, {"emb", b.EMB}, {"earth", b.Earth}, {"moon", b.Moon}} {
		if !v.pos.IsFinite() {
			return fmt.Errorf("%s position %v: %w", v.name, v.pos, ErrInvalidInput)
		}
	}
	if b.Sun == b.Moon || b.Sun == b.Earth || b.Earth == b.Moon {
		return fmt.Errorf("coincident body centers: %w", ErrDegenerateGeometry)
	}
	return nil
}

// Metrics quantifies how much of the Sun is covered.
type Metrics struct {
	// Magnitude is the fraction of the solar diameter covered; >= 1
	// means the smaller disc is entirely covered.
	Magnitude float64 `json:"magnitude"`
	// Obscurity is the fraction of the solar disc area covered.
	Obscurity float64 `json:"obscurity"`
}

// Record is the classification of one instant.
type Record struct {
	Instant time.Time `json:"instant"`
	Kind    Kind      `json:"type"`
	Metrics
}

// Result pairs a record with the error, if any, raised while computing it.
type Result struct {
	Record
	Err error `json:"-"`
}

// IsEclipse reports whether the result is a successfully classified eclipse.
func (r Result) IsEclipse() bool {
	return r.Err == nil && r.Kind != None
}
