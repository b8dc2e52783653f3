// Package shadow builds the shadow cones cast by a spherical occulter lit
// by a spherical light source.
package shadow

import (
	"errors"
	"fmt"
	"math"

	"github.com/echoflaresat/eclipses/vectors"
)

var (
	ErrDegenerate = errors.New("degenerate shadow geometry")
	ErrNoUmbra    = errors.New("occulter is not smaller than the light source")
)

// Kind identifies a shadow cone.
type Kind int

const (
	Penumbra Kind = iota
	Umbra
	Antumbra
)

func (k Kind) String() string {
	switch k {
	case Penumbra:
		return "penumbra"
	case Umbra:
		return "umbra"
	case Antumbra:
		return "antumbra"
	default:
		return "unknown"
	}
}

// Body is a sphere: a center position (km) and a physical radius (km).
type Body struct {
	Center vectors.Vec3
	Radius float64
}

// Cone is a circular cone given by its apex, a unit axis and a half-angle
// in (0, π).
//
// Penumbra and umbra cones contain the points whose direction from the
// apex lies within HalfAngle of Axis. The antumbra shares the umbra's
// apex and axis and stores the complementary half-angle π - θu; it
// contains the points beyond that angle, i.e. the far nappe past the apex.
type Cone struct {
	Kind      Kind
	Apex      vectors.Vec3
	Axis      vectors.Vec3
	HalfAngle float64
}

// Position describes a point relative to a cone.
type Position struct {
	// AngleFromAxis is the angle between the cone axis and the
	// apex-to-point vector, in [0, π].
	AngleFromAxis float64
	// Distance is the apex-to-point distance.
	Distance float64
	// Offset is sin(AngleFromAxis - HalfAngle) * Distance: the signed
	// distance from the point to the cone surface line in the plane of
	// the axis. Negative inside the cone.
	Offset float64
}

// Locate returns the position of p relative to the cone.
// A point sitting on the apex has no defined direction and is reported
// as ErrDegenerate.
func (c Cone) Locate(p vectors.Vec3) (Position, error) {
	v := p.Sub(c.Apex)
	dist := v.Norm()
	if dist == 0 {
		return Position{}, fmt.Errorf("%s apex coincides with point: %w", c.Kind, ErrDegenerate)
	}
	phi := vectors.AngleBetween(c.Axis, v)
	if math.IsNaN(phi) {
		return Position{}, fmt.Errorf("%s axis undefined: %w", c.Kind, ErrDegenerate)
	}
	return Position{
		AngleFromAxis: phi,
		Distance:      dist,
		Offset:        math.Sin(phi-c.HalfAngle) * dist,
	}, nil
}

// Contains reports whether a located point lies inside the cone.
func (c Cone) Contains(pos Position) bool {
	if c.Kind == Antumbra {
		return pos.AngleFromAxis > c.HalfAngle
	}
	return pos.AngleFromAxis < c.HalfAngle
}

// Reaches reports whether a sphere of the given radius centered on the
// located point touches the cone: either its center is inside, or the
// cone surface passes within radius of it on the apex's near side.
func (c Cone) Reaches(pos Position, radius float64) bool {
	if c.Contains(pos) {
		return true
	}
	gap := pos.AngleFromAxis - c.HalfAngle
	if c.Kind == Antumbra {
		gap = -gap
	}
	if gap >= math.Pi/2 {
		return false
	}
	return math.Sin(gap)*pos.Distance <= radius
}

// NewPenumbra builds the divergent partial-shadow cone behind occulter.
// Its apex lies between the two bodies where the internal tangents cross;
// the axis points from the light source through the occulter.
func NewPenumbra(source, occulter Body) (Cone, error) {
	axis, d, err := separation(source, occulter)
	if err != nil {
		return Cone{}, err
	}
	rs, ro := source.Radius, occulter.Radius

	fromSource := d * rs / (rs + ro)
	return Cone{
		Kind:      Penumbra,
		Apex:      source.Center.Add(axis.Scale(fromSource)),
		Axis:      axis,
		HalfAngle: math.Atan2(ro+rs, d),
	}, nil
}

// NewUmbra builds the convergent full-shadow cone behind occulter. The
// apex lies on the far side of the occulter where the external tangents
// meet; the axis points from the apex back toward the occulter.
func NewUmbra(source, occulter Body) (Cone, error) {
	axis, d, err := separation(source, occulter)
	if err != nil {
		return Cone{}, err
	}
	rs, ro := source.Radius, occulter.Radius
	if rs <= ro {
		return Cone{}, fmt.Errorf("source radius %g, occulter radius %g: %w", rs, ro, ErrNoUmbra)
	}

	apexDistance := rs * d / (rs - ro)
	return Cone{
		Kind:      Umbra,
		Apex:      source.Center.Add(axis.Scale(apexDistance)),
		Axis:      axis.Neg(),
		HalfAngle: math.Atan2(rs, apexDistance),
	}, nil
}

// AntumbraOf builds the cone continuing an umbra past its apex.
func AntumbraOf(umbra Cone) Cone {
	return Cone{
		Kind:      Antumbra,
		Apex:      umbra.Apex,
		Axis:      umbra.Axis,
		HalfAngle: math.Pi - umbra.HalfAngle,
	}
}

// separation returns the unit direction from source to occulter and
// their center distance.
func separation(source, occulter Body) (vectors.Vec3, float64, error) {
	sep := occulter.Center.Sub(source.Center)
	d := sep.Norm()
	if d == 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return vectors.Vec3{}, 0, fmt.Errorf("source-occulter distance %g: %w", d, ErrDegenerate)
	}
	if source.Radius <= 0 || occulter.Radius <= 0 {
		return vectors.Vec3{}, 0, fmt.Errorf("radii %g, %g: %w", source.Radius, occulter.Radius, ErrDegenerate)
	}
	if d <= source.Radius+occulter.Radius {
		return vectors.Vec3{}, 0, fmt.Errorf("bodies intersect at distance %g: %w", d, ErrDegenerate)
	}
	return sep.Scale(1 / d), d, nil
}
