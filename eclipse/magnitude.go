package eclipse

import (
	"fmt"
	"math"

	"github.com/echoflaresat/eclipses/disc"
	"github.com/echoflaresat/eclipses/vectors"
)

// Measure computes magnitude and obscurity for an instant already
// classified as an eclipse.
//
// The reference observer is where the Sun-Moon axis meets the Earth's
// surface, or the surface point nearest to that axis when it misses.
// From there the Sun's disc is scaled onto the plane through the Moon
// orthogonal to the Sun direction and the two discs are compared.
func Measure(set BodySet, r Radii, kind Kind) (Metrics, error) {
	if kind == None {
		return Metrics{}, fmt.Errorf("measure at %s: %w", set.Instant, ErrNotEclipse)
	}

	axis := set.Moon.Sub(set.Sun).Normalize()
	surface, _ := vectors.LineSphereIntersection(axis, set.Earth.Sub(set.Sun), r.Earth)
	observer := surface.Add(set.Sun)

	toSun := set.Sun.Sub(observer)
	toMoon := set.Moon.Sub(observer)
	sunDist := toSun.Norm()
	if sunDist == 0 {
		return Metrics{}, fmt.Errorf("observer on the sun: %w", ErrDegenerateGeometry)
	}
	sunDir := toSun.Scale(1 / sunDist)

	along := toMoon.Dot(sunDir)
	if along <= 0 {
		return Metrics{}, fmt.Errorf("moon behind observer: %w", ErrDiscsDisjoint)
	}
	dist := toMoon.Sub(sunDir.Scale(along)).Norm()
	sunRadius := r.Sun * along / sunDist

	return DiscMetrics(dist, sunRadius, r.Moon)
}

// DiscMetrics compares a solar disc of radius sunRadius with a lunar disc
// of radius moonRadius whose centers are dist apart in a common plane.
//
// Disjoint discs yield zero metrics together with ErrDiscsDisjoint. When
// the Moon covers the whole Sun the obscurity is exactly 1; when the Sun
// contains the Moon it is the ratio of the disc areas.
func DiscMetrics(dist, sunRadius, moonRadius float64) (Metrics, error) {
	if !(sunRadius > 0) || !(moonRadius > 0) || math.IsNaN(dist) || dist < 0 {
		return Metrics{}, fmt.Errorf("disc radii %g, %g at %g: %w", sunRadius, moonRadius, dist, ErrDegenerateGeometry)
	}

	if dist >= sunRadius+moonRadius {
		return Metrics{}, fmt.Errorf("separation %g >= %g: %w", dist, sunRadius+moonRadius, ErrDiscsDisjoint)
	}

	ratio := moonRadius / sunRadius
	if dist+math.Min(sunRadius, moonRadius) <= math.Max(sunRadius, moonRadius) {
		if moonRadius >= sunRadius {
			return Metrics{Magnitude: ratio, Obscurity: 1.0}, nil
		}
		return Metrics{Magnitude: ratio, Obscurity: ratio * ratio}, nil
	}

	area, err := disc.CrossArea(dist, sunRadius, moonRadius)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{
		Magnitude: (sunRadius + moonRadius - dist) / (2 * sunRadius),
		Obscurity: area / (math.Pi * sunRadius * sunRadius),
	}, nil
}
