// Package disc computes overlaps between coplanar circular discs.
package disc

import (
	"errors"
	"fmt"
	"math"
)

var ErrNoOverlap = errors.New("discs do not partially overlap")

// Overlapping reports whether two circles with radii r1, r2 whose centers
// are d apart intersect in a proper lens, i.e. |r1-r2| < d < r1+r2.
func Overlapping(d, r1, r2 float64) bool {
	return d > math.Abs(r1-r2) && d < r1+r2
}

// CrossArea returns the area of the lens formed by two partially
// overlapping circles of radii r1 and r2 whose centers are d apart.
//
// Callers handle the disjoint and fully contained cases themselves;
// outside |r1-r2| < d < r1+r2 CrossArea returns ErrNoOverlap.
func CrossArea(d, r1, r2 float64) (float64, error) {
	if !Overlapping(d, r1, r2) {
		return 0, fmt.Errorf("d=%g r1=%g r2=%g: %w", d, r1, r2, ErrNoOverlap)
	}

	a1 := r1 * r1 * math.Acos(clamp((d*d+r1*r1-r2*r2)/(2*d*r1)))
	a2 := r2 * r2 * math.Acos(clamp((d*d+r2*r2-r1*r1)/(2*d*r2)))
	k := (-d + r1 + r2) * (d + r1 - r2) * (d - r1 + r2) * (d + r1 + r2)

	area := a1 + a2 - 0.5*math.Sqrt(math.Max(k, 0))

	// Round-off can push near-tangent lenses just outside the bounds.
	return math.Min(math.Max(area, 0), math.Pi*math.Min(r1, r2)*math.Min(r1, r2)), nil
}

// clamp keeps acos arguments inside [-1, 1].
func clamp(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}
