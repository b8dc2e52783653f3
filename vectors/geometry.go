package vectors

import "math"

// AngleBetween returns the angle between a and b in [0, π].
//
// It uses atan2(|a×b|, a·b), which keeps full precision near 0 and π where
// acos of the normalized dot product does not. The result is NaN when
// either vector has zero length; callers must guard.
func AngleBetween(a, b Vec3) float64 {
	if a.Norm() == 0 || b.Norm() == 0 {
		return math.NaN()
	}
	return math.Atan2(a.Cross(b).Norm(), a.Dot(b))
}

// LineSphereIntersection intersects the ray t*dir (t >= 0 not enforced)
// starting at the origin with the sphere of the given center and radius.
// dir must be a unit vector.
//
// When the ray hits the sphere the near intersection point is returned
// with hit == true. When it misses, the point of the sphere nearest to the
// ray is returned instead with hit == false. That fallback is an
// approximation used to keep a reference point for near-tangent geometry.
func LineSphereIntersection(dir, center Vec3, radius float64) (point Vec3, hit bool) {
	// Closest approach of the line to the sphere center.
	tca := dir.Dot(center)
	closest := dir.Scale(tca)

	d2 := center.Dot(center) - tca*tca
	discriminant := radius*radius - d2
	if discriminant >= 0 {
		t := tca - math.Sqrt(discriminant)
		return dir.Scale(t), true
	}

	toLine := closest.Sub(center).Normalize()
	return center.Add(toLine.Scale(radius)), false
}
