package eclipse

import (
	"fmt"

	"github.com/echoflaresat/eclipses/shadow"
	"github.com/echoflaresat/eclipses/vectors"
)

// Shadows holds the Moon's three shadow cones at one instant.
type Shadows struct {
	Penumbra shadow.Cone
	Umbra    shadow.Cone
	Antumbra shadow.Cone
}

// BuildShadows constructs the cones cast by the Moon in sunlight. They are
// rebuilt for every instant; nothing is carried between instants.
func BuildShadows(set BodySet, r Radii) (Shadows, error) {
	sun := shadow.Body{Center: set.Sun, Radius: r.Sun}
	moon := shadow.Body{Center: set.Moon, Radius: r.Moon}

	pen, err := shadow.NewPenumbra(sun, moon)
	if err != nil {
		return Shadows{}, fmt.Errorf("penumbra: %w", wrapGeometry(err))
	}
	umb, err := shadow.NewUmbra(sun, moon)
	if err != nil {
		return Shadows{}, fmt.Errorf("umbra: %w", wrapGeometry(err))
	}
	return Shadows{
		Penumbra: pen,
		Umbra:    umb,
		Antumbra: shadow.AntumbraOf(umb),
	}, nil
}

// Classify decides the eclipse type seen from a spherical Earth.
//
// The penumbra gates everything: if the Earth does not reach it there is
// no eclipse whatever the other cones say. Otherwise a reached umbra
// (or an umbra apex inside the Earth) means total or hybrid, a reached
// antumbra means annular, and anything else is partial. Total wins when
// both the umbra and antumbra tests pass at a cone boundary.
func Classify(sh Shadows, earth vectors.Vec3, earthRadius float64) (Kind, error) {
	pen, err := sh.Penumbra.Locate(earth)
	if err != nil {
		return None, wrapGeometry(err)
	}
	if !sh.Penumbra.Reaches(pen, earthRadius) {
		return None, nil
	}

	umb, err := sh.Umbra.Locate(earth)
	if err != nil {
		// Earth's center on the apex: the cone has collapsed inside it.
		return TotalOrHybrid, nil
	}
	apexInside := umb.Distance <= earthRadius
	if apexInside || sh.Umbra.Reaches(umb, earthRadius) {
		return TotalOrHybrid, nil
	}

	ant, err := sh.Antumbra.Locate(earth)
	if err != nil {
		return None, wrapGeometry(err)
	}
	if sh.Antumbra.Reaches(ant, earthRadius) && !apexInside {
		return Annular, nil
	}
	return Partial, nil
}

func wrapGeometry(err error) error {
	return fmt.Errorf("%w: %w", ErrDegenerateGeometry, err)
}
