// Package ephem supplies Sun, Earth and Moon positions for the eclipse
// engine.
package ephem

import (
	"errors"
	"time"

	"github.com/echoflaresat/eclipses/eclipse"
	"github.com/echoflaresat/eclipses/vectors"
)

const (
	AUKm               = 149597870.7
	EarthMoonMassRatio = 81.30056
)

var (
	ErrNotFound     = errors.New("no positions for instant")
	ErrMalformedRow = errors.New("malformed state row")
)

// Provider defines the interface for ephemeris sources.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// State returns the body positions at t in one common frame, in km.
	State(t time.Time) (eclipse.BodySet, error)
}

// FromSegments assembles a BodySet from vectors laid out as in a JPL SPK
// kernel: the Sun and the Earth-Moon barycenter relative to the solar
// system barycenter, the Earth and the Moon relative to the Earth-Moon
// barycenter.
func FromSegments(t time.Time, sunSSB, embSSB, earthEMB, moonEMB vectors.Vec3) eclipse.BodySet {
	return eclipse.BodySet{
		Instant: t,
		Sun:     sunSSB,
		EMB:     embSSB,
		Earth:   embSSB.Add(earthEMB),
		Moon:    embSSB.Add(moonEMB),
	}
}
