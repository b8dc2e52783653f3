package ephem

import (
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"

	"github.com/echoflaresat/eclipses/eclipse"
	"github.com/echoflaresat/eclipses/vectors"
)

// Meeus is a low-precision geocentric provider built on the analytical
// solar and lunar theories of Meeus' Astronomical Algorithms. The Earth
// sits at the origin of an equatorial frame of date; the Sun is apparent
// (aberration and nutation applied), the Moon carries nutation.
//
// Instants are taken as Terrestrial Time.
type Meeus struct{}

func NewMeeus() *Meeus {
	return &Meeus{}
}

func (m *Meeus) Name() string { return "meeus" }

func (m *Meeus) State(t time.Time) (eclipse.BodySet, error) {
	jde := julian.TimeToJD(t.UTC())

	moon := MoonPosition(jde)
	emb := moon.Scale(1 / (1 + EarthMoonMassRatio))
	return eclipse.BodySet{
		Instant: t,
		Sun:     SunPosition(jde),
		EMB:     emb,
		Earth:   vectors.Zero(),
		Moon:    moon,
	}, nil
}

// SunPosition returns the apparent geocentric position of the Sun in km.
func SunPosition(jde float64) vectors.Vec3 {
	ra, dec := solar.ApparentEquatorial(jde)
	r := solar.Radius(base.J2000Century(jde)) * AUKm
	return equatorial(ra, dec, r)
}

// MoonPosition returns the geocentric position of the Moon in km.
func MoonPosition(jde float64) vectors.Vec3 {
	λ, β, Δ := moonposition.Position(jde)
	Δψ, Δε := nutation.Nutation(jde)
	ε := nutation.MeanObliquity(jde) + Δε

	ra, dec := coord.EclToEq(λ+Δψ, β, ε.Sin(), ε.Cos())
	return equatorial(ra, dec, Δ)
}

func equatorial(ra unit.RA, dec unit.Angle, r float64) vectors.Vec3 {
	return vectors.Vec3{
		X: r * dec.Cos() * ra.Cos(),
		Y: r * dec.Cos() * ra.Sin(),
		Z: r * dec.Sin(),
	}
}
