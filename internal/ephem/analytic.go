package ephem

import (
	"context"
	"math"
	"time"

	"github.com/litescript/ndastro/internal/astro"
	engerrors "github.com/litescript/ndastro/internal/errors"
)

// AnalyticProvider computes positions offline from series expansions and
// mean orbital elements. Accuracy is about 0.01° for the Sun, 0.01-0.03° for
// the Moon and arcminutes for the planets, which is enough to time stations
// to within a day.
type AnalyticProvider struct{}

// NewAnalyticProvider creates an offline provider.
func NewAnalyticProvider() *AnalyticProvider {
	return &AnalyticProvider{}
}

// Name implements Provider.
func (p *AnalyticProvider) Name() string {
	return "analytic"
}

// ApparentPosition implements Provider.
func (p *AnalyticProvider) ApparentPosition(ctx context.Context, body Body, obs astro.Observer, t time.Time) (Sample, error) {
	if err := checkRequest(ctx, obs); err != nil {
		return Sample{}, err
	}

	var f positionFunc
	switch {
	case body == Rahu:
		f = func(_ context.Context, t time.Time) (astro.Spherical, error) {
			return astro.Spherical{LonDeg: MeanLunarNode(t)}, nil
		}
	case body.IsPhysical():
		f = func(_ context.Context, t time.Time) (astro.Spherical, error) {
			return topocentric(geocentricApparent(body, t), obs, t), nil
		}
	default:
		return Sample{}, engerrors.NewUnknownBody(body.Code())
	}

	s, err := sampleWithSpeed(ctx, f, t)
	if err != nil {
		return Sample{}, err
	}
	if body == Rahu {
		s.LatDeg, s.DistAU, s.SpeedLat, s.SpeedDist = 0, 0, 0, 0
	}
	return s, nil
}

// SunriseSunset implements Provider.
func (p *AnalyticProvider) SunriseSunset(ctx context.Context, obs astro.Observer, date time.Time) (time.Time, time.Time, error) {
	if err := checkRequest(ctx, obs); err != nil {
		return time.Time{}, time.Time{}, err
	}

	times := astro.SampleDay(date, obs.LonDeg, SunriseStep)
	samples := make([]astro.RADecAtTime, len(times))
	for i, tm := range times {
		ra, dec := astro.SunPosition(tm)
		samples[i] = astro.RADecAtTime{Time: tm, RAdeg: ra, DecDeg: dec}
	}
	return riseSetFromSamples(obs, samples)
}

// Ascendant implements Provider.
func (p *AnalyticProvider) Ascendant(ctx context.Context, obs astro.Observer, t time.Time) (float64, error) {
	if err := checkRequest(ctx, obs); err != nil {
		return 0, err
	}
	return astro.Ascendant(t, obs), nil
}

// Close implements Provider.
func (p *AnalyticProvider) Close() error {
	return nil
}

// MeanLunarNode returns the longitude of the mean ascending node of the Moon
// on the mean ecliptic of date, in degrees [0, 360).
func MeanLunarNode(t time.Time) float64 {
	T := astro.JulianCenturies(astro.JulianEphemerisDate(t))
	omega := 125.0445479 - 1934.1362891*T + 0.0020754*T*T + T*T*T/467441 - T*T*T*T/60616000
	return astro.NormalizeDegree(omega)
}

// geocentricApparent returns the apparent geocentric ecliptic position of
// date (distance in AU) of a physical body.
func geocentricApparent(body Body, t time.Time) astro.Spherical {
	switch body {
	case Sun:
		return astro.SunEcliptic(t)
	case Moon:
		return MoonEcliptic(t)
	default:
		return planetApparent(body, t)
	}
}

// topocentric shifts an apparent geocentric ecliptic position to the observer.
func topocentric(geo astro.Spherical, obs astro.Observer, t time.Time) astro.Spherical {
	eps := astro.TrueObliquity(astro.JulianCenturies(astro.JulianEphemerisDate(t)))
	eq := astro.EclipticToEquatorial(astro.FromSpherical(geo), eps)
	topo := eq.Sub(astro.GeocentricPosition(obs, t))
	return astro.ToSpherical(astro.EquatorialToEcliptic(topo, eps))
}

// planetApparent returns the apparent geocentric position of a planet: light
// time, precession from J2000, annual aberration and nutation are applied.
func planetApparent(body Body, t time.Time) astro.Spherical {
	jde := astro.JulianEphemerisDate(t)
	T := astro.JulianCenturies(jde)

	earth := heliocentricJ2000(earthMoonBarycenter, jde)
	elems := planetElements[body]

	var geo astro.Vec3
	tau := 0.0
	for i := 0; i < 3; i++ {
		geo = heliocentricJ2000(elems, jde-tau).Sub(earth)
		tau = astro.LightTimeFromAU(geo.Norm())
	}

	s := astro.ToSpherical(geo)
	s.LonDeg += astro.GeneralPrecession(T)

	lon := astro.DegToRad(s.LonDeg)
	lat := astro.DegToRad(s.LatDeg)
	sunLon := astro.DegToRad(astro.SunEcliptic(t).LonDeg)
	perihelion := astro.DegToRad(102.93735 + 1.71946*T + 0.00046*T*T)
	e := 0.016708634 - 0.000042037*T
	const kappa = 20.49552 / 3600

	dLon := (-kappa*math.Cos(sunLon-lon) + e*kappa*math.Cos(perihelion-lon)) / math.Cos(lat)
	dLat := -kappa * math.Sin(lat) * (math.Sin(sunLon-lon) - e*math.Sin(perihelion-lon))

	dpsi, _ := astro.Nutation(T)
	s.LonDeg = astro.NormalizeDegree(s.LonDeg + dLon + dpsi)
	s.LatDeg += dLat
	return s
}
