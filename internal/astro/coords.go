package astro

import (
	"math"
	"time"
)

// SkyCoord represents celestial coordinates with both equatorial (RA/Dec)
// and horizontal (Az/El) components.
type SkyCoord struct {
	// Equatorial coordinates (of date)
	RAdeg  float64 // Right Ascension in degrees (0-360)
	DecDeg float64 // Declination in degrees (-90 to +90)

	// Horizontal coordinates (observer-relative)
	AzDeg float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	ElDeg float64 // Elevation/Altitude in degrees (0=horizon, 90=zenith)
}

// Observer represents a ground-based observer location.
type Observer struct {
	LatDeg     float64 // Latitude in degrees (north positive)
	LonDeg     float64 // Longitude in degrees (east positive)
	ElevationM float64 // Height above the WGS84 ellipsoid in meters
	Name       string  // Optional name for the site
}

// Valid reports whether the observer coordinates are inside their geographic ranges.
func (o Observer) Valid() bool {
	if math.IsNaN(o.LatDeg) || math.IsNaN(o.LonDeg) || math.IsNaN(o.ElevationM) {
		return false
	}
	return o.LatDeg >= -90 && o.LatDeg <= 90 && o.LonDeg >= -180 && o.LonDeg <= 180
}

// EquatorialToHorizontal converts equatorial coordinates (RA/Dec) to horizontal
// coordinates (Az/El) for a given observer and time.
//
// The function preserves the input RA/Dec values and populates Az/El.
// Uses standard astronomical conventions:
//   - Azimuth: 0° = North, 90° = East, 180° = South, 270° = West
//   - Elevation: 0° = horizon, 90° = zenith
func EquatorialToHorizontal(eq SkyCoord, obs Observer, t time.Time) SkyCoord {
	lat := degToRad(obs.LatDeg)
	ra := degToRad(eq.RAdeg)
	dec := degToRad(eq.DecDeg)

	lst := LocalSiderealTime(t, obs.LonDeg)

	// Hour Angle = LST - RA
	ha := degToRad(lst) - ra

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	alt := math.Asin(sinAlt)

	cosAz := (math.Sin(dec) - math.Sin(alt)*math.Sin(lat)) / (math.Cos(alt) * math.Cos(lat))
	// Clamp cosAz to [-1, 1] to handle floating point errors
	if cosAz > 1 {
		cosAz = 1
	} else if cosAz < -1 {
		cosAz = -1
	}

	az := math.Acos(cosAz)

	// Positive hour angle means the object is west of the meridian
	if math.Sin(ha) > 0 {
		az = 2*math.Pi - az
	}

	return SkyCoord{
		RAdeg:  eq.RAdeg,
		DecDeg: eq.DecDeg,
		AzDeg:  radToDeg(az),
		ElDeg:  radToDeg(alt),
	}
}

// LocalSiderealTime calculates the local mean sidereal time in degrees
// for a given UTC time and observer longitude.
func LocalSiderealTime(t time.Time, lonDeg float64) float64 {
	return NormalizeDegree(GreenwichMeanSiderealTime(t) + lonDeg)
}

// LocalApparentSiderealTime adds the equation of the equinoxes to the local mean sidereal time.
func LocalApparentSiderealTime(t time.Time, lonDeg float64) float64 {
	T := JulianCenturies(JulianEphemerisDate(t))
	dpsi, _ := Nutation(T)
	eps := TrueObliquity(T)
	return NormalizeDegree(LocalSiderealTime(t, lonDeg) + dpsi*math.Cos(degToRad(eps)))
}

// GreenwichMeanSiderealTime calculates GMST in degrees for a given UTC time.
// Uses the IAU 1982 formula based on Julian Date.
func GreenwichMeanSiderealTime(t time.Time) float64 {
	jd := JulianDate(t)
	T := JulianCenturies(jd)

	gmst := 280.46061837 +
		360.98564736629*(jd-J2000) +
		0.000387933*T*T -
		T*T*T/38710000.0

	return NormalizeDegree(gmst)
}

// Ascendant returns the ecliptic longitude rising on the eastern horizon,
// in degrees [0, 360), for the observer at time t.
func Ascendant(t time.Time, obs Observer) float64 {
	T := JulianCenturies(JulianEphemerisDate(t))
	ramc := degToRad(LocalApparentSiderealTime(t, obs.LonDeg))
	eps := degToRad(TrueObliquity(T))
	lat := degToRad(obs.LatDeg)

	asc := math.Atan2(math.Cos(ramc), -(math.Sin(ramc)*math.Cos(eps) + math.Tan(lat)*math.Sin(eps)))
	return NormalizeDegree(radToDeg(asc))
}

// GeocentricPosition returns the observer's position relative to the Earth's
// center in the true equatorial frame of date, in AU.
func GeocentricPosition(obs Observer, t time.Time) Vec3 {
	const (
		flattening  = 1 / 298.257223563
		earthRadius = 6378.137 // km
	)
	lat := degToRad(obs.LatDeg)
	u := math.Atan((1 - flattening) * math.Tan(lat))
	h := obs.ElevationM / (earthRadius * 1000)
	rhoSin := (1-flattening)*math.Sin(u) + h*math.Sin(lat)
	rhoCos := math.Cos(u) + h*math.Cos(lat)

	lst := degToRad(LocalApparentSiderealTime(t, obs.LonDeg))
	scale := earthRadius / AU
	return Vec3{
		X: rhoCos * math.Cos(lst) * scale,
		Y: rhoCos * math.Sin(lst) * scale,
		Z: rhoSin * scale,
	}
}
