// Package astro provides time scales, angle helpers, coordinate frames and the
// small amount of positional astronomy the engine computes itself.
package astro

import (
	"math"
	"time"
)

const (
	// J2000 is the Julian Date of the J2000.0 epoch (2000-01-01T12:00 TT).
	J2000 = 2451545.0

	// DaysPerCentury is the length of a Julian century in days.
	DaysPerCentury = 36525.0

	unixEpochJD = 2440587.5
)

// J2000Time is the J2000.0 epoch as a UTC instant.
var J2000Time = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

// JulianDate calculates the Julian Date for a given time.
func JulianDate(t time.Time) float64 {
	t = t.UTC()

	h := float64(t.Hour())
	min := float64(t.Minute())
	sec := float64(t.Second())
	ns := float64(t.Nanosecond())

	dayFrac := (h + min/60 + sec/3600 + ns/3600e9) / 24.0

	return JulianDay0(t.Year(), t.Month(), t.Day()) + dayFrac
}

// JulianDay0 returns the Julian Date at 0h UT of a Gregorian civil date.
func JulianDay0(year int, month time.Month, day int) float64 {
	y := float64(year)
	m := float64(month)
	d := float64(day)

	// January/February count as months 13/14 of the previous year
	if m <= 2 {
		y--
		m += 12
	}

	// Gregorian calendar correction
	A := math.Floor(y / 100)
	B := 2 - A + math.Floor(A/4)

	return math.Floor(365.25*(y+4716)) +
		math.Floor(30.6001*(m+1)) +
		d + B - 1524.5
}

// JulianCenturies returns the Julian centuries elapsed from J2000.0 to jd.
func JulianCenturies(jd float64) float64 {
	return (jd - J2000) / DaysPerCentury
}

// CivilDate returns the UTC calendar date of t.
func CivilDate(t time.Time) (year int, month time.Month, day int) {
	return t.UTC().Date()
}

// TimeFromJulianDate converts a Julian Date back to a UTC instant.
// Resolution is limited to about a microsecond by float64.
func TimeFromJulianDate(jd float64) time.Time {
	sec := (jd - unixEpochJD) * 86400
	whole := math.Floor(sec)
	ns := math.Round((sec - whole) * 1e9)
	return time.Unix(int64(whole), int64(ns)).UTC()
}

// observedDeltaT holds IERS TT - UT values, seconds at the start of each year.
var observedDeltaT = []struct{ year, dt float64 }{
	{2005, 64.69},
	{2010, 66.07},
	{2015, 67.64},
	{2020, 69.36},
	{2025, 69.10},
}

// deltaT2050 is the Espenak & Meeus value where the 2050..2150 curve begins.
const deltaT2050 = 93.0

// DeltaT returns an estimate of TT - UT in seconds for the given instant.
// Between 2005 and 2025 observed values are interpolated, then a straight
// line runs to meet the 2050 polynomial. Earlier years use the Espenak &
// Meeus polynomials; outside 1900..2150 the long-term parabola is used.
func DeltaT(t time.Time) float64 {
	t = t.UTC()
	y := float64(t.Year()) + (float64(t.YearDay())-0.5)/365.25

	switch {
	case y >= 2005 && y < 2050:
		last := observedDeltaT[len(observedDeltaT)-1]
		if y >= last.year {
			return last.dt + (deltaT2050-last.dt)*(y-last.year)/(2050-last.year)
		}
		for i := 1; i < len(observedDeltaT); i++ {
			lo, hi := observedDeltaT[i-1], observedDeltaT[i]
			if y < hi.year {
				return lo.dt + (hi.dt-lo.dt)*(y-lo.year)/(hi.year-lo.year)
			}
		}
		return last.dt
	case y >= 1986 && y < 2005:
		u := y - 2000
		return 63.86 + 0.3345*u - 0.060374*u*u + 0.0017275*u*u*u +
			0.000651814*u*u*u*u + 0.00002373599*u*u*u*u*u
	case y >= 1961 && y < 1986:
		u := y - 1975
		return 45.45 + 1.067*u - u*u/260 - u*u*u/718
	case y >= 1941 && y < 1961:
		u := y - 1950
		return 29.07 + 0.407*u - u*u/233 + u*u*u/2547
	case y >= 1920 && y < 1941:
		u := y - 1920
		return 21.20 + 0.84493*u - 0.076100*u*u + 0.0020936*u*u*u
	case y >= 1900 && y < 1920:
		u := y - 1900
		return -2.79 + 1.494119*u - 0.0598939*u*u + 0.0061966*u*u*u - 0.000197*u*u*u*u
	case y >= 2050 && y < 2150:
		return -20 + 32*((y-1820)/100)*((y-1820)/100) - 0.5628*(2150-y)
	default:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	}
}

// JulianEphemerisDate returns the Julian Date on the TT scale.
func JulianEphemerisDate(t time.Time) float64 {
	return JulianDate(t) + DeltaT(t)/86400
}
