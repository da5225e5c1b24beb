package astro

import (
	"errors"
	"math"
	"time"
)

// RADecAtTime represents an RA/Dec position at a specific time.
type RADecAtTime struct {
	Time   time.Time
	RAdeg  float64
	DecDeg float64
}

// VisibilityWindow represents a rise-transit-set cycle for an object.
type VisibilityWindow struct {
	Rise          time.Time // Time object rises above the horizon altitude
	Transit       time.Time // Sample time of highest elevation
	Set           time.Time // Time object sets below the horizon altitude
	MaxElevation  float64   // Peak elevation in degrees
	AlwaysVisible bool      // Object never sets (circumpolar)
	NeverVisible  bool      // Object never rises
}

// SunHorizon is the standard altitude of the Sun's center at rise/set
// (refraction 34' plus semi-diameter 16').
const SunHorizon = -0.8333

// Errors for visibility calculations.
var (
	ErrInsufficientSamples = errors.New("insufficient samples for visibility calculation")
	ErrNoRiseSet           = errors.New("no rise or set in sampled range")
)

// RiseSet computes rise, transit, and set times for an object given RA/Dec samples
// and the altitude (degrees) that counts as the horizon.
// The samples must be in chronological order; crossings are linearly interpolated.
func RiseSet(obs Observer, samples []RADecAtTime, horizonDeg float64) (VisibilityWindow, error) {
	if len(samples) < 3 {
		return VisibilityWindow{}, ErrInsufficientSamples
	}

	type elSample struct {
		t     time.Time
		elDeg float64
	}
	elSamples := make([]elSample, len(samples))

	minEl := 90.0
	maxEl := -90.0
	maxElIdx := 0

	for i, s := range samples {
		el := CurrentElevation(obs, s.RAdeg, s.DecDeg, s.Time)
		elSamples[i] = elSample{t: s.Time, elDeg: el}

		if el < minEl {
			minEl = el
		}
		if el > maxEl {
			maxEl = el
			maxElIdx = i
		}
	}

	if minEl > horizonDeg {
		return VisibilityWindow{
			Transit:       elSamples[maxElIdx].t,
			MaxElevation:  maxEl,
			AlwaysVisible: true,
		}, nil
	}
	if maxEl < horizonDeg {
		return VisibilityWindow{
			MaxElevation: maxEl,
			NeverVisible: true,
		}, nil
	}

	w := VisibilityWindow{
		Transit:      elSamples[maxElIdx].t,
		MaxElevation: maxEl,
	}

	for i := 1; i < len(elSamples); i++ {
		prev := elSamples[i-1]
		curr := elSamples[i]

		if w.Rise.IsZero() && prev.elDeg <= horizonDeg && curr.elDeg > horizonDeg {
			w.Rise = interpolateCrossing(prev.t, curr.t, prev.elDeg, curr.elDeg, horizonDeg)
		}
		if w.Set.IsZero() && prev.elDeg > horizonDeg && curr.elDeg <= horizonDeg {
			w.Set = interpolateCrossing(prev.t, curr.t, prev.elDeg, curr.elDeg, horizonDeg)
		}
	}

	if w.Rise.IsZero() && w.Set.IsZero() {
		return w, ErrNoRiseSet
	}
	return w, nil
}

// interpolateCrossing finds the time when elevation crosses a threshold.
func interpolateCrossing(t1, t2 time.Time, el1, el2, threshold float64) time.Time {
	if math.Abs(el2-el1) < 0.0001 {
		return t1
	}

	fraction := (threshold - el1) / (el2 - el1)
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}

	dt := t2.Sub(t1)
	return t1.Add(time.Duration(float64(dt) * fraction))
}

// CurrentElevation computes the elevation of an object at a given time.
func CurrentElevation(obs Observer, raDeg, decDeg float64, t time.Time) float64 {
	coord := SkyCoord{RAdeg: raDeg, DecDeg: decDeg}
	horiz := EquatorialToHorizontal(coord, obs, t)
	return horiz.ElDeg
}

// SampleDay returns evenly spaced sample times covering the local mean solar
// day that corresponds to the UTC civil date of date at longitude lonDeg.
func SampleDay(date time.Time, lonDeg float64, step time.Duration) []time.Time {
	y, m, d := CivilDate(date)
	offset := time.Duration(-lonDeg / 15 * float64(time.Hour))
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(offset)
	end := start.Add(24 * time.Hour)

	var out []time.Time
	for t := start; !t.After(end); t = t.Add(step) {
		out = append(out, t)
	}
	return out
}
