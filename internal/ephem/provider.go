// Package ephem provides apparent geocentric and topocentric positions of the
// bodies the engine derives chart points from.
package ephem

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/litescript/ndastro/internal/astro"
	engerrors "github.com/litescript/ndastro/internal/errors"
)

// Sample is an apparent ecliptic position of date with its rates of change.
type Sample struct {
	LatDeg    float64 // ecliptic latitude, degrees
	LonDeg    float64 // ecliptic longitude, degrees [0, 360)
	DistAU    float64 // distance from the observer, AU
	SpeedLat  float64 // degrees per day
	SpeedLon  float64 // degrees per day
	SpeedDist float64 // AU per day
}

// Provider defines the interface for ephemeris sources.
type Provider interface {
	// Name returns the provider name for display/logging.
	Name() string

	// ApparentPosition returns the apparent ecliptic position of a body seen
	// by obs at t. Rahu is the mean ascending lunar node; Kethu and the
	// ascendant are not served by providers.
	ApparentPosition(ctx context.Context, body Body, obs astro.Observer, t time.Time) (Sample, error)

	// SunriseSunset returns the first sunrise and sunset of the local day
	// containing the UTC civil date of date.
	SunriseSunset(ctx context.Context, obs astro.Observer, date time.Time) (rise, set time.Time, err error)

	// Ascendant returns the ecliptic longitude rising at obs at t, [0, 360).
	Ascendant(ctx context.Context, obs astro.Observer, t time.Time) (float64, error)

	// Close releases resources held by the provider.
	Close() error
}

// Mode represents which ephemeris source to use.
type Mode int

const (
	ModeAnalytic Mode = iota // Offline series and Keplerian elements (default)
	ModeHorizons             // JPL Horizons web service
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeAnalytic:
		return "analytic"
	case ModeHorizons:
		return "horizons"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode string. The empty string selects ModeAnalytic.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "analytic":
		return ModeAnalytic, nil
	case "horizons":
		return ModeHorizons, nil
	default:
		return ModeAnalytic, engerrors.NewInvalidInput(fmt.Sprintf("unknown ephemeris mode %q", s), map[string]any{"mode": s})
	}
}

// Options configures Open.
type Options struct {
	Mode        Mode
	HorizonsURL string        // defaults to HorizonsAPIURL
	Timeout     time.Duration // HTTP timeout, defaults to RequestTimeout
	HTTPClient  *http.Client  // overrides Timeout when set
	Logger      *zap.Logger
}

// Open constructs the provider selected by opts. The caller owns the returned
// handle and must Close it.
func Open(opts Options) (Provider, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch opts.Mode {
	case ModeAnalytic:
		logger.Debug("opening ephemeris", zap.Stringer("mode", opts.Mode))
		return NewAnalyticProvider(), nil
	case ModeHorizons:
		client := opts.HTTPClient
		if client == nil {
			timeout := opts.Timeout
			if timeout <= 0 {
				timeout = RequestTimeout
			}
			client = &http.Client{Timeout: timeout}
		}
		baseURL := opts.HorizonsURL
		if baseURL == "" {
			baseURL = HorizonsAPIURL
		}
		logger.Debug("opening ephemeris", zap.Stringer("mode", opts.Mode), zap.String("url", baseURL))
		return NewHorizonsProvider(client, baseURL, logger), nil
	default:
		return nil, engerrors.NewInvalidInput(fmt.Sprintf("unsupported ephemeris mode %d", int(opts.Mode)), nil)
	}
}

// speedStep is the half-width of the central difference used for speeds.
const speedStep = 6 * time.Hour

// positionFunc returns an apparent ecliptic position (lon, lat, dist) at t.
type positionFunc func(ctx context.Context, t time.Time) (astro.Spherical, error)

// sampleWithSpeed evaluates f at t and at t±speedStep and derives per-day rates
// by central difference. Longitude differences are taken across the 0/360 seam.
func sampleWithSpeed(ctx context.Context, f positionFunc, t time.Time) (Sample, error) {
	before, err := f(ctx, t.Add(-speedStep))
	if err != nil {
		return Sample{}, err
	}
	at, err := f(ctx, t)
	if err != nil {
		return Sample{}, err
	}
	after, err := f(ctx, t.Add(speedStep))
	if err != nil {
		return Sample{}, err
	}
	return speedSample(before, at, after, 2*speedStep), nil
}

func speedSample(before, at, after astro.Spherical, span time.Duration) Sample {
	days := span.Hours() / 24
	return Sample{
		LatDeg:    at.LatDeg,
		LonDeg:    astro.NormalizeDegree(at.LonDeg),
		DistAU:    at.Dist,
		SpeedLat:  (after.LatDeg - before.LatDeg) / days,
		SpeedLon:  astro.AngleDiff(before.LonDeg, after.LonDeg) / days,
		SpeedDist: (after.Dist - before.Dist) / days,
	}
}

// checkRequest validates the arguments shared by every provider call.
func checkRequest(ctx context.Context, obs astro.Observer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !obs.Valid() {
		return engerrors.NewInvalidInput("observer coordinates out of range",
			map[string]any{"lat": obs.LatDeg, "lon": obs.LonDeg})
	}
	return nil
}

// SunriseStep is the sampling interval for sunrise/sunset searches.
const SunriseStep = 10 * time.Minute

// riseSetFromSamples extracts the first sunrise and sunset from apparent Sun
// RA/Dec samples covering one local day.
func riseSetFromSamples(obs astro.Observer, samples []astro.RADecAtTime) (rise, set time.Time, err error) {
	w, err := astro.RiseSet(obs, samples, astro.SunHorizon)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	switch {
	case w.AlwaysVisible:
		return time.Time{}, time.Time{}, fmt.Errorf("sun does not set at lat %.4f: %w", obs.LatDeg, astro.ErrNoRiseSet)
	case w.NeverVisible:
		return time.Time{}, time.Time{}, fmt.Errorf("sun does not rise at lat %.4f: %w", obs.LatDeg, astro.ErrNoRiseSet)
	case w.Rise.IsZero() || w.Set.IsZero():
		return time.Time{}, time.Time{}, astro.ErrNoRiseSet
	}
	return w.Rise, w.Set, nil
}
