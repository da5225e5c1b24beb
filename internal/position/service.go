// Package position derives tropical and sidereal chart positions from an
// ephemeris provider.
package position

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/litescript/ndastro/internal/astro"
	"github.com/litescript/ndastro/internal/ephem"
	engerrors "github.com/litescript/ndastro/internal/errors"
)

// DefaultElevationM is the nominal observer elevation used when none is set.
const DefaultElevationM float64 = 914

// ascendantSpeedStep is the half-width of the difference used for the
// ascendant's rate. The ascendant turns about 360° a day, so the positional
// step used by providers is far too wide.
const ascendantSpeedStep = time.Minute

// Position is an apparent ecliptic position with its daily rates.
type Position struct {
	LatDeg    float64 `json:"latitude"`
	LonDeg    float64 `json:"longitude"`
	DistAU    float64 `json:"distance"`
	SpeedLat  float64 `json:"speed_latitude"`
	SpeedLon  float64 `json:"speed_longitude"`
	SpeedDist float64 `json:"speed_distance"`
}

// Retrograde reports whether the longitude is decreasing.
func (p Position) Retrograde() bool {
	return p.SpeedLon < 0
}

func fromSample(s ephem.Sample) Position {
	return Position{
		LatDeg:    s.LatDeg,
		LonDeg:    s.LonDeg,
		DistAU:    s.DistAU,
		SpeedLat:  s.SpeedLat,
		SpeedLon:  s.SpeedLon,
		SpeedDist: s.SpeedDist,
	}
}

// sidereal subtracts an optional ayanamsa from the longitude.
func (p Position) sidereal(ayanamsa *float64) Position {
	if ayanamsa != nil {
		p.LonDeg -= *ayanamsa
	}
	p.LonDeg = astro.NormalizeDegree(p.LonDeg)
	return p
}

// Service computes positions for observers on the Earth's surface.
// It is safe for concurrent use.
type Service struct {
	provider    ephem.Provider
	elevationM  float64
	concurrency int
	logger      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithElevation sets the observer elevation in meters.
func WithElevation(m float64) Option {
	return func(s *Service) { s.elevationM = m }
}

// WithConcurrency bounds the number of provider calls PositionsFor runs at
// once. Zero or less means no limit.
func WithConcurrency(n int) Option {
	return func(s *Service) { s.concurrency = n }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service backed by provider. The caller keeps ownership of
// provider and closes it.
func New(provider ephem.Provider, opts ...Option) *Service {
	s := &Service{
		provider:   provider,
		elevationM: DefaultElevationM,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the underlying ephemeris provider.
func (s *Service) Provider() ephem.Provider {
	return s.provider
}

// ElevationM returns the observer elevation in meters.
func (s *Service) ElevationM() float64 {
	return s.elevationM
}

// observer validates the coordinates and builds the provider observer.
func (s *Service) observer(lat, lon float64) (astro.Observer, error) {
	obs := astro.Observer{LatDeg: lat, LonDeg: lon, ElevationM: s.elevationM}
	if !obs.Valid() {
		return astro.Observer{}, engerrors.NewInvalidInput("latitude must be in [-90, 90] and longitude in [-180, 180]",
			map[string]any{"lat": lat, "lon": lon})
	}
	return obs, nil
}

// wrap tags a provider failure. Errors that already carry a code pass through.
func (s *Service) wrap(err error) error {
	var coded *engerrors.Error
	if err == nil || errors.As(err, &coded) {
		return err
	}
	return engerrors.NewEphemeris(s.provider.Name(), err)
}

func checkBody(body ephem.Body) error {
	if !body.Valid() || body == ephem.Empty {
		return engerrors.NewUnknownBody(body.String())
	}
	return nil
}

// Position returns the position of body seen from (lat, lon) at t. When
// ayanamsa is non-nil the longitude is sidereal, otherwise tropical; both are
// normalized to [0, 360). Speeds are never adjusted.
func (s *Service) Position(ctx context.Context, body ephem.Body, lat, lon float64, t time.Time, ayanamsa *float64) (Position, error) {
	if err := checkBody(body); err != nil {
		return Position{}, err
	}
	obs, err := s.observer(lat, lon)
	if err != nil {
		return Position{}, err
	}

	var p Position
	switch body {
	case ephem.Ascendant:
		p, err = s.ascendant(ctx, obs, t)
	case ephem.Rahu, ephem.Kethu:
		var node Position
		node, err = s.node(ctx, obs, t)
		p = nodePosition(body, node)
	default:
		var sample ephem.Sample
		sample, err = s.provider.ApparentPosition(ctx, body, obs, t)
		p = fromSample(sample)
	}
	if err != nil {
		return Position{}, s.wrap(err)
	}

	s.logger.Debug("position",
		zap.String("body", body.Code()),
		zap.Time("time", t),
		zap.Float64("lon", p.LonDeg),
		zap.Bool("sidereal", ayanamsa != nil))
	return p.sidereal(ayanamsa), nil
}

// node returns the ascending node position, with latitude and distance fixed at 0.
func (s *Service) node(ctx context.Context, obs astro.Observer, t time.Time) (Position, error) {
	sample, err := s.provider.ApparentPosition(ctx, ephem.Rahu, obs, t)
	if err != nil {
		return Position{}, err
	}
	return Position{LonDeg: sample.LonDeg, SpeedLon: sample.SpeedLon}, nil
}

// nodePosition derives Rahu or Kethu from the ascending node.
func nodePosition(body ephem.Body, node Position) Position {
	if body == ephem.Kethu {
		node.LonDeg = astro.NormalizeDegree(node.LonDeg + 180)
	}
	return node
}

// ascendant returns the ascendant with its rate, latitude and distance 0.
func (s *Service) ascendant(ctx context.Context, obs astro.Observer, t time.Time) (Position, error) {
	lon, err := s.provider.Ascendant(ctx, obs, t)
	if err != nil {
		return Position{}, err
	}
	before, err := s.provider.Ascendant(ctx, obs, t.Add(-ascendantSpeedStep))
	if err != nil {
		return Position{}, err
	}
	after, err := s.provider.Ascendant(ctx, obs, t.Add(ascendantSpeedStep))
	if err != nil {
		return Position{}, err
	}
	days := (2 * ascendantSpeedStep).Hours() / 24
	return Position{
		LonDeg:   astro.NormalizeDegree(lon),
		SpeedLon: astro.AngleDiff(before, after) / days,
	}, nil
}

// PositionsFor returns the positions of bodies seen from (lat, lon) at t.
// An empty list selects every known body. Provider calls run concurrently
// and the first failure cancels the rest. Rahu and Kethu come from one node
// computation.
func (s *Service) PositionsFor(ctx context.Context, bodies []ephem.Body, lat, lon float64, t time.Time, ayanamsa *float64) (map[ephem.Body]Position, error) {
	if len(bodies) == 0 {
		bodies = ephem.KnownBodies()
	}
	for _, b := range bodies {
		if err := checkBody(b); err != nil {
			return nil, err
		}
	}
	obs, err := s.observer(lat, lon)
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		out      = make(map[ephem.Body]Position, len(bodies))
		seen     = make(map[ephem.Body]bool, len(bodies))
		node     Position
		needNode bool
	)
	eg, egCtx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		eg.SetLimit(s.concurrency)
	}

	for _, b := range bodies {
		if b.IsNode() {
			needNode = true
			continue
		}
		if seen[b] {
			continue
		}
		seen[b] = true

		body := b
		eg.Go(func() error {
			var (
				p   Position
				err error
			)
			if body == ephem.Ascendant {
				p, err = s.ascendant(egCtx, obs, t)
			} else {
				var sample ephem.Sample
				sample, err = s.provider.ApparentPosition(egCtx, body, obs, t)
				p = fromSample(sample)
			}
			if err != nil {
				return s.wrap(err)
			}
			mu.Lock()
			out[body] = p
			mu.Unlock()
			return nil
		})
	}
	if needNode {
		eg.Go(func() error {
			p, err := s.node(egCtx, obs, t)
			if err != nil {
				return s.wrap(err)
			}
			node = p
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for _, b := range bodies {
		if b.IsNode() {
			out[b] = nodePosition(b, node)
		}
	}
	for b, p := range out {
		out[b] = p.sidereal(ayanamsa)
	}

	s.logger.Debug("positions",
		zap.Int("bodies", len(out)),
		zap.Time("time", t),
		zap.Bool("sidereal", ayanamsa != nil))
	return out, nil
}

// AscendantPosition returns the ecliptic longitude rising at (lat, lon) at t,
// normalized to [0, 360).
func (s *Service) AscendantPosition(ctx context.Context, lat, lon float64, t time.Time) (float64, error) {
	obs, err := s.observer(lat, lon)
	if err != nil {
		return 0, err
	}
	asc, err := s.provider.Ascendant(ctx, obs, t)
	if err != nil {
		return 0, s.wrap(err)
	}
	return astro.NormalizeDegree(asc), nil
}

// SunriseSunset returns the sunrise and sunset of the local day containing
// the UTC date of t, for an observer at the service elevation.
func (s *Service) SunriseSunset(ctx context.Context, lat, lon float64, t time.Time) (rise, set time.Time, err error) {
	obs, err := s.observer(lat, lon)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	rise, set, err = s.provider.SunriseSunset(ctx, obs, t)
	if err != nil {
		return time.Time{}, time.Time{}, s.wrap(err)
	}
	return rise, set, nil
}
