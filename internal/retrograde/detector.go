package retrograde

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/litescript/ndastro/internal/ephem"
	engerrors "github.com/litescript/ndastro/internal/errors"
	"github.com/litescript/ndastro/internal/position"
)

// Default search parameters.
const (
	DefaultStep          = 24 * time.Hour
	DefaultHorizon       = 400 * 24 * time.Hour
	DefaultTolerance     = time.Hour
	DefaultMaxIterations = 64
)

// Motion is the apparent direction of travel along the ecliptic.
type Motion int

const (
	Direct Motion = iota
	Retrograde
)

// String returns the motion name.
func (m Motion) String() string {
	switch m {
	case Direct:
		return "direct"
	case Retrograde:
		return "retrograde"
	default:
		return "unknown"
	}
}

// MotionOf classifies a longitudinal speed.
func MotionOf(speedLon float64) Motion {
	if negative(speedLon) {
		return Retrograde
	}
	return Direct
}

// Window is the result of a retrograde query. Start and End are zero unless
// Retrograde is set, in which case Start <= query <= End.
type Window struct {
	Retrograde bool
	Start      time.Time
	End        time.Time
}

// Motion returns the motion state the window describes.
func (w Window) Motion() Motion {
	if w.Retrograde {
		return Retrograde
	}
	return Direct
}

// Duration returns the length of the retrograde arc, or 0.
func (w Window) Duration() time.Duration {
	if !w.Retrograde {
		return 0
	}
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside a retrograde window.
func (w Window) Contains(t time.Time) bool {
	return w.Retrograde && !t.Before(w.Start) && !t.After(w.End)
}

// PositionSource provides the longitudinal speed signal.
// *position.Service satisfies it.
type PositionSource interface {
	Position(ctx context.Context, body ephem.Body, lat, lon float64, t time.Time, ayanamsa *float64) (position.Position, error)
}

// Detector finds retrograde windows. It is safe for concurrent use.
type Detector struct {
	src     PositionSource
	step    time.Duration
	horizon time.Duration
	tol     time.Duration
	maxIter int
	logger  *zap.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithStep sets the coarse sampling step. Non-positive values are ignored.
func WithStep(d time.Duration) Option {
	return func(det *Detector) {
		if d > 0 {
			det.step = d
		}
	}
}

// WithHorizon sets how far the scan reaches on each side of the query.
// Non-positive values are ignored.
func WithHorizon(d time.Duration) Option {
	return func(det *Detector) {
		if d > 0 {
			det.horizon = d
		}
	}
}

// WithTolerance sets the bisection tolerance. Non-positive values are ignored.
func WithTolerance(d time.Duration) Option {
	return func(det *Detector) {
		if d > 0 {
			det.tol = d
		}
	}
}

// WithMaxIterations caps the bisection halvings per boundary.
// Non-positive values are ignored.
func WithMaxIterations(n int) Option {
	return func(det *Detector) {
		if n > 0 {
			det.maxIter = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(det *Detector) {
		if l != nil {
			det.logger = l
		}
	}
}

// New creates a Detector sampling src.
func New(src PositionSource, opts ...Option) *Detector {
	d := &Detector{
		src:     src,
		step:    DefaultStep,
		horizon: DefaultHorizon,
		tol:     DefaultTolerance,
		maxIter: DefaultMaxIterations,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// speed returns the tropical longitudinal speed signal of body.
func (d *Detector) speed(body ephem.Body, lat, lon float64) SpeedFunc {
	return func(ctx context.Context, t time.Time) (float64, error) {
		p, err := d.src.Position(ctx, body, lat, lon, t, nil)
		if err != nil {
			return 0, err
		}
		return p.SpeedLon, nil
	}
}

// checkBody rejects points that have no orbital motion to classify.
func checkBody(body ephem.Body) error {
	if !body.Valid() || body == ephem.Empty || body == ephem.Ascendant {
		return engerrors.NewInvalidInput("retrograde motion is not defined for "+body.String(),
			map[string]any{"body": body.String()})
	}
	return nil
}

// MotionAt classifies the motion of body at t. The Sun and Moon are always
// direct.
func (d *Detector) MotionAt(ctx context.Context, t time.Time, body ephem.Body, lat, lon float64) (Motion, error) {
	if err := checkBody(body); err != nil {
		return Direct, err
	}
	if body.IsLuminary() {
		return Direct, nil
	}
	v, err := d.speed(body, lat, lon)(ctx, t)
	if err != nil {
		return Direct, err
	}
	return MotionOf(v), nil
}

// Detect reports whether body is retrograde at t as seen from (lat, lon) and,
// if so, the instants at which the retrograde arc began and ends. A body
// whose speed does not change sign within the horizon on either side is
// reported as not retrograde.
func (d *Detector) Detect(ctx context.Context, t time.Time, body ephem.Body, lat, lon float64) (Window, error) {
	if err := checkBody(body); err != nil {
		return Window{}, err
	}
	if body.IsLuminary() {
		return Window{}, nil
	}

	f := d.speed(body, lat, lon)
	v, err := f(ctx, t)
	if err != nil {
		return Window{}, err
	}
	if !negative(v) {
		return Window{}, nil
	}

	before, ok, err := ScanSignChange(ctx, f, t, -d.step, d.horizon)
	if err != nil {
		return Window{}, err
	}
	if !ok {
		d.logger.Debug("no station before query inside horizon",
			zap.String("body", body.Code()), zap.Time("time", t), zap.Duration("horizon", d.horizon))
		return Window{}, nil
	}
	after, ok, err := ScanSignChange(ctx, f, t, d.step, d.horizon)
	if err != nil {
		return Window{}, err
	}
	if !ok {
		d.logger.Debug("no station after query inside horizon",
			zap.String("body", body.Code()), zap.Time("time", t), zap.Duration("horizon", d.horizon))
		return Window{}, nil
	}

	start, err := Bisect(ctx, f, before, d.tol, d.maxIter)
	if err != nil {
		return Window{}, err
	}
	end, err := Bisect(ctx, f, after, d.tol, d.maxIter)
	if err != nil {
		return Window{}, err
	}

	d.logger.Debug("retrograde window",
		zap.String("body", body.Code()),
		zap.Time("start", start),
		zap.Time("end", end))
	return Window{Retrograde: true, Start: start, End: end}, nil
}
