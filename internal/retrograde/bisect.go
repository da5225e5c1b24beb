// Package retrograde classifies apparent motion and bounds retrograde arcs by
// locating sign changes of the longitudinal speed.
package retrograde

import (
	"context"
	"fmt"
	"time"

	engerrors "github.com/litescript/ndastro/internal/errors"
)

// SpeedFunc samples a signed speed at t.
type SpeedFunc func(ctx context.Context, t time.Time) (float64, error)

// negative splits the signal into the two motion states. Zero counts as direct.
func negative(v float64) bool {
	return v < 0
}

// Bracket is an interval whose endpoints lie on opposite sides of a sign change.
type Bracket struct {
	Lo, Hi time.Time
}

// ScanSignChange samples f from `from` in increments of step (negative steps
// search backwards) until the sign differs from the sign at `from`, covering
// at most horizon. It returns the last pair of samples, ordered in time, and
// false when no change occurs inside the horizon.
func ScanSignChange(ctx context.Context, f SpeedFunc, from time.Time, step, horizon time.Duration) (Bracket, bool, error) {
	if step == 0 || horizon <= 0 {
		return Bracket{}, false, engerrors.NewInvalidInput("scan step must be non-zero and horizon positive",
			map[string]any{"step": step.String(), "horizon": horizon.String()})
	}

	v, err := f(ctx, from)
	if err != nil {
		return Bracket{}, false, err
	}
	start := negative(v)

	abs := step
	if abs < 0 {
		abs = -abs
	}

	prev := from
	for covered := time.Duration(0); covered < horizon; {
		if err := ctx.Err(); err != nil {
			return Bracket{}, false, err
		}

		next := abs
		if covered+next > horizon {
			next = horizon - covered
		}
		covered += next
		if step < 0 {
			next = -next
		}
		cur := prev.Add(next)

		v, err := f(ctx, cur)
		if err != nil {
			return Bracket{}, false, err
		}
		if negative(v) != start {
			if step < 0 {
				return Bracket{Lo: cur, Hi: prev}, true, nil
			}
			return Bracket{Lo: prev, Hi: cur}, true, nil
		}
		prev = cur
	}
	return Bracket{}, false, nil
}

// Bisect narrows b until it is no wider than tol or maxIter halvings have
// been made, and returns the midpoint of the final interval. The endpoints of
// b must straddle a sign change of f.
func Bisect(ctx context.Context, f SpeedFunc, b Bracket, tol time.Duration, maxIter int) (time.Time, error) {
	if !b.Lo.Before(b.Hi) {
		return time.Time{}, engerrors.NewInvalidInput("bracket is empty", map[string]any{"lo": b.Lo, "hi": b.Hi})
	}
	if tol <= 0 {
		tol = time.Second
	}

	lo, hi := b.Lo, b.Hi
	vlo, err := f(ctx, lo)
	if err != nil {
		return time.Time{}, err
	}
	vhi, err := f(ctx, hi)
	if err != nil {
		return time.Time{}, err
	}
	if negative(vlo) == negative(vhi) {
		return time.Time{}, engerrors.NewInvalidInput(
			fmt.Sprintf("no sign change between %s and %s", lo.Format(time.RFC3339), hi.Format(time.RFC3339)),
			map[string]any{"lo_speed": vlo, "hi_speed": vhi})
	}
	loNeg := negative(vlo)

	for i := 0; i < maxIter && hi.Sub(lo) > tol; i++ {
		if err := ctx.Err(); err != nil {
			return time.Time{}, err
		}

		mid := lo.Add(hi.Sub(lo) / 2)
		v, err := f(ctx, mid)
		if err != nil {
			return time.Time{}, err
		}
		if negative(v) == loNeg {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo.Add(hi.Sub(lo) / 2), nil
}
