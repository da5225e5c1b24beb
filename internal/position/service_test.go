package position

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/litescript/ndastro/internal/astro"
	"github.com/litescript/ndastro/internal/ephem"
	engerrors "github.com/litescript/ndastro/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	testLat = 12.97
	testLon = 77.59
)

var fixtureTime = time.Date(2023, 12, 31, 18, 30, 0, 0, time.UTC)

// fakeProvider serves canned samples and records every call.
type fakeProvider struct {
	mu        sync.Mutex
	samples   map[ephem.Body]ephem.Sample
	ascendant func(t time.Time) float64
	err       map[ephem.Body]error
	calls     map[ephem.Body]int
	observers []astro.Observer
}

func newFakeProvider() *fakeProvider {
	samples := make(map[ephem.Body]ephem.Sample)
	for i, b := range ephem.KnownBodies() {
		samples[b] = ephem.Sample{LonDeg: float64(30 * i), LatDeg: 1, DistAU: 2, SpeedLon: 0.5}
	}
	samples[ephem.Sun] = ephem.Sample{LatDeg: 0.0006220, LonDeg: 279.8051877358686, DistAU: 0.9833628050249553, SpeedLon: 1.019}
	samples[ephem.Rahu] = ephem.Sample{LatDeg: 0.3, LonDeg: 350.5, DistAU: 0.1, SpeedLon: -0.053, SpeedLat: 0.2}
	return &fakeProvider{
		samples:   samples,
		ascendant: func(t time.Time) float64 { return astro.NormalizeDegree(100 + 360*t.Sub(fixtureTime).Hours()/24) },
		err:       make(map[ephem.Body]error),
		calls:     make(map[ephem.Body]int),
	}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) ApparentPosition(ctx context.Context, body ephem.Body, obs astro.Observer, t time.Time) (ephem.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[body]++
	f.observers = append(f.observers, obs)
	if err := f.err[body]; err != nil {
		return ephem.Sample{}, err
	}
	if body == ephem.Kethu || body == ephem.Ascendant {
		return ephem.Sample{}, engerrors.NewUnknownBody(body.Code())
	}
	return f.samples[body], ctx.Err()
}

func (f *fakeProvider) SunriseSunset(ctx context.Context, obs astro.Observer, date time.Time) (time.Time, time.Time, error) {
	f.mu.Lock()
	f.observers = append(f.observers, obs)
	f.mu.Unlock()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return day.Add(time.Hour), day.Add(12 * time.Hour), nil
}

func (f *fakeProvider) Ascendant(ctx context.Context, obs astro.Observer, t time.Time) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ephem.Ascendant]++
	if err := f.err[ephem.Ascendant]; err != nil {
		return 0, err
	}
	return f.ascendant(t), nil
}

func (f *fakeProvider) Close() error { return nil }

func (f *fakeProvider) callCount(b ephem.Body) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[b]
}

func ptr(v float64) *float64 { return &v }

func TestPosition_TropicalAndSidereal(t *testing.T) {
	svc := New(newFakeProvider())

	tropical, err := svc.Position(context.Background(), ephem.Sun, testLat, testLon, fixtureTime, nil)
	require.NoError(t, err)
	assert.InDelta(t, 279.8051877358686, tropical.LonDeg, 1e-12)

	sidereal, err := svc.Position(context.Background(), ephem.Sun, testLat, testLon, fixtureTime, ptr(24.19166667))
	require.NoError(t, err)
	assert.InDelta(t, 255.61352106586864, sidereal.LonDeg, 1e-9)

	// Only the longitude moves
	assert.Equal(t, tropical.LatDeg, sidereal.LatDeg)
	assert.Equal(t, tropical.DistAU, sidereal.DistAU)
	assert.Equal(t, tropical.SpeedLon, sidereal.SpeedLon)
}

func TestPosition_AyanamsaRoundTrip(t *testing.T) {
	svc := New(newFakeProvider())
	for _, ayan := range []float64{0, 23.8564406708, 24.19166667, 285.0, -3.5} {
		tropical, err := svc.Position(context.Background(), ephem.Sun, testLat, testLon, fixtureTime, nil)
		require.NoError(t, err)
		sidereal, err := svc.Position(context.Background(), ephem.Sun, testLat, testLon, fixtureTime, ptr(ayan))
		require.NoError(t, err)

		assert.GreaterOrEqual(t, sidereal.LonDeg, 0.0)
		assert.Less(t, sidereal.LonDeg, 360.0)
		assert.InDelta(t, tropical.LonDeg, astro.NormalizeDegree(sidereal.LonDeg+ayan), 1e-9, "ayanamsa %v", ayan)
	}
}

func TestPosition_Nodes(t *testing.T) {
	svc := New(newFakeProvider())

	rahu, err := svc.Position(context.Background(), ephem.Rahu, testLat, testLon, fixtureTime, nil)
	require.NoError(t, err)
	kethu, err := svc.Position(context.Background(), ephem.Kethu, testLat, testLon, fixtureTime, nil)
	require.NoError(t, err)

	assert.InDelta(t, 350.5, rahu.LonDeg, 1e-12)
	assert.InDelta(t, 170.5, kethu.LonDeg, 1e-12)
	for _, p := range []Position{rahu, kethu} {
		assert.Zero(t, p.LatDeg)
		assert.Zero(t, p.DistAU)
		assert.Zero(t, p.SpeedLat)
		assert.InDelta(t, -0.053, p.SpeedLon, 1e-12)
	}
}

func TestPosition_Ascendant(t *testing.T) {
	svc := New(newFakeProvider())

	p, err := svc.Position(context.Background(), ephem.Ascendant, testLat, testLon, fixtureTime, ptr(24))
	require.NoError(t, err)
	assert.InDelta(t, 76, p.LonDeg, 1e-9)
	assert.InDelta(t, 360, p.SpeedLon, 1e-6)
	assert.Zero(t, p.LatDeg)
	assert.Zero(t, p.DistAU)

	asc, err := svc.AscendantPosition(context.Background(), testLat, testLon, fixtureTime)
	require.NoError(t, err)
	assert.InDelta(t, 100, asc, 1e-9)
}

func TestPosition_Elevation(t *testing.T) {
	f := newFakeProvider()
	_, err := New(f).Position(context.Background(), ephem.Mars, testLat, testLon, fixtureTime, nil)
	require.NoError(t, err)
	_, err = New(f, WithElevation(0)).Position(context.Background(), ephem.Mars, testLat, testLon, fixtureTime, nil)
	require.NoError(t, err)

	require.Len(t, f.observers, 2)
	assert.Equal(t, astro.Observer{LatDeg: testLat, LonDeg: testLon, ElevationM: DefaultElevationM}, f.observers[0])
	assert.Zero(t, f.observers[1].ElevationM)

	assert.Equal(t, DefaultElevationM, New(f).ElevationM())
	assert.Equal(t, 120.0, New(f, WithElevation(120)).ElevationM())
}

func TestPosition_Errors(t *testing.T) {
	providerErr := errors.New("segment not covered")
	f := newFakeProvider()
	f.err[ephem.Jupiter] = providerErr
	svc := New(f)

	tests := []struct {
		name      string
		body      ephem.Body
		lat, lon  float64
		wantCode  engerrors.Code
		wantCause error
	}{
		{"latitude", ephem.Sun, 91, 0, engerrors.CodeInvalidInput, nil},
		{"longitude", ephem.Sun, 0, -181, engerrors.CodeInvalidInput, nil},
		{"nan", ephem.Sun, math.NaN(), 0, engerrors.CodeInvalidInput, nil},
		{"empty body", ephem.Empty, testLat, testLon, engerrors.CodeUnknownBody, nil},
		{"out of table", ephem.Body(42), testLat, testLon, engerrors.CodeUnknownBody, nil},
		{"provider", ephem.Jupiter, testLat, testLon, engerrors.CodeEphemeris, providerErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Position(context.Background(), tt.body, tt.lat, tt.lon, fixtureTime, nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, engerrors.CodeOf(err))
			if tt.wantCause != nil {
				assert.ErrorIs(t, err, tt.wantCause)
			}
		})
	}
}

func TestPositionsFor_EmptyMeansAllKnownBodies(t *testing.T) {
	svc := New(newFakeProvider())

	got, err := svc.PositionsFor(context.Background(), nil, testLat, testLon, fixtureTime, nil)
	require.NoError(t, err)

	want := ephem.KnownBodies()
	require.Len(t, got, len(want))
	for _, b := range want {
		assert.Contains(t, got, b)
	}

	got, err = svc.PositionsFor(context.Background(), []ephem.Body{}, testLat, testLon, fixtureTime, nil)
	require.NoError(t, err)
	assert.Len(t, got, len(want))
}

func TestPositionsFor_Single(t *testing.T) {
	svc := New(newFakeProvider())

	single, err := svc.Position(context.Background(), ephem.Mars, testLat, testLon, fixtureTime, ptr(24))
	require.NoError(t, err)

	got, err := svc.PositionsFor(context.Background(), []ephem.Body{ephem.Mars}, testLat, testLon, fixtureTime, ptr(24))
	require.NoError(t, err)

	if diff := cmp.Diff(map[ephem.Body]Position{ephem.Mars: single}, got); diff != "" {
		t.Errorf("PositionsFor mismatch (-want +got):\n%s", diff)
	}
}

func TestPositionsFor_MatchesPosition(t *testing.T) {
	svc := New(newFakeProvider(), WithConcurrency(2))
	ayan := ptr(24.19166667)

	got, err := svc.PositionsFor(context.Background(), nil, testLat, testLon, fixtureTime, ayan)
	require.NoError(t, err)

	want := make(map[ephem.Body]Position)
	for _, b := range ephem.KnownBodies() {
		p, err := svc.Position(context.Background(), b, testLat, testLon, fixtureTime, ayan)
		require.NoError(t, err)
		want[b] = p
	}

	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("PositionsFor mismatch (-want +got):\n%s", diff)
	}
}

func TestPositionsFor_NodesShareOneComputation(t *testing.T) {
	f := newFakeProvider()
	svc := New(f)

	got, err := svc.PositionsFor(context.Background(), []ephem.Body{ephem.Rahu, ephem.Kethu, ephem.Rahu}, testLat, testLon, fixtureTime, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 1, f.callCount(ephem.Rahu))
	assert.Zero(t, f.callCount(ephem.Kethu))
	assert.InDelta(t, 180, math.Abs(astro.AngleDiff(got[ephem.Rahu].LonDeg, got[ephem.Kethu].LonDeg)), 1e-9)
}

func TestPositionsFor_Errors(t *testing.T) {
	providerErr := errors.New("connection reset")
	f := newFakeProvider()
	f.err[ephem.Saturn] = providerErr
	svc := New(f)

	got, err := svc.PositionsFor(context.Background(), nil, testLat, testLon, fixtureTime, nil)
	assert.Nil(t, got)
	assert.True(t, engerrors.Is(err, engerrors.CodeEphemeris))
	assert.ErrorIs(t, err, providerErr)

	fresh := newFakeProvider()
	_, err = New(fresh).PositionsFor(context.Background(), []ephem.Body{ephem.Sun, ephem.Empty}, testLat, testLon, fixtureTime, nil)
	assert.True(t, engerrors.Is(err, engerrors.CodeUnknownBody))
	assert.Zero(t, fresh.callCount(ephem.Sun), "validation happens before any provider call")

	_, err = svc.PositionsFor(context.Background(), nil, -95, testLon, fixtureTime, nil)
	assert.True(t, engerrors.Is(err, engerrors.CodeInvalidInput))
}

func TestPositionsFor_Canceled(t *testing.T) {
	svc := New(newFakeProvider())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.PositionsFor(ctx, nil, testLat, testLon, fixtureTime, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSunriseSunset(t *testing.T) {
	f := newFakeProvider()
	svc := New(f, WithElevation(120))

	rise, set, err := svc.SunriseSunset(context.Background(), testLat, testLon, fixtureTime)
	require.NoError(t, err)
	assert.True(t, rise.Before(set))
	assert.Equal(t, 120.0, f.observers[0].ElevationM)

	_, _, err = svc.SunriseSunset(context.Background(), 100, testLon, fixtureTime)
	assert.True(t, engerrors.Is(err, engerrors.CodeInvalidInput))
}

func TestAnalytic_NodesOpposite(t *testing.T) {
	p := ephem.NewAnalyticProvider()
	defer p.Close()
	svc := New(p)

	locations := []struct{ lat, lon float64 }{
		{testLat, testLon},
		{51.5, -0.13},
		{-33.87, 151.21},
		{89.9, 0},
	}
	for _, loc := range locations {
		for _, tm := range []time.Time{
			time.Date(1950, 3, 1, 0, 0, 0, 0, time.UTC),
			fixtureTime,
			time.Date(2040, 11, 15, 6, 0, 0, 0, time.UTC),
		} {
			got, err := svc.PositionsFor(context.Background(), []ephem.Body{ephem.Rahu, ephem.Kethu}, loc.lat, loc.lon, tm, nil)
			require.NoError(t, err)

			diff := math.Abs(astro.AngleDiff(got[ephem.Rahu].LonDeg, got[ephem.Kethu].LonDeg))
			assert.InDelta(t, 180, diff, 0.01)
			for _, b := range []ephem.Body{ephem.Rahu, ephem.Kethu} {
				assert.Zero(t, got[b].LatDeg)
				assert.Zero(t, got[b].DistAU)
			}
		}
	}
}

func TestAnalytic_SunFixture(t *testing.T) {
	svc := New(ephem.NewAnalyticProvider())

	p, err := svc.Position(context.Background(), ephem.Sun, testLat, testLon, fixtureTime, ptr(24.19166667))
	require.NoError(t, err)
	assert.InDelta(t, 255.61352106586864, p.LonDeg, 0.02)
}
