package ayanamsa

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrecessionRateFactor_AtJ2000(t *testing.T) {
	assert.InDelta(t, 1.0, PrecessionRateFactor(2000, time.January, 1), 0.001)
	assert.Equal(t, 1.0, rateFactor(0))
}

func TestPrecessionRateFactor_GrowsAwayFromEpoch(t *testing.T) {
	prev := PrecessionRateFactor(2000, time.January, 2)
	for year := 2001; year <= 2100; year++ {
		b6 := PrecessionRateFactor(year, time.January, 2)
		assert.Greater(t, b6, prev, "year %d", year)
		prev = b6
	}

	prev = PrecessionRateFactor(2000, time.January, 1)
	for year := 1999; year >= 1900; year-- {
		b6 := PrecessionRateFactor(year, time.January, 1)
		assert.Greater(t, b6, prev, "year %d", year)
		assert.Positive(t, b6)
		prev = b6
	}
}

func TestPrecessionRateFactor_Even(t *testing.T) {
	for _, T := range []float64{0.1, 0.5, 1, 3.7, 20} {
		assert.InDelta(t, rateFactor(T), rateFactor(-T), 1e-15)
	}
}

func TestElapsedCenturies(t *testing.T) {
	assert.InDelta(t, -0.5/36525, ElapsedCenturies(2000, time.January, 1), 1e-15)
	assert.InDelta(t, 0.2602190280629706, ElapsedCenturies(2026, time.January, 9), 1e-12)
	assert.InDelta(t, -0.9999863107460644, ElapsedCenturies(1900, time.January, 1), 1e-12)
}
