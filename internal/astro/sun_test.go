package astro

import (
	"math"
	"testing"
	"time"
)

func TestSunPosition(t *testing.T) {
	tests := []struct {
		name   string
		time   time.Time
		wantRA float64
		wantDe float64
		tolRA  float64
		tolDe  float64
	}{
		{
			name:   "March equinox 2024",
			time:   time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC),
			wantRA: 0,
			wantDe: 0,
			tolRA:  0.1,
			tolDe:  0.05,
		},
		{
			name:   "June solstice 2024",
			time:   time.Date(2024, 6, 20, 20, 51, 0, 0, time.UTC),
			wantRA: 90,
			wantDe: 23.44,
			tolRA:  0.1,
			tolDe:  0.02,
		},
		{
			name:   "December solstice 2024",
			time:   time.Date(2024, 12, 21, 9, 20, 0, 0, time.UTC),
			wantRA: 270,
			wantDe: -23.44,
			tolRA:  0.1,
			tolDe:  0.02,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ra, dec := SunPosition(tt.time)
			if math.Abs(AngleDiff(ra, tt.wantRA)) > tt.tolRA {
				t.Errorf("RA = %v, want %v ± %v", ra, tt.wantRA, tt.tolRA)
			}
			if math.Abs(dec-tt.wantDe) > tt.tolDe {
				t.Errorf("Dec = %v, want %v ± %v", dec, tt.wantDe, tt.tolDe)
			}
		})
	}
}

func TestSunEcliptic(t *testing.T) {
	// Apparent longitude for Bengaluru chart at 2023-12-31T18:30Z is 279.805°
	got := SunEcliptic(time.Date(2023, 12, 31, 18, 30, 0, 0, time.UTC))
	if math.Abs(got.LonDeg-279.8051877358686) > 0.02 {
		t.Errorf("LonDeg = %v", got.LonDeg)
	}
	if math.Abs(got.Dist-0.9833628050249553) > 0.0002 {
		t.Errorf("Dist = %v", got.Dist)
	}
	if got.LatDeg != 0 {
		t.Errorf("LatDeg = %v", got.LatDeg)
	}
}

func TestSunEcliptic_AlwaysDirect(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := SunEcliptic(start).LonDeg
	for d := 1; d <= 366; d++ {
		cur := SunEcliptic(start.AddDate(0, 0, d)).LonDeg
		if step := AngleDiff(prev, cur); step < 0.9 || step > 1.1 {
			t.Fatalf("day %d: daily motion %v°", d, step)
		}
		prev = cur
	}
}
