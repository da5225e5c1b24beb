package astro

import (
	"math"
	"testing"
)

func TestNormalizeDegree(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{-1, 359},
		{725.5, 5.5},
		{-450, 270},
		{359.999, 359.999},
		{-1e-15, 0},
		{1080, 0},
	}

	for _, tt := range tests {
		got := NormalizeDegree(tt.in)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeDegree(%v) = %v, want %v", tt.in, got, tt.want)
		}
		if got < 0 || got >= 360 {
			t.Errorf("NormalizeDegree(%v) = %v out of [0, 360)", tt.in, got)
		}
		if again := NormalizeDegree(got); again != got {
			t.Errorf("NormalizeDegree not idempotent for %v: %v -> %v", tt.in, got, again)
		}
	}
}

func TestAngleDiff(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{10, 20, 10},
		{20, 10, -10},
		{350, 10, 20},
		{10, 350, -20},
		{0, 180, 180},
		{180, 0, 180},
		{0, 720, 0},
	}

	for _, tt := range tests {
		if got := AngleDiff(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngleDiff(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFormatDMS(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0°00'00\""},
		{255.61352106586864, "255°36'49\""},
		{23.8564406708, "23°51'23\""},
		{-0.5, "-0°30'00\""},
		{29.99999, "30°00'00\""},
	}

	for _, tt := range tests {
		if got := FormatDMS(tt.in); got != tt.want {
			t.Errorf("FormatDMS(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDegRadConversion(t *testing.T) {
	if got := DegToRad(180); math.Abs(got-math.Pi) > 1e-15 {
		t.Errorf("DegToRad(180) = %v", got)
	}
	if got := RadToDeg(math.Pi / 2); math.Abs(got-90) > 1e-12 {
		t.Errorf("RadToDeg(pi/2) = %v", got)
	}
}
