package stats_test

import (
	"errors"
	"math"
	"testing"

	"github.com/gvrocha/rocksolid-fits/internal/stats"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeBasicMoments(t *testing.T) {
	s, err := stats.Compute([]float64{1, 2, 3, 4, 5}, 100)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if !almostEqual(s.Mean, 3) {
		t.Errorf("mean = %v", s.Mean)
	}
	if !almostEqual(s.Median, 3) {
		t.Errorf("median = %v", s.Median)
	}
	if !almostEqual(s.Std, math.Sqrt(2)) {
		t.Errorf("std = %v, want population std sqrt(2)", s.Std)
	}
	if s.Min != 1 || s.Max != 5 {
		t.Errorf("min/max = %v/%v", s.Min, s.Max)
	}
	if s.TotalPixels != 5 {
		t.Errorf("total pixels = %d", s.TotalPixels)
	}
}

func TestComputePercentileInterpolation(t *testing.T) {
	// Four values: rank 25 falls at index 0.75, interpolated 10 + 0.75*10.
	s, err := stats.Compute([]float64{10, 20, 30, 40}, 100)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if got := s.Percentiles[25]; !almostEqual(got, 17.5) {
		t.Errorf("p25 = %v, want 17.5", got)
	}
	if got := s.Percentiles[50]; !almostEqual(got, 25) {
		t.Errorf("p50 = %v, want 25", got)
	}
	if got := s.Percentiles[95]; !almostEqual(got, 38.5) {
		t.Errorf("p95 = %v, want 38.5", got)
	}
	if len(s.Percentiles) != 19 {
		t.Errorf("percentile ranks = %d, want 19", len(s.Percentiles))
	}
}

func TestComputeSaturationCounts(t *testing.T) {
	s, err := stats.Compute([]float64{0, 0, 100, 65535, 65535, 65535}, 65535)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if s.SaturatedLow != 2 {
		t.Errorf("saturated low = %d, want 2", s.SaturatedLow)
	}
	if s.SaturatedHigh != 3 {
		t.Errorf("saturated high = %d, want 3", s.SaturatedHigh)
	}
	if s.SaturationThreshold != 65535 {
		t.Errorf("threshold = %v", s.SaturationThreshold)
	}
}

func TestComputeSinglePixel(t *testing.T) {
	s, err := stats.Compute([]float64{42}, 100)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if s.Median != 42 || s.Percentiles[5] != 42 || s.Percentiles[95] != 42 {
		t.Errorf("single-pixel summary = %+v", s)
	}
	if s.Std != 0 {
		t.Errorf("std = %v, want 0", s.Std)
	}
}

func TestComputeEmpty(t *testing.T) {
	if _, err := stats.Compute(nil, 100); !errors.Is(err, stats.ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}
}
