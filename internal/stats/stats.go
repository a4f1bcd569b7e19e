package stats

import (
	"errors"
	"math"
	"sort"
)

// ErrEmpty is returned when a summary is requested for zero pixels.
var ErrEmpty = errors.New("stats: empty pixel data")

// percentileRanks are the fixed ranks computed for every frame.
var percentileRanks = []int{5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60, 65, 70, 75, 80, 85, 90, 95}

// Summary holds the per-frame pixel statistics stored with each catalog entry.
type Summary struct {
	Mean        float64
	Median      float64
	Std         float64
	Min         float64
	Max         float64
	TotalPixels int

	// Percentiles maps rank (5..95 step 5) to the interpolated pixel value.
	Percentiles map[int]float64

	// SaturationThreshold is the ceiling used for the high saturation count.
	SaturationThreshold float64
	// SaturatedLow counts pixels equal to the frame minimum; SaturatedHigh
	// counts pixels at or above the saturation threshold.
	SaturatedLow  int
	SaturatedHigh int
}

// Compute summarizes a frame's pixels against a saturation threshold. The
// input slice is not modified.
func Compute(pixels []float64, saturationThreshold float64) (*Summary, error) {
	n := len(pixels)
	if n == 0 {
		return nil, ErrEmpty
	}

	sorted := make([]float64, n)
	copy(sorted, pixels)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	variance := 0.0
	for _, v := range sorted {
		d := v - mean
		variance += d * d
	}

	s := &Summary{
		Mean:                mean,
		Median:              percentileSorted(sorted, 50),
		Std:                 math.Sqrt(variance / float64(n)),
		Min:                 sorted[0],
		Max:                 sorted[n-1],
		TotalPixels:         n,
		Percentiles:         make(map[int]float64, len(percentileRanks)),
		SaturationThreshold: saturationThreshold,
	}
	for _, rank := range percentileRanks {
		s.Percentiles[rank] = percentileSorted(sorted, float64(rank))
	}

	for _, v := range sorted {
		if v == s.Min {
			s.SaturatedLow++
		}
		if v >= saturationThreshold {
			s.SaturatedHigh++
		}
	}
	return s, nil
}

// percentileSorted computes a percentile over an ascending slice with linear
// interpolation between the two nearest ranks.
func percentileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
