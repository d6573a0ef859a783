package densitometry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// thresholdSigma is the noise margin above the lane background. Pixels must
// exceed background + thresholdSigma * stddev to count as band signal.
const thresholdSigma = 0.2

// LaneIntensity integrates the band signal of the vertical slice
// [start, end). The background is the median of the lane's own pixels, so a
// brightness gradient across the blot cannot bias distant lanes. Pixels
// strictly above background + 0.2 sigma contribute their residual above
// background; a lane where nothing clears the threshold scores 0.
func LaneIntensity(r Raster, start, end int) float64 {
	vals := r.LaneValues(start, end)
	if len(vals) == 0 {
		return 0
	}

	background := median(vals)
	noise := stat.PopStdDev(vals, nil)
	threshold := background + thresholdSigma*noise

	var sum float64
	masked := false
	for _, v := range vals {
		if v > threshold {
			masked = true
			if residual := v - background; residual > 0 {
				sum += residual
			}
		}
	}
	if !masked {
		return 0
	}
	return sum
}

// Intensities computes the lane intensity for every interval of the ordered
// boundary sequence. len(boundaries)-1 values are returned; degenerate
// intervals score 0.
func Intensities(r Raster, boundaries []int) []float64 {
	if len(boundaries) < 2 {
		return nil
	}
	out := make([]float64, 0, len(boundaries)-1)
	for i := 0; i < len(boundaries)-1; i++ {
		out = append(out, LaneIntensity(r, boundaries[i], boundaries[i+1]))
	}
	return out
}

// median returns the middle value of the set, averaging the two central
// values for even counts (numpy-style).
func median(vals []float64) float64 {
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
