// Package lane partitions an extracted region's width into ordered,
// non-overlapping lane intervals.
package lane

import (
	"math"
	"sort"
)

// regenerateWidthTolerance is the relative width change beyond which manual
// separator positions are discarded and regenerated.
const regenerateWidthTolerance = 0.05

// Count returns the number of lanes a region is divided into: twice the
// replicate count in equal-N mode (control and treatment halves share one
// region), the replicate count otherwise.
func Count(replicates int, equalN bool) int {
	if replicates < 1 {
		replicates = 1
	}
	if equalN {
		return replicates * 2
	}
	return replicates
}

// ExpectedSeparators returns how many separators a region should carry for
// the given settings: 2R-1 in equal-N mode, R-1 otherwise.
func ExpectedSeparators(replicates int, equalN bool) int {
	return Count(replicates, equalN) - 1
}

// Boundaries computes the ordered lane boundaries for a region of the given
// pixel width. When separators are supplied they are sorted and bracketed
// with 0 and width; otherwise the width is divided evenly into
// Count(replicates, equalN) sections with integer truncation.
//
// The result always starts at 0, ends at width, and is non-decreasing.
// Zero-width lanes are permitted; they simply score zero intensity.
func Boundaries(width, replicates int, equalN bool, separators []int) []int {
	if width < 0 {
		width = 0
	}

	if len(separators) > 0 {
		sorted := make([]int, len(separators))
		copy(sorted, separators)
		sort.Ints(sorted)

		b := make([]int, 0, len(sorted)+2)
		b = append(b, 0)
		b = append(b, sorted...)
		b = append(b, width)
		return clampAscending(b, width)
	}

	count := Count(replicates, equalN)
	b := make([]int, count+1)
	for i := 0; i <= count; i++ {
		b[i] = width * i / count
	}
	return b
}

// clampAscending clamps every boundary into [0, width] and removes
// inversions so each lane satisfies end >= start.
func clampAscending(b []int, width int) []int {
	for i := range b {
		if b[i] < 0 {
			b[i] = 0
		}
		if b[i] > width {
			b[i] = width
		}
		if i > 0 && b[i] < b[i-1] {
			b[i] = b[i-1]
		}
	}
	return b
}

// ShouldRegenerate decides whether existing manual separators survive a
// region edit. Separators are regenerated from scratch when there are none,
// when their count no longer matches the replicate settings, or when the
// region width changed by more than 5%; otherwise manual adjustments
// persist unchanged.
func ShouldRegenerate(separatorCount, replicates int, equalN bool, lastWidth, newWidth float64) bool {
	if separatorCount == 0 {
		return true
	}
	if separatorCount != ExpectedSeparators(replicates, equalN) {
		return true
	}
	if math.Abs(newWidth-lastWidth) > newWidth*regenerateWidthTolerance {
		return true
	}
	return false
}

// EvenSeparators returns evenly spaced separator x-positions for a region
// starting at left with the given width, in the same coordinate space as
// the inputs. It is the seed placement for a freshly drawn region.
func EvenSeparators(left, width float64, replicates int, equalN bool) []float64 {
	n := ExpectedSeparators(replicates, equalN)
	if n <= 0 {
		return nil
	}
	seps := make([]float64, n)
	for i := 0; i < n; i++ {
		seps[i] = left + width*float64(i+1)/float64(n+1)
	}
	return seps
}
