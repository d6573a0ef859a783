// Package densitometry computes per-lane band intensities from extracted
// blot regions.
package densitometry

// Raster is a single-channel intensity image in row-major order. Pixel
// values carry inverted polarity: darker bands in the source blot map to
// higher values.
type Raster struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRaster creates a zero-filled raster of the given dimensions.
func NewRaster(width, height int) Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Raster{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At returns the intensity at (x, y), or 0 outside the raster.
func (r Raster) At(x, y int) uint8 {
	if x < 0 || x >= r.Width || y < 0 || y >= r.Height {
		return 0
	}
	return r.Pix[y*r.Width+x]
}

// Set stores an intensity at (x, y). Out-of-range coordinates are ignored.
func (r Raster) Set(x, y int, v uint8) {
	if x < 0 || x >= r.Width || y < 0 || y >= r.Height {
		return
	}
	r.Pix[y*r.Width+x] = v
}

// Empty returns true if the raster has no pixels.
func (r Raster) Empty() bool {
	return r.Width <= 0 || r.Height <= 0 || len(r.Pix) == 0
}

// LaneValues collects every pixel of the vertical slice [start, end) across
// the full raster height as float64 values. The slice is clamped to the
// raster bounds; a degenerate slice yields an empty result.
func (r Raster) LaneValues(start, end int) []float64 {
	if start < 0 {
		start = 0
	}
	if end > r.Width {
		end = r.Width
	}
	if end <= start || r.Height <= 0 {
		return nil
	}
	vals := make([]float64, 0, (end-start)*r.Height)
	for y := 0; y < r.Height; y++ {
		row := y * r.Width
		for x := start; x < end; x++ {
			vals = append(vals, float64(r.Pix[row+x]))
		}
	}
	return vals
}
