package densitometry

// Profile returns the mean intensity of each pixel column, left to right.
// Plotted against the lane separators it shows whether the per-lane
// background subtraction clips any band peaks.
func Profile(r Raster) []float64 {
	if r.Empty() {
		return nil
	}
	profile := make([]float64, r.Width)
	for x := 0; x < r.Width; x++ {
		var sum float64
		for y := 0; y < r.Height; y++ {
			sum += float64(r.Pix[y*r.Width+x])
		}
		profile[x] = sum / float64(r.Height)
	}
	return profile
}
