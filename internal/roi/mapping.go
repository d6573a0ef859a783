// Package roi maps user-drawn regions from display space into source-image
// pixel space and extracts inverted-polarity intensity rasters from them.
package roi

import (
	"blotquant/pkg/geometry"
)

// DisplayMap converts display-space coordinates into pixel coordinates of
// one frame (the source image, or its rotated bounding box). The display is
// the fixed canonical size the image was scaled to for interaction.
type DisplayMap struct {
	ScaleX float64
	ScaleY float64
}

// NewDisplayMap derives the scale factors from the frame dimensions and
// the display size.
func NewDisplayMap(frameWidth, frameHeight int, display geometry.Size) DisplayMap {
	m := DisplayMap{ScaleX: 1, ScaleY: 1}
	if display.Width > 0 {
		m.ScaleX = float64(frameWidth) / display.Width
	}
	if display.Height > 0 {
		m.ScaleY = float64(frameHeight) / display.Height
	}
	return m
}

// Region maps a display-space rectangle to frame pixels, truncating to
// integer coordinates.
func (m DisplayMap) Region(r geometry.Rect) geometry.RectInt {
	return geometry.RectInt{
		X:      int(r.X * m.ScaleX),
		Y:      int(r.Y * m.ScaleY),
		Width:  int(r.Width * m.ScaleX),
		Height: int(r.Height * m.ScaleY),
	}
}

// Separators maps display-space separator x-coordinates into the cropped
// region's own coordinate space. Separators are expressed relative to the
// region's left edge, not the full image.
func (m DisplayMap) Separators(separators []float64, regionLeft float64) []int {
	if len(separators) == 0 {
		return nil
	}
	out := make([]int, len(separators))
	for i, sx := range separators {
		out[i] = int((sx - regionLeft) * m.ScaleX)
	}
	return out
}
