package image

import (
	"fmt"
	goimage "image"

	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"

	"blotquant/pkg/geometry"
)

// Preview renders the display-space view of a layer: the image rotated by
// angle degrees with the canvas expanded to fit, then scaled into bounds
// with the aspect ratio preserved. This is the frame the interaction layer
// draws regions on; the measurement path performs its own rotation on the
// full-resolution source.
func Preview(l *Layer, angle int, bounds geometry.Size) (goimage.Image, error) {
	if l == nil || l.Image == nil {
		return nil, fmt.Errorf("no image loaded")
	}

	img := l.Image
	if angle != 0 {
		img = transform.Rotate(img, float64(angle), &transform.RotationOptions{ResizeBounds: true})
	}

	fit := FitDisplay(img.Bounds().Dx(), img.Bounds().Dy(), bounds)
	if fit.Width < 1 || fit.Height < 1 {
		return nil, fmt.Errorf("display bounds too small")
	}

	return imaging.Fit(img, int(fit.Width), int(fit.Height), imaging.Lanczos), nil
}
