package roi

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"blotquant/internal/densitometry"
	"blotquant/pkg/geometry"
)

// ErrEmptyRegion reports a measurement request with no usable pixels: a
// region with non-positive area, a region outside the image, or no loaded
// image at all. It is non-fatal; the caller simply takes no measurement.
var ErrEmptyRegion = errors.New("roi: empty region")

// Rotation angle limits in integer degrees, matching the alignment slider.
const (
	MinAngle = -45
	MaxAngle = 45
)

// Extractor turns display-space regions of a loaded blot image into
// cropped intensity rasters. It owns the source pixels as a gocv Mat and
// caches the last rotated full frame, because region resizing invokes
// extraction on every mouse move while the angle rarely changes.
type Extractor struct {
	src     gocv.Mat
	display geometry.Size

	cached      gocv.Mat
	cachedAngle int
	hasCached   bool
}

// NewExtractor creates an extractor for the given image. The display size
// is the canonical interaction-space size the image is presented at.
func NewExtractor(img image.Image, display geometry.Size) (*Extractor, error) {
	if img == nil {
		return nil, fmt.Errorf("roi: no image")
	}
	mat, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return nil, fmt.Errorf("roi: convert image: %w", err)
	}
	return &Extractor{src: mat, display: display}, nil
}

// Close releases the underlying pixel buffers.
func (e *Extractor) Close() {
	if e.hasCached {
		e.cached.Close()
		e.hasCached = false
	}
	e.src.Close()
}

// Extract crops the display-space region out of the source image rotated by
// angle degrees, and returns the inverted-polarity grayscale raster
// together with the separator x-coordinates remapped into the raster's
// coordinate space.
func (e *Extractor) Extract(region geometry.Rect, separators []float64, angle int) (densitometry.Raster, []int, error) {
	if region.Empty() || e.src.Empty() {
		return densitometry.Raster{}, nil, ErrEmptyRegion
	}
	if angle < MinAngle || angle > MaxAngle {
		return densitometry.Raster{}, nil, fmt.Errorf("roi: angle %d out of range [%d, %d]", angle, MinAngle, MaxAngle)
	}

	frame := e.rotated(angle)
	m := NewDisplayMap(frame.Cols(), frame.Rows(), e.display)

	px := m.Region(region)
	crop := clampToFrame(px, frame.Cols(), frame.Rows())
	if crop.Empty() {
		return densitometry.Raster{}, nil, ErrEmptyRegion
	}

	view := frame.Region(image.Rect(crop.X, crop.Y, crop.X+crop.Width, crop.Y+crop.Height))
	defer view.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(view, &gray, gocv.ColorRGBAToGray)

	// Darker bands must carry higher numeric values.
	inverted := gocv.NewMat()
	defer inverted.Close()
	gocv.BitwiseNot(gray, &inverted)

	raster := densitometry.Raster{
		Width:  inverted.Cols(),
		Height: inverted.Rows(),
		Pix:    inverted.ToBytes(),
	}
	return raster, m.Separators(separators, region.X), nil
}

// rotated returns the full source frame at the given angle, computing and
// caching the expanded rotation when the angle changed since the last call.
func (e *Extractor) rotated(angle int) gocv.Mat {
	if angle == 0 {
		return e.src
	}
	if e.hasCached && e.cachedAngle == angle {
		return e.cached
	}
	if e.hasCached {
		e.cached.Close()
		e.hasCached = false
	}

	width, height := e.src.Cols(), e.src.Rows()
	center := image.Pt(width/2, height/2)

	matrix := gocv.GetRotationMatrix2D(center, float64(angle), 1.0)
	defer matrix.Close()

	// Expand the output to the rotated bounding box and re-center.
	cos := math.Abs(matrix.GetDoubleAt(0, 0))
	sin := math.Abs(matrix.GetDoubleAt(0, 1))
	newWidth := int(float64(height)*sin + float64(width)*cos)
	newHeight := int(float64(height)*cos + float64(width)*sin)
	matrix.SetDoubleAt(0, 2, matrix.GetDoubleAt(0, 2)+float64(newWidth)/2-float64(center.X))
	matrix.SetDoubleAt(1, 2, matrix.GetDoubleAt(1, 2)+float64(newHeight)/2-float64(center.Y))

	dst := gocv.NewMat()
	gocv.WarpAffineWithParams(e.src, &dst, matrix, image.Pt(newWidth, newHeight),
		gocv.InterpolationCubic, gocv.BorderReplicate, color.RGBA{})

	e.cached = dst
	e.cachedAngle = angle
	e.hasCached = true
	return e.cached
}

// clampToFrame restricts a pixel rectangle to the frame bounds.
func clampToFrame(r geometry.RectInt, frameWidth, frameHeight int) geometry.RectInt {
	x2, y2 := r.X+r.Width, r.Y+r.Height
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	if x2 > frameWidth {
		x2 = frameWidth
	}
	if y2 > frameHeight {
		y2 = frameHeight
	}
	r.Width = x2 - r.X
	r.Height = y2 - r.Y
	return r
}
