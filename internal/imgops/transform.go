package imgops

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Crop extracts the rectangle (x1,y1)-(x2,y2) from the input image and
// writes it out. Default output suffix: _cropped.
func Crop(inputPath string, x1, y1, x2, y2 int, outputPath string) (string, error) {
	img, err := Open(inputPath)
	if err != nil {
		return "", err
	}

	bounds := img.Bounds()
	if x1 < bounds.Min.X || y1 < bounds.Min.Y || x2 > bounds.Max.X || y2 > bounds.Max.Y {
		return "", fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			x1, y1, x2, y2, bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}
	if x1 >= x2 || y1 >= y2 {
		return "", fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	cropped := imaging.Crop(img, image.Rect(x1, y1, x2, y2))

	out := OutputPath(inputPath, outputPath, "_cropped")
	if err := Save(cropped, out); err != nil {
		return "", err
	}
	return out, nil
}

// resampleFilters maps the interpolation names accepted by the resize tool
// to imaging filters. The names follow the OpenCV convention.
var resampleFilters = map[string]imaging.ResampleFilter{
	"nearest": imaging.NearestNeighbor,
	"linear":  imaging.Linear,
	"area":    imaging.Box,
	"cubic":   imaging.CatmullRom,
	"lanczos": imaging.Lanczos,
}

// Resize scales an image. Exactly one sizing mode applies:
//
//   - scaleFactor > 0 scales both dimensions and overrides width/height
//   - width and height both set resize to those exact dimensions
//   - only one of width/height set preserves the aspect ratio
//
// Passing no sizing parameter is an error. Default output suffix: _resized.
func Resize(inputPath string, width, height int, scaleFactor float64, interpolation, outputPath string) (string, error) {
	filter, ok := resampleFilters[interpolation]
	if !ok {
		return "", fmt.Errorf("invalid interpolation method %q: choose from nearest, linear, area, cubic, lanczos", interpolation)
	}

	img, err := Open(inputPath)
	if err != nil {
		return "", err
	}

	origW := img.Bounds().Dx()
	origH := img.Bounds().Dy()

	var targetW, targetH int
	switch {
	case scaleFactor > 0:
		targetW = int(float64(origW) * scaleFactor)
		targetH = int(float64(origH) * scaleFactor)
	case width > 0 && height > 0:
		targetW, targetH = width, height
	case width > 0:
		targetW = width
		targetH = int(float64(origH) * (float64(width) / float64(origW)))
	case height > 0:
		targetH = height
		targetW = int(float64(origW) * (float64(height) / float64(origH)))
	default:
		return "", fmt.Errorf("must provide either width, height, or scale_factor")
	}
	if targetW < 1 || targetH < 1 {
		return "", fmt.Errorf("target dimensions %dx%d too small", targetW, targetH)
	}

	resized := imaging.Resize(img, targetW, targetH, filter)

	out := OutputPath(inputPath, outputPath, "_resized")
	if err := Save(resized, out); err != nil {
		return "", err
	}
	return out, nil
}

// Rotate turns an image by angle degrees, positive being counterclockwise.
// The canvas grows so the whole rotated image stays visible; the uncovered
// corners are filled black. Default output suffix: _rotated.
func Rotate(inputPath string, angle float64, outputPath string) (string, error) {
	img, err := Open(inputPath)
	if err != nil {
		return "", err
	}

	rotated := imaging.Rotate(img, angle, color.NRGBA{A: 255})

	out := OutputPath(inputPath, outputPath, "_rotated")
	if err := Save(rotated, out); err != nil {
		return "", err
	}
	return out, nil
}

// Overlay composites the overlay image onto the base image with its
// top-left corner at (x, y), honoring the overlay's alpha channel. Parts of
// the overlay falling outside the base are clipped. Default output suffix:
// _overlaid (derived from the base image path).
func Overlay(basePath, overlayPath string, x, y int, outputPath string) (string, error) {
	base, err := Open(basePath)
	if err != nil {
		return "", err
	}
	over, err := Open(overlayPath)
	if err != nil {
		return "", err
	}

	result := imaging.Overlay(base, over, image.Pt(x, y), 1.0)

	out := OutputPath(basePath, outputPath, "_overlaid")
	if err := Save(result, out); err != nil {
		return "", err
	}
	return out, nil
}
