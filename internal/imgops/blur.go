package imgops

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// BlurArea is one rectangular region to blur. Strength is the Gaussian
// kernel size in pixels; zero means "use the configured default" and even
// values are bumped to the next odd number.
type BlurArea struct {
	X1       int `json:"x1"`
	Y1       int `json:"y1"`
	X2       int `json:"x2"`
	Y2       int `json:"y2"`
	Strength int `json:"blur_strength,omitempty"`
}

// Blur applies a Gaussian blur to each listed area of the image and writes
// the result. defaultStrength fills in areas that do not set their own.
// Default output suffix: _blurred.
func Blur(inputPath string, areas []BlurArea, defaultStrength int, outputPath string) (string, error) {
	if len(areas) == 0 {
		return "", fmt.Errorf("at least one area to blur must be provided")
	}

	img, err := Open(inputPath)
	if err != nil {
		return "", err
	}
	result := imaging.Clone(img)
	bounds := result.Bounds()

	for i, area := range areas {
		rect := image.Rect(area.X1, area.Y1, area.X2, area.Y2).Intersect(bounds)
		if rect.Empty() {
			return "", fmt.Errorf("area %d (%d,%d)-(%d,%d) does not intersect the image", i+1, area.X1, area.Y1, area.X2, area.Y2)
		}

		strength := area.Strength
		if strength <= 0 {
			strength = defaultStrength
		}
		if strength%2 == 0 {
			strength++
		}

		region := imaging.Crop(result, rect)
		blurred := blur.Gaussian(region, float64(strength-1)/2)
		result = imaging.Paste(result, blurred, rect.Min)
	}

	out := OutputPath(inputPath, outputPath, "_blurred")
	if err := Save(result, out); err != nil {
		return "", err
	}
	return out, nil
}
