package imgops

import (
	"encoding/json"
	"fmt"
	"image/color"

	"github.com/anthonynsimon/bild/effect"
	"github.com/lucasb-eyer/go-colorful"
)

// Color is a tool-argument color. It unmarshals from either a BGR integer
// array ([b, g, r] or [b, g, r, a]) or a hex string ("#RRGGBB").
type Color struct {
	value color.NRGBA
	set   bool
}

// NewColor wraps a concrete color value.
func NewColor(c color.NRGBA) Color {
	return Color{value: c, set: true}
}

// NRGBA returns the color, falling back to def when the argument was omitted.
func (c Color) NRGBA(def color.NRGBA) color.NRGBA {
	if !c.set {
		return def
	}
	return c.value
}

// IsSet reports whether the argument was present.
func (c Color) IsSet() bool { return c.set }

// UnmarshalJSON accepts [b,g,r], [b,g,r,a] or "#RRGGBB".
func (c *Color) UnmarshalJSON(data []byte) error {
	var arr []int
	if err := json.Unmarshal(data, &arr); err == nil {
		parsed, err := colorFromBGR(arr)
		if err != nil {
			return err
		}
		c.value = parsed
		c.set = true
		return nil
	}

	var hex string
	if err := json.Unmarshal(data, &hex); err != nil {
		return fmt.Errorf("color must be a [b,g,r] array or a hex string")
	}
	parsed, err := colorful.Hex(hex)
	if err != nil {
		return fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := parsed.RGB255()
	c.value = color.NRGBA{R: r, G: g, B: b, A: 255}
	c.set = true
	return nil
}

func colorFromBGR(bgr []int) (color.NRGBA, error) {
	if len(bgr) != 3 && len(bgr) != 4 {
		return color.NRGBA{}, fmt.Errorf("color array must have 3 or 4 components, got %d", len(bgr))
	}
	for _, v := range bgr {
		if v < 0 || v > 255 {
			return color.NRGBA{}, fmt.Errorf("color values must be between 0 and 255, got %d", v)
		}
	}
	out := color.NRGBA{B: uint8(bgr[0]), G: uint8(bgr[1]), R: uint8(bgr[2]), A: 255}
	if len(bgr) == 4 {
		out.A = uint8(bgr[3])
	}
	return out, nil
}

// Palettes accepted by ChangeColor.
const (
	PaletteGrayscale = "grayscale"
	PaletteSepia     = "sepia"
	PaletteInvert    = "invert"
)

// ChangeColor re-renders an image in the named palette and writes the
// result. The derived output suffix is the palette name (photo_sepia.png).
func ChangeColor(inputPath, palette, outputPath string) (string, error) {
	img, err := Open(inputPath)
	if err != nil {
		return "", err
	}

	out := OutputPath(inputPath, outputPath, "_"+palette)

	var result = img
	switch palette {
	case PaletteGrayscale:
		result = effect.Grayscale(img)
	case PaletteSepia:
		result = effect.Sepia(img)
	case PaletteInvert:
		result = effect.Invert(img)
	default:
		return "", fmt.Errorf("invalid palette %q: choose from grayscale, sepia, invert", palette)
	}

	if err := Save(result, out); err != nil {
		return "", err
	}
	return out, nil
}
