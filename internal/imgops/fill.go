package imgops

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/disintegration/imaging"
)

// FillArea is one region to fill, given either as a rectangle (x1..y2) or
// as a closed polygon of [x, y] points. Omitting Color cuts the region out
// of the image as transparency (alpha 0), as does an explicit [b, g, r, 0]
// color; the output must be saved in a format with an alpha channel for the
// transparency to survive. Omitting Opacity blends at 0.5; an explicit 0.0
// is honored and leaves the image unchanged.
type FillArea struct {
	X1      int      `json:"x1,omitempty"`
	Y1      int      `json:"y1,omitempty"`
	X2      int      `json:"x2,omitempty"`
	Y2      int      `json:"y2,omitempty"`
	Polygon [][]int  `json:"polygon,omitempty"`
	Color   Color    `json:"color,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
}

// defaultFillOpacity applies when an area does not set its own opacity.
const defaultFillOpacity = 0.5

// Fill paints the listed areas onto the image. With invertAreas set,
// everything except the areas is painted instead (useful for isolating a
// subject). Default output suffix: _filled.
func Fill(inputPath string, areas []FillArea, invertAreas bool, outputPath string) (string, error) {
	if len(areas) == 0 {
		return "", fmt.Errorf("at least one area to fill must be provided")
	}

	img, err := Open(inputPath)
	if err != nil {
		return "", err
	}
	result := imaging.Clone(img)
	bounds := result.Bounds()

	// Group areas by paint settings so inversion composes correctly:
	// each area gets its own mask, inverted independently.
	for i, area := range areas {
		mask, err := areaMask(bounds, area)
		if err != nil {
			return "", fmt.Errorf("area %d: %w", i+1, err)
		}
		if invertAreas {
			invertMask(mask)
		}

		opacity := defaultFillOpacity
		if area.Opacity != nil {
			opacity = *area.Opacity
		}
		if opacity < 0 || opacity > 1 {
			return "", fmt.Errorf("area %d: opacity must be between 0.0 and 1.0, got %v", i+1, opacity)
		}

		// The zero-alpha default makes an omitted color a transparent
		// cut-out via the erase path in applyMask.
		paint := area.Color.NRGBA(color.NRGBA{})

		applyMask(result, mask, paint, opacity)
	}

	out := OutputPath(inputPath, outputPath, "_filled")
	if err := Save(result, out); err != nil {
		return "", err
	}
	return out, nil
}

func areaMask(bounds image.Rectangle, area FillArea) (*image.Alpha, error) {
	mask := image.NewAlpha(bounds)

	if len(area.Polygon) > 0 {
		pts := make([]image.Point, 0, len(area.Polygon))
		for _, p := range area.Polygon {
			if len(p) != 2 {
				return nil, fmt.Errorf("polygon points must be [x, y] pairs")
			}
			pts = append(pts, image.Pt(p[0], p[1]))
		}
		if len(pts) < 3 {
			return nil, fmt.Errorf("polygon must have at least 3 points")
		}
		fillPolygon(mask, pts)
		return mask, nil
	}

	rect := image.Rect(area.X1, area.Y1, area.X2, area.Y2).Intersect(bounds)
	if rect.Empty() {
		return nil, fmt.Errorf("rectangle (%d,%d)-(%d,%d) does not intersect the image", area.X1, area.Y1, area.X2, area.Y2)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			mask.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}
	return mask, nil
}

// fillPolygon rasterizes a closed polygon into the mask using even-odd
// scanline filling.
func fillPolygon(mask *image.Alpha, pts []image.Point) {
	bounds := mask.Bounds()
	n := len(pts)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		fy := float64(y) + 0.5
		var xs []float64
		for i := 0; i < n; i++ {
			a, b := pts[i], pts[(i+1)%n]
			ay, by := float64(a.Y), float64(b.Y)
			if (ay <= fy && by > fy) || (by <= fy && ay > fy) {
				t := (fy - ay) / (by - ay)
				xs = append(xs, float64(a.X)+t*float64(b.X-a.X))
			}
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			x1 := int(xs[i] + 0.5)
			x2 := int(xs[i+1] + 0.5)
			for x := max(x1, bounds.Min.X); x < min(x2, bounds.Max.X); x++ {
				mask.SetAlpha(x, y, color.Alpha{A: 255})
			}
		}
	}
}

func invertMask(mask *image.Alpha) {
	for i := range mask.Pix {
		mask.Pix[i] = 255 - mask.Pix[i]
	}
}

// applyMask paints the fill color over every masked pixel. Alpha-0 paint
// erases the pixel (transparent cut-out) rather than blending.
func applyMask(dst *image.NRGBA, mask *image.Alpha, paint color.NRGBA, opacity float64) {
	bounds := dst.Bounds()
	erase := paint.A == 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			m := mask.AlphaAt(x, y).A
			if m == 0 {
				continue
			}
			if erase {
				dst.SetNRGBA(x, y, color.NRGBA{})
				continue
			}
			src := dst.NRGBAAt(x, y)
			w := opacity * float64(m) / 255
			dst.SetNRGBA(x, y, color.NRGBA{
				R: mix(src.R, paint.R, w),
				G: mix(src.G, paint.G, w),
				B: mix(src.B, paint.B, w),
				A: src.A,
			})
		}
	}
}

func mix(a, b uint8, w float64) uint8 {
	return uint8(float64(a)*(1-w) + float64(b)*w + 0.5)
}
