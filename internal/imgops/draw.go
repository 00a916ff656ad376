package imgops

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Rectangle is one rectangle to draw. Thickness -1 or Filled fills the
// rectangle solid.
type Rectangle struct {
	X1        int   `json:"x1"`
	Y1        int   `json:"y1"`
	X2        int   `json:"x2"`
	Y2        int   `json:"y2"`
	Color     Color `json:"color,omitempty"`
	Thickness int   `json:"thickness,omitempty"`
	Filled    bool  `json:"filled,omitempty"`
}

// Circle is one circle to draw.
type Circle struct {
	CenterX   int   `json:"center_x"`
	CenterY   int   `json:"center_y"`
	Radius    int   `json:"radius"`
	Color     Color `json:"color,omitempty"`
	Thickness int   `json:"thickness,omitempty"`
	Filled    bool  `json:"filled,omitempty"`
}

// Line is one line segment to draw.
type Line struct {
	X1        int   `json:"x1"`
	Y1        int   `json:"y1"`
	X2        int   `json:"x2"`
	Y2        int   `json:"y2"`
	Color     Color `json:"color,omitempty"`
	Thickness int   `json:"thickness,omitempty"`
}

// Arrow is one arrow to draw, pointing from (x1,y1) to (x2,y2). TipLength
// is the head size as a fraction of the shaft length (default 0.1).
type Arrow struct {
	X1        int     `json:"x1"`
	Y1        int     `json:"y1"`
	X2        int     `json:"x2"`
	Y2        int     `json:"y2"`
	Color     Color   `json:"color,omitempty"`
	Thickness int     `json:"thickness,omitempty"`
	TipLength float64 `json:"tip_length,omitempty"`
}

// Text is one text annotation. (X, Y) is the baseline origin of the first
// character. FontFace accepts OpenCV-style FONT_HERSHEY_* names; bold
// variants ("DUPLEX", "TRIPLEX", "COMPLEX") select the bold font, anything
// else renders regular.
type Text struct {
	Text      string  `json:"text"`
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Color     Color   `json:"color,omitempty"`
	FontScale float64 `json:"font_scale,omitempty"`
	FontFace  string  `json:"font_face,omitempty"`
}

// DrawDefaults carries the configured fallbacks for per-item options.
type DrawDefaults struct {
	Color     color.NRGBA
	Thickness int
	FontScale float64
}

// DrawRectangles draws rectangles on the image. Default output suffix:
// _with_rectangles.
func DrawRectangles(inputPath string, rects []Rectangle, def DrawDefaults, outputPath string) (string, error) {
	if len(rects) == 0 {
		return "", fmt.Errorf("at least one rectangle must be provided")
	}
	img, err := Open(inputPath)
	if err != nil {
		return "", err
	}
	canvas := imaging.Clone(img)

	for _, r := range rects {
		col := r.Color.NRGBA(def.Color)
		th := thicknessOrDefault(r.Thickness, def.Thickness)
		if r.Filled || r.Thickness == -1 {
			fillRect(canvas, image.Rect(r.X1, r.Y1, r.X2, r.Y2), col)
			continue
		}
		strokeRect(canvas, r.X1, r.Y1, r.X2, r.Y2, col, th)
	}

	out := OutputPath(inputPath, outputPath, "_with_rectangles")
	if err := Save(canvas, out); err != nil {
		return "", err
	}
	return out, nil
}

// DrawCircles draws circles on the image. Default output suffix: _with_circles.
func DrawCircles(inputPath string, circles []Circle, def DrawDefaults, outputPath string) (string, error) {
	if len(circles) == 0 {
		return "", fmt.Errorf("at least one circle must be provided")
	}
	img, err := Open(inputPath)
	if err != nil {
		return "", err
	}
	canvas := imaging.Clone(img)

	for i, c := range circles {
		if c.Radius <= 0 {
			return "", fmt.Errorf("circle %d: radius must be positive, got %d", i+1, c.Radius)
		}
		col := c.Color.NRGBA(def.Color)
		th := thicknessOrDefault(c.Thickness, def.Thickness)
		if c.Filled || c.Thickness == -1 {
			fillCircle(canvas, c.CenterX, c.CenterY, c.Radius, col)
			continue
		}
		strokeCircle(canvas, c.CenterX, c.CenterY, c.Radius, col, th)
	}

	out := OutputPath(inputPath, outputPath, "_with_circles")
	if err := Save(canvas, out); err != nil {
		return "", err
	}
	return out, nil
}

// DrawLines draws line segments on the image. Default output suffix: _with_lines.
func DrawLines(inputPath string, lines []Line, def DrawDefaults, outputPath string) (string, error) {
	if len(lines) == 0 {
		return "", fmt.Errorf("at least one line must be provided")
	}
	img, err := Open(inputPath)
	if err != nil {
		return "", err
	}
	canvas := imaging.Clone(img)

	for _, l := range lines {
		col := l.Color.NRGBA(def.Color)
		th := thicknessOrDefault(l.Thickness, def.Thickness)
		strokeLine(canvas, l.X1, l.Y1, l.X2, l.Y2, col, th)
	}

	out := OutputPath(inputPath, outputPath, "_with_lines")
	if err := Save(canvas, out); err != nil {
		return "", err
	}
	return out, nil
}

// DrawArrows draws arrows on the image. Default output suffix: _with_arrows.
func DrawArrows(inputPath string, arrows []Arrow, def DrawDefaults, outputPath string) (string, error) {
	if len(arrows) == 0 {
		return "", fmt.Errorf("at least one arrow must be provided")
	}
	img, err := Open(inputPath)
	if err != nil {
		return "", err
	}
	canvas := imaging.Clone(img)

	for _, a := range arrows {
		col := a.Color.NRGBA(def.Color)
		th := thicknessOrDefault(a.Thickness, def.Thickness)
		tip := a.TipLength
		if tip <= 0 {
			tip = 0.1
		}
		strokeLine(canvas, a.X1, a.Y1, a.X2, a.Y2, col, th)

		// Arrow head: two strokes at 30 degrees off the shaft.
		dx := float64(a.X1 - a.X2)
		dy := float64(a.Y1 - a.Y2)
		shaft := math.Hypot(dx, dy)
		if shaft == 0 {
			continue
		}
		headLen := shaft * tip
		angle := math.Atan2(dy, dx)
		for _, off := range []float64{math.Pi / 6, -math.Pi / 6} {
			hx := a.X2 + int(headLen*math.Cos(angle+off)+0.5)
			hy := a.Y2 + int(headLen*math.Sin(angle+off)+0.5)
			strokeLine(canvas, a.X2, a.Y2, hx, hy, col, th)
		}
	}

	out := OutputPath(inputPath, outputPath, "_with_arrows")
	if err := Save(canvas, out); err != nil {
		return "", err
	}
	return out, nil
}

// DrawTexts renders text annotations on the image. Default output suffix:
// _with_text.
func DrawTexts(inputPath string, texts []Text, def DrawDefaults, outputPath string) (string, error) {
	if len(texts) == 0 {
		return "", fmt.Errorf("at least one text must be provided")
	}
	img, err := Open(inputPath)
	if err != nil {
		return "", err
	}
	canvas := imaging.Clone(img)

	for i, t := range texts {
		if t.Text == "" {
			return "", fmt.Errorf("text %d: text must not be empty", i+1)
		}
		scale := t.FontScale
		if scale <= 0 {
			scale = def.FontScale
		}
		face, err := fontFace(t.FontFace, scale)
		if err != nil {
			return "", err
		}
		drawer := &font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(t.Color.NRGBA(def.Color)),
			Face: face,
			Dot:  fixed.P(t.X, t.Y),
		}
		drawer.DrawString(t.Text)
	}

	out := OutputPath(inputPath, outputPath, "_with_text")
	if err := Save(canvas, out); err != nil {
		return "", err
	}
	return out, nil
}

func thicknessOrDefault(th, def int) int {
	if th > 0 {
		return th
	}
	if def > 0 {
		return def
	}
	return 1
}

// === rasterization primitives ===

func fillRect(dst *image.NRGBA, rect image.Rectangle, col color.NRGBA) {
	rect = rect.Canon().Intersect(dst.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.SetNRGBA(x, y, col)
		}
	}
}

func strokeRect(dst *image.NRGBA, x1, y1, x2, y2 int, col color.NRGBA, th int) {
	strokeLine(dst, x1, y1, x2, y1, col, th)
	strokeLine(dst, x2, y1, x2, y2, col, th)
	strokeLine(dst, x2, y2, x1, y2, col, th)
	strokeLine(dst, x1, y2, x1, y1, col, th)
}

// strokeLine draws a Bresenham line, stamping a disc of the stroke radius
// at each step for thickness > 1.
func strokeLine(dst *image.NRGBA, x1, y1, x2, y2 int, col color.NRGBA, th int) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	errAcc := dx + dy

	x, y := x1, y1
	for {
		stamp(dst, x, y, col, th)
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			x += sx
		}
		if e2 <= dx {
			errAcc += dx
			y += sy
		}
	}
}

func stamp(dst *image.NRGBA, cx, cy int, col color.NRGBA, th int) {
	if th <= 1 {
		if image.Pt(cx, cy).In(dst.Bounds()) {
			dst.SetNRGBA(cx, cy, col)
		}
		return
	}
	r := th / 2
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r && image.Pt(cx+dx, cy+dy).In(dst.Bounds()) {
				dst.SetNRGBA(cx+dx, cy+dy, col)
			}
		}
	}
}

func fillCircle(dst *image.NRGBA, cx, cy, r int, col color.NRGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r && image.Pt(cx+dx, cy+dy).In(dst.Bounds()) {
				dst.SetNRGBA(cx+dx, cy+dy, col)
			}
		}
	}
}

// strokeCircle draws a circle outline with the midpoint algorithm.
func strokeCircle(dst *image.NRGBA, cx, cy, r int, col color.NRGBA, th int) {
	x, y := r, 0
	err := 1 - r
	for x >= y {
		for _, p := range [][2]int{
			{cx + x, cy + y}, {cx - x, cy + y}, {cx + x, cy - y}, {cx - x, cy - y},
			{cx + y, cy + x}, {cx - y, cy + x}, {cx + y, cy - x}, {cx - y, cy - x},
		} {
			stamp(dst, p[0], p[1], col, th)
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

// === fonts ===

// font_face takes OpenCV's Hershey font names for compatibility; there is
// no Go port of those vector fonts, so the names select between the
// embedded Go fonts instead. font_scale 1.0 maps to a 16px face.
const baseFontSize = 16.0

var (
	fontMu     sync.Mutex
	parsedFont = map[string]*sfnt.Font{}
	faceCache  = map[string]font.Face{}
)

func fontFace(faceName string, scale float64) (font.Face, error) {
	fontMu.Lock()
	defer fontMu.Unlock()

	variant := "regular"
	upper := strings.ToUpper(faceName)
	if strings.Contains(upper, "DUPLEX") || strings.Contains(upper, "TRIPLEX") ||
		(strings.Contains(upper, "COMPLEX") && !strings.Contains(upper, "SCRIPT")) {
		variant = "bold"
	}

	key := fmt.Sprintf("%s-%.2f", variant, scale)
	if face, ok := faceCache[key]; ok {
		return face, nil
	}

	parsed, ok := parsedFont[variant]
	if !ok {
		data := goregular.TTF
		if variant == "bold" {
			data = gobold.TTF
		}
		var err error
		parsed, err = opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse embedded font: %w", err)
		}
		parsedFont[variant] = parsed
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    baseFontSize * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build font face: %w", err)
	}
	faceCache[key] = face
	return face, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
