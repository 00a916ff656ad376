package imgops

import (
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefaults() DrawDefaults {
	return DrawDefaults{Color: black, Thickness: 1, FontScale: 1.0}
}

func TestDrawRectanglesFilled(t *testing.T) {
	in := newTestImage(t, "photo.png", 40, 40, white)

	out, err := DrawRectangles(in, []Rectangle{
		{X1: 5, Y1: 5, X2: 15, Y2: 15, Color: NewColor(red), Filled: true},
	}, testDefaults(), "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "photo_with_rectangles.png"), "got %s", out)

	assert.Equal(t, red, pixelAt(t, out, 10, 10))
	assert.Equal(t, white, pixelAt(t, out, 30, 30))
}

func TestDrawRectanglesOutlineLeavesInterior(t *testing.T) {
	in := newTestImage(t, "photo.png", 40, 40, white)

	out, err := DrawRectangles(in, []Rectangle{
		{X1: 5, Y1: 5, X2: 20, Y2: 20, Color: NewColor(red)},
	}, testDefaults(), "")
	require.NoError(t, err)

	assert.Equal(t, red, pixelAt(t, out, 5, 12))
	assert.Equal(t, white, pixelAt(t, out, 12, 12))
}

func TestDrawRectanglesThicknessMinusOneFills(t *testing.T) {
	in := newTestImage(t, "photo.png", 30, 30, white)

	out, err := DrawRectangles(in, []Rectangle{
		{X1: 2, Y1: 2, X2: 10, Y2: 10, Color: NewColor(red), Thickness: -1},
	}, testDefaults(), "")
	require.NoError(t, err)

	assert.Equal(t, red, pixelAt(t, out, 6, 6))
}

func TestDrawRectanglesRequiresItems(t *testing.T) {
	in := newTestImage(t, "photo.png", 10, 10, white)

	_, err := DrawRectangles(in, nil, testDefaults(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one rectangle")
}

func TestDrawCirclesFilled(t *testing.T) {
	in := newTestImage(t, "photo.png", 40, 40, white)

	out, err := DrawCircles(in, []Circle{
		{CenterX: 20, CenterY: 20, Radius: 5, Color: NewColor(red), Filled: true},
	}, testDefaults(), "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "photo_with_circles.png"), "got %s", out)

	assert.Equal(t, red, pixelAt(t, out, 20, 20))
	assert.Equal(t, white, pixelAt(t, out, 20, 28))
}

func TestDrawCirclesOutline(t *testing.T) {
	in := newTestImage(t, "photo.png", 40, 40, white)

	out, err := DrawCircles(in, []Circle{
		{CenterX: 20, CenterY: 20, Radius: 8, Color: NewColor(red)},
	}, testDefaults(), "")
	require.NoError(t, err)

	assert.Equal(t, red, pixelAt(t, out, 28, 20))
	assert.Equal(t, white, pixelAt(t, out, 20, 20))
}

func TestDrawCirclesRejectsNonPositiveRadius(t *testing.T) {
	in := newTestImage(t, "photo.png", 10, 10, white)

	_, err := DrawCircles(in, []Circle{{CenterX: 5, CenterY: 5, Radius: 0}}, testDefaults(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "radius must be positive")
}

func TestDrawLines(t *testing.T) {
	in := newTestImage(t, "photo.png", 20, 20, white)

	out, err := DrawLines(in, []Line{
		{X1: 0, Y1: 0, X2: 10, Y2: 10, Color: NewColor(red)},
	}, testDefaults(), "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "photo_with_lines.png"), "got %s", out)

	assert.Equal(t, red, pixelAt(t, out, 0, 0))
	assert.Equal(t, red, pixelAt(t, out, 5, 5))
	assert.Equal(t, red, pixelAt(t, out, 10, 10))
	assert.Equal(t, white, pixelAt(t, out, 15, 3))
}

func TestDrawLinesFallsBackToDefaultColor(t *testing.T) {
	in := newTestImage(t, "photo.png", 20, 20, white)
	def := DrawDefaults{Color: red, Thickness: 1, FontScale: 1.0}

	out, err := DrawLines(in, []Line{{X1: 0, Y1: 5, X2: 19, Y2: 5}}, def, "")
	require.NoError(t, err)

	assert.Equal(t, red, pixelAt(t, out, 10, 5))
}

func TestDrawArrowsPaintsShaftAndHead(t *testing.T) {
	in := newTestImage(t, "photo.png", 60, 60, white)

	out, err := DrawArrows(in, []Arrow{
		{X1: 5, Y1: 30, X2: 50, Y2: 30, Color: NewColor(red), TipLength: 0.2},
	}, testDefaults(), "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "photo_with_arrows.png"), "got %s", out)

	// Shaft.
	assert.Equal(t, red, pixelAt(t, out, 25, 30))
	// Head strokes run back from the tip at 30 degrees above and below
	// the shaft: some pixels behind the tip must be painted off-axis.
	img, err := Open(out)
	require.NoError(t, err)
	offAxis := 0
	for y := 24; y <= 36; y++ {
		if y == 30 {
			continue
		}
		for x := 40; x <= 50; x++ {
			if color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA) == red {
				offAxis++
			}
		}
	}
	assert.Greater(t, offAxis, 2, "arrow head not painted")
}

func TestDrawTextsRendersPixels(t *testing.T) {
	in := newTestImage(t, "photo.png", 120, 40, white)

	out, err := DrawTexts(in, []Text{
		{Text: "Hi", X: 10, Y: 25, Color: NewColor(black), FontScale: 1.0},
	}, testDefaults(), "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "photo_with_text.png"), "got %s", out)

	img, err := Open(out)
	require.NoError(t, err)
	changed := 0
	for y := 0; y < 40; y++ {
		for x := 0; x < 120; x++ {
			if color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA) != white {
				changed++
			}
		}
	}
	assert.Greater(t, changed, 10, "expected text to change pixels")
}

func TestDrawTextsRejectsEmptyText(t *testing.T) {
	in := newTestImage(t, "photo.png", 20, 20, white)

	_, err := DrawTexts(in, []Text{{Text: "", X: 5, Y: 5}}, testDefaults(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text must not be empty")
}

func TestFontFaceVariantSelection(t *testing.T) {
	regular, err := fontFace("FONT_HERSHEY_SIMPLEX", 1.0)
	require.NoError(t, err)
	bold, err := fontFace("FONT_HERSHEY_DUPLEX", 1.0)
	require.NoError(t, err)
	script, err := fontFace("FONT_HERSHEY_SCRIPT_COMPLEX", 1.0)
	require.NoError(t, err)

	assert.NotSame(t, regular, bold)
	assert.Same(t, regular, script)
}

func TestThicknessOrDefault(t *testing.T) {
	assert.Equal(t, 3, thicknessOrDefault(3, 1))
	assert.Equal(t, 2, thicknessOrDefault(0, 2))
	assert.Equal(t, 1, thicknessOrDefault(0, 0))
}
