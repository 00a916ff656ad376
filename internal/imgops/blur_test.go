package imgops

import (
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkerboardImage writes a white PNG with a black square in the middle,
// giving the blur something to smear.
func checkerboardImage(t *testing.T, w, h int) string {
	t.Helper()
	img := imaging.New(w, h, white)
	for y := h/2 - 2; y < h/2+2; y++ {
		for x := w/2 - 2; x < w/2+2; x++ {
			img.SetNRGBA(x, y, black)
		}
	}
	path := filepath.Join(t.TempDir(), "board.png")
	require.NoError(t, Save(img, path))
	return path
}

func TestBlurSoftensArea(t *testing.T) {
	in := checkerboardImage(t, 40, 40)

	out, err := Blur(in, []BlurArea{{X1: 10, Y1: 10, X2: 30, Y2: 30, Strength: 9}}, 15, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "board_blurred.png"), "got %s", out)

	// The black square's center must have picked up surrounding white.
	center := pixelAt(t, out, 20, 20)
	assert.Greater(t, int(center.R), 0, "blur did not soften the dark center")
	// Pixels outside the area stay untouched.
	assert.Equal(t, white, pixelAt(t, out, 2, 2))
}

func TestBlurUsesDefaultStrength(t *testing.T) {
	in := checkerboardImage(t, 40, 40)

	out, err := Blur(in, []BlurArea{{X1: 10, Y1: 10, X2: 30, Y2: 30}}, 9, "")
	require.NoError(t, err)

	center := pixelAt(t, out, 20, 20)
	assert.Greater(t, int(center.R), 0)
}

func TestBlurBumpsEvenStrengthToOdd(t *testing.T) {
	in := checkerboardImage(t, 40, 40)

	_, err := Blur(in, []BlurArea{{X1: 10, Y1: 10, X2: 30, Y2: 30, Strength: 8}}, 15, "")
	require.NoError(t, err)
}

func TestBlurRequiresAreas(t *testing.T) {
	in := newTestImage(t, "photo.png", 10, 10, white)

	_, err := Blur(in, nil, 15, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one area")
}

func TestBlurRejectsAreaOutsideImage(t *testing.T) {
	in := newTestImage(t, "photo.png", 10, 10, white)

	_, err := Blur(in, []BlurArea{{X1: 50, Y1: 50, X2: 60, Y2: 60}}, 15, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not intersect")
}

func TestBlurClipsAreaToImage(t *testing.T) {
	in := checkerboardImage(t, 40, 40)

	out, err := Blur(in, []BlurArea{{X1: -10, Y1: -10, X2: 100, Y2: 100, Strength: 9}}, 15, "")
	require.NoError(t, err)

	center := pixelAt(t, out, 20, 20)
	assert.NotEqual(t, color.NRGBA{A: 255}, center)
}
