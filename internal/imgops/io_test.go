package imgops

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestImage writes a solid-color PNG into a temp dir and returns its path.
func newTestImage(t *testing.T, name string, w, h int, c color.NRGBA) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, Save(imaging.New(w, h, c), path))
	return path
}

// pixelAt reopens a saved image and reads one pixel as NRGBA.
func pixelAt(t *testing.T, path string, x, y int) color.NRGBA {
	t.Helper()
	img, err := Open(path)
	require.NoError(t, err)
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func dimensions(t *testing.T, path string) (int, int) {
	t.Helper()
	img, err := Open(path)
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

var (
	white       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black       = color.NRGBA{A: 255}
	red         = color.NRGBA{R: 255, A: 255}
	transparent = color.NRGBA{}
)

func TestOutputPathDerivesSuffix(t *testing.T) {
	assert.Equal(t, "/a/photo_cropped.png", OutputPath("/a/photo.png", "", "_cropped"))
	assert.Equal(t, "/a/photo_blurred.jpeg", OutputPath("/a/photo.jpeg", "", "_blurred"))
}

func TestOutputPathExplicitWins(t *testing.T) {
	assert.Equal(t, "/b/out.png", OutputPath("/a/photo.png", "/b/out.png", "_cropped"))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open("/nonexistent/photo.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Input file not found: /nonexistent/photo.png")
	assert.Contains(t, err.Error(), "full path")
}

func TestSaveCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "out.png")
	require.NoError(t, Save(imaging.New(4, 4, white), path))

	w, h := dimensions(t, path)
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)
}
