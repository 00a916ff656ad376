package imgops

import (
	"encoding/json"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorUnmarshalBGRArray(t *testing.T) {
	var c Color
	require.NoError(t, json.Unmarshal([]byte(`[255, 0, 0]`), &c))
	assert.True(t, c.IsSet())
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, c.NRGBA(white))
}

func TestColorUnmarshalBGRAArray(t *testing.T) {
	var c Color
	require.NoError(t, json.Unmarshal([]byte(`[0, 0, 255, 128]`), &c))
	assert.Equal(t, color.NRGBA{R: 255, A: 128}, c.NRGBA(white))
}

func TestColorUnmarshalHex(t *testing.T) {
	var c Color
	require.NoError(t, json.Unmarshal([]byte(`"#FF0000"`), &c))
	assert.Equal(t, red, c.NRGBA(white))
}

func TestColorUnmarshalRejectsBadValues(t *testing.T) {
	var c Color
	assert.Error(t, json.Unmarshal([]byte(`[300, 0, 0]`), &c))
	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &c))
	assert.Error(t, json.Unmarshal([]byte(`"notahex"`), &c))
	assert.Error(t, json.Unmarshal([]byte(`42`), &c))
}

func TestColorDefaultWhenUnset(t *testing.T) {
	var c Color
	assert.False(t, c.IsSet())
	assert.Equal(t, red, c.NRGBA(red))
}

func TestChangeColorGrayscale(t *testing.T) {
	in := newTestImage(t, "photo.png", 10, 10, red)

	out, err := ChangeColor(in, PaletteGrayscale, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "photo_grayscale.png"), "got %s", out)

	got := pixelAt(t, out, 5, 5)
	assert.Equal(t, got.R, got.G)
	assert.Equal(t, got.G, got.B)
}

func TestChangeColorInvert(t *testing.T) {
	in := newTestImage(t, "photo.png", 10, 10, white)

	out, err := ChangeColor(in, PaletteInvert, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "photo_invert.png"), "got %s", out)

	assert.Equal(t, black, pixelAt(t, out, 5, 5))
}

func TestChangeColorSepiaWarmsImage(t *testing.T) {
	in := newTestImage(t, "photo.png", 10, 10, color.NRGBA{R: 128, G: 128, B: 128, A: 255})

	out, err := ChangeColor(in, PaletteSepia, "")
	require.NoError(t, err)

	got := pixelAt(t, out, 5, 5)
	assert.Greater(t, got.R, got.B, "sepia should shift toward red over blue")
}

func TestChangeColorRejectsUnknownPalette(t *testing.T) {
	in := newTestImage(t, "photo.png", 10, 10, white)

	_, err := ChangeColor(in, "neon", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid palette")
}
