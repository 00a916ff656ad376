package detect

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLetterboxGeometry(t *testing.T) {
	img := imaging.New(320, 160, color.NRGBA{R: 255, A: 255})

	lb := letterbox(img)

	assert.Equal(t, 2.0, lb.scale)
	assert.Equal(t, 0.0, lb.padX)
	assert.Equal(t, 160.0, lb.padY)
	assert.Equal(t, 320, lb.srcW)
	assert.Equal(t, 160, lb.srcH)
	assert.Len(t, lb.pixels, 3*inputSize*inputSize)
}

func TestLetterboxPadsWithNeutralGray(t *testing.T) {
	img := imaging.New(320, 160, color.NRGBA{R: 255, A: 255})

	lb := letterbox(img)

	const gray = float32(114.0 / 255.0)
	plane := inputSize * inputSize

	// Top padding rows are gray in all three planes.
	assert.Equal(t, gray, lb.pixels[0])
	assert.Equal(t, gray, lb.pixels[plane])
	assert.Equal(t, gray, lb.pixels[2*plane])

	// The content region carries the red image: R=1, G=B=0.
	idx := 320*inputSize + 100 // row 320 is inside the content band
	assert.InDelta(t, 1.0, lb.pixels[idx], 0.01)
	assert.InDelta(t, 0.0, lb.pixels[plane+idx], 0.01)
	assert.InDelta(t, 0.0, lb.pixels[2*plane+idx], 0.01)
}

// synthetic output tensor: rows of length anchors, [cx, cy, w, h, class...].
func makeOutput(numClasses, anchors int) []float32 {
	return make([]float32, (4+numClasses)*anchors)
}

func TestDecodeMapsBoxesToSourceCoordinates(t *testing.T) {
	d := &Detector{numClasses: 2, numAnchors: 3, classes: []string{"cat", "dog"}}
	lb := &letterboxed{scale: 2, padX: 0, padY: 160, srcW: 320, srcH: 160}

	out := makeOutput(2, 3)
	// Anchor 0: a confident cat centered in network space.
	out[0] = 320  // cx
	out[3] = 320  // cy
	out[6] = 100  // w
	out[9] = 100  // h
	out[12] = 0.9 // class 0 score
	// Anchor 1: below threshold.
	out[1] = 100
	out[4] = 300
	out[7] = 20
	out[10] = 20
	out[16] = 0.3 // class 1 score

	dets := d.decode(out, lb, 0.5)
	require.Len(t, dets, 1)

	assert.Equal(t, "cat", dets[0].Class)
	assert.InDelta(t, 0.9, dets[0].Confidence, 0.001)
	assert.InDelta(t, 135, dets[0].BBox[0], 0.01)
	assert.InDelta(t, 55, dets[0].BBox[1], 0.01)
	assert.InDelta(t, 185, dets[0].BBox[2], 0.01)
	assert.InDelta(t, 105, dets[0].BBox[3], 0.01)
}

func TestDecodeClampsToImageBounds(t *testing.T) {
	d := &Detector{numClasses: 1, numAnchors: 1, classes: []string{"cat"}}
	lb := &letterboxed{scale: 1, padX: 0, padY: 0, srcW: 100, srcH: 100}

	out := makeOutput(1, 1)
	out[0] = 10 // cx
	out[1] = 10 // cy
	out[2] = 60 // w: extends past the left edge
	out[3] = 60 // h: extends past the top edge
	out[4] = 0.8

	dets := d.decode(out, lb, 0.5)
	require.Len(t, dets, 1)

	assert.Equal(t, 0.0, dets[0].BBox[0])
	assert.Equal(t, 0.0, dets[0].BBox[1])
	assert.InDelta(t, 40, dets[0].BBox[2], 0.01)
	assert.InDelta(t, 40, dets[0].BBox[3], 0.01)
}

func TestNonMaxSuppression(t *testing.T) {
	dets := []Detection{
		{Class: "cat", Confidence: 0.7, BBox: []float64{10, 10, 50, 50}},
		{Class: "cat", Confidence: 0.9, BBox: []float64{12, 12, 52, 52}},
		{Class: "dog", Confidence: 0.8, BBox: []float64{11, 11, 51, 51}},
		{Class: "cat", Confidence: 0.6, BBox: []float64{200, 200, 240, 240}},
	}

	kept := nonMaxSuppression(dets)
	require.Len(t, kept, 3)

	// Sorted by confidence; the overlapping weaker cat is gone, the dog
	// survives despite overlapping because classes differ.
	assert.Equal(t, 0.9, kept[0].Confidence)
	assert.Equal(t, "dog", kept[1].Class)
	assert.Equal(t, 0.6, kept[2].Confidence)
}

func TestIoU(t *testing.T) {
	a := []float64{0, 0, 10, 10}
	assert.Equal(t, 1.0, iou(a, a))
	assert.Equal(t, 0.0, iou(a, []float64{20, 20, 30, 30}))

	// Half overlap: intersection 50, union 150.
	b := []float64{5, 0, 15, 10}
	assert.InDelta(t, 50.0/150.0, iou(a, b), 0.001)
}

func TestClassNames(t *testing.T) {
	coco := classNames(80)
	require.Len(t, coco, 80)
	assert.Equal(t, "person", coco[0])

	custom := classNames(3)
	assert.Equal(t, []string{"class_0", "class_1", "class_2"}, custom)
}
