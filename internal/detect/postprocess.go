package detect

import (
	"image"
	"sort"

	"github.com/disintegration/imaging"
)

// letterboxed carries the preprocessed network input plus the geometry
// needed to map boxes back to the source image.
type letterboxed struct {
	pixels []float32 // CHW, RGB, normalized to [0,1]
	scale  float64   // source -> network scale factor
	padX   float64   // horizontal padding in network pixels
	padY   float64   // vertical padding in network pixels
	srcW   int
	srcH   int
}

// letterbox resizes the image to fit the square network input while
// preserving aspect ratio, padding the borders with neutral gray (114),
// and converts to normalized CHW float32.
func letterbox(img image.Image) *letterboxed {
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()

	scale := min(float64(inputSize)/float64(srcW), float64(inputSize)/float64(srcH))
	newW := int(float64(srcW)*scale + 0.5)
	newH := int(float64(srcH)*scale + 0.5)
	padX := float64(inputSize-newW) / 2
	padY := float64(inputSize-newH) / 2

	resized := imaging.Resize(img, newW, newH, imaging.Linear)

	pixels := make([]float32, 3*inputSize*inputSize)
	const gray = float32(114.0 / 255.0)
	for i := range pixels {
		pixels[i] = gray
	}

	offX := int(padX)
	offY := int(padY)
	plane := inputSize * inputSize
	for y := 0; y < newH; y++ {
		row := resized.Pix[y*resized.Stride:]
		for x := 0; x < newW; x++ {
			idx := (y+offY)*inputSize + (x + offX)
			pixels[idx] = float32(row[x*4]) / 255          // R
			pixels[plane+idx] = float32(row[x*4+1]) / 255  // G
			pixels[2*plane+idx] = float32(row[x*4+2]) / 255 // B
		}
	}

	return &letterboxed{pixels: pixels, scale: scale, padX: padX, padY: padY, srcW: srcW, srcH: srcH}
}

// decode turns the raw [1, 4+nc, anchors] output into thresholded,
// NMS-filtered detections in source-image coordinates.
func (d *Detector) decode(out []float32, lb *letterboxed, threshold float64) []Detection {
	anchors := d.numAnchors
	var candidates []Detection

	for i := 0; i < anchors; i++ {
		best := -1
		bestScore := float32(0)
		for c := 0; c < d.numClasses; c++ {
			score := out[(4+c)*anchors+i]
			if score > bestScore {
				bestScore = score
				best = c
			}
		}
		if best < 0 || float64(bestScore) < threshold {
			continue
		}

		cx := float64(out[i])
		cy := float64(out[anchors+i])
		w := float64(out[2*anchors+i])
		h := float64(out[3*anchors+i])

		x1 := (cx - w/2 - lb.padX) / lb.scale
		y1 := (cy - h/2 - lb.padY) / lb.scale
		x2 := (cx + w/2 - lb.padX) / lb.scale
		y2 := (cy + h/2 - lb.padY) / lb.scale

		candidates = append(candidates, Detection{
			Class:      d.classes[best],
			Confidence: float64(bestScore),
			BBox: []float64{
				clamp(x1, 0, float64(lb.srcW)),
				clamp(y1, 0, float64(lb.srcH)),
				clamp(x2, 0, float64(lb.srcW)),
				clamp(y2, 0, float64(lb.srcH)),
			},
		})
	}

	return nonMaxSuppression(candidates)
}

// nonMaxSuppression drops boxes overlapping a higher-confidence box of the
// same class by more than the IoU threshold. Input order does not matter;
// output is sorted by descending confidence.
func nonMaxSuppression(dets []Detection) []Detection {
	sort.Slice(dets, func(i, j int) bool { return dets[i].Confidence > dets[j].Confidence })

	kept := make([]Detection, 0, len(dets))
	for _, cand := range dets {
		ok := true
		for _, k := range kept {
			if k.Class == cand.Class && iou(k.BBox, cand.BBox) > iouThreshold {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, cand)
		}
	}
	return kept
}

func iou(a, b []float64) float64 {
	ix1 := max(a[0], b[0])
	iy1 := max(a[1], b[1])
	ix2 := min(a[2], b[2])
	iy2 := min(a[3], b[3])

	iw := ix2 - ix1
	ih := iy2 - iy1
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := iw * ih
	areaA := (a[2] - a[0]) * (a[3] - a[1])
	areaB := (b[2] - b[0]) * (b[3] - b[1])
	union := areaA + areaB - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
