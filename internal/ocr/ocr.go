// Package ocr extracts text from images using the Tesseract engine
// (via gosseract/v2).
//
// Tesseract and the language data for each requested language must be
// installed on the system (e.g. apt-get install tesseract-ocr
// tesseract-ocr-eng). Language arguments accept both Tesseract codes
// ("eng") and common two-letter codes ("en"); see MapLanguage.
package ocr

import (
	"fmt"
	"os"

	"github.com/otiai10/gosseract/v2"
)

// TextSegment is one recognized line of text with its location.
type TextSegment struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`          // 0.0 to 1.0
	BBox       []float64 `json:"bbox"`                // [x1, y1, x2, y2]
}

// Result is the outcome of recognizing a whole image.
type Result struct {
	ImagePath    string        `json:"image_path"`
	TextSegments []TextSegment `json:"text_segments"`
}

// ExtractText runs OCR over an image file and returns line-level segments
// with confidence scores and bounding boxes.
func ExtractText(imagePath, language string) (*Result, error) {
	if _, err := os.Stat(imagePath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("Input file not found: %s. Please provide a full path to the file.", imagePath)
		}
		return nil, fmt.Errorf("failed to access input file %s: %w", imagePath, err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(MapLanguage(language)); err != nil {
		return nil, fmt.Errorf("failed to set OCR language %q: %w", language, err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("failed to set image for OCR: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	segments := make([]TextSegment, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		segments = append(segments, TextSegment{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			BBox: []float64{
				float64(box.Box.Min.X), float64(box.Box.Min.Y),
				float64(box.Box.Max.X), float64(box.Box.Max.Y),
			},
		})
	}

	return &Result{ImagePath: imagePath, TextSegments: segments}, nil
}
