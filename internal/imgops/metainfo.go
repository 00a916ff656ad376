package imgops

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
)

// MetaInfo describes an image file without modifying it.
type MetaInfo struct {
	Path          string  `json:"path"`
	Filename      string  `json:"filename"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Format        string  `json:"format"`
	ColorDepth    string  `json:"color_depth"`
	HasAlpha      bool    `json:"has_alpha"`
	FileSizeBytes int64   `json:"file_size_bytes"`
	AspectRatio   float64 `json:"aspect_ratio"`
}

// GetMetaInfo loads an image and reports its metadata.
//
// Format is derived from the file extension. Color depth reflects the
// decoded Go image type: 16-bit for the 16-bit-per-channel types, 8-bit
// otherwise.
func GetMetaInfo(path string) (*MetaInfo, error) {
	img, err := Open(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		format = "png"
	case ".jpg", ".jpeg":
		format = "jpeg"
	case ".gif":
		format = "gif"
	case ".tif", ".tiff":
		format = "tiff"
	case ".bmp":
		format = "bmp"
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	var ratio float64
	if h > 0 {
		ratio = float64(w) / float64(h)
	}

	return &MetaInfo{
		Path:          path,
		Filename:      filepath.Base(path),
		Width:         w,
		Height:        h,
		Format:        format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: stat.Size(),
		AspectRatio:   ratio,
	}, nil
}
