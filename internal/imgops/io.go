package imgops

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Open loads an image from disk.
//
// Supported formats are PNG, JPEG, GIF, TIFF and BMP. A missing file
// produces the standard actionable error telling the client to send a
// full path.
func Open(path string) (image.Image, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("Input file not found: %s. Please provide a full path to the file.", path)
		}
		return nil, fmt.Errorf("failed to access input file %s: %w", path, err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	return img, nil
}

// Save writes an image to disk, creating missing parent directories.
// The encoding format is chosen from the file extension.
func Save(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// OutputPath returns outputPath unchanged when set, otherwise derives a
// path from the input by appending suffix before the extension:
// ("/a/photo.png", "", "_cropped") -> "/a/photo_cropped.png".
func OutputPath(inputPath, outputPath, suffix string) string {
	if outputPath != "" {
		return outputPath
	}
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + suffix + ext
}
