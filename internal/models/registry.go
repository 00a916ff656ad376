// Package models manages the local model store used by the detection
// tools: the models/ directory, the model_descriptions.json manifest and
// downloads from the Ultralytics release assets or Hugging Face.
package models

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dir is the model store location, relative to the working directory.
const Dir = "models"

// ManifestFile is the description manifest inside the model store.
const ManifestFile = "model_descriptions.json"

// modelExtensions are the file extensions treated as model weights.
var modelExtensions = map[string]bool{
	".pt": true, ".pth": true, ".onnx": true, ".tflite": true, ".pb": true,
}

// Info describes one model available in the store.
type Info struct {
	Name        string `json:"name"`        // store-relative name, forward slashes
	Description string `json:"description"`
	Path        string `json:"path"` // filesystem path
}

// EnsureDir creates the model store directory if needed and returns its path.
func EnsureDir() (string, error) {
	if err := os.MkdirAll(Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create models directory: %w", err)
	}
	return Dir, nil
}

// Path returns the filesystem path for a store-relative model name. The
// file is not required to exist.
func Path(name string) string {
	return filepath.Join(Dir, filepath.FromSlash(name))
}

// Exists reports whether a named model is present in the store.
func Exists(name string) bool {
	info, err := os.Stat(Path(name))
	return err == nil && !info.IsDir()
}

// List scans the store recursively and returns every model file with its
// manifest description, sorted by name. A missing store yields an empty
// list, not an error.
func List() ([]Info, error) {
	manifest, _ := readManifest()

	var found []Info
	err := filepath.WalkDir(Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !modelExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(Dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		found = append(found, Info{
			Name:        name,
			Description: describeFromManifest(manifest, name),
			Path:        path,
		})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to scan models directory: %w", err)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	if found == nil {
		found = []Info{}
	}
	return found, nil
}

func describeFromManifest(manifest map[string]string, name string) string {
	if desc, ok := manifest[name]; ok {
		return desc
	}
	for key, desc := range manifest {
		if strings.EqualFold(key, name) {
			return desc
		}
	}
	return fmt.Sprintf("Model %q not found in %s", name, ManifestFile)
}

func manifestPath() string {
	return filepath.Join(Dir, ManifestFile)
}

func readManifest() (map[string]string, error) {
	data, err := os.ReadFile(manifestPath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", manifestPath(), err)
	}
	manifest := map[string]string{}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestPath(), err)
	}
	return manifest, nil
}

func writeManifest(manifest map[string]string) error {
	if _, err := EnsureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath(), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", manifestPath(), err)
	}
	return nil
}

// SetDescription records (or replaces) a model description in the manifest.
func SetDescription(name, description string) error {
	manifest, err := readManifest()
	if err != nil {
		return err
	}
	manifest[name] = description
	return writeManifest(manifest)
}
