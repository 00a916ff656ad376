package models

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
)

// ultralyticsReleaseBase hosts the official Ultralytics weight files.
const ultralyticsReleaseBase = "https://github.com/ultralytics/assets/releases/download/v8.3.0"

var httpClient = &http.Client{Timeout: 30 * time.Minute}

// Download fetches a model into the store and records its manifest entry.
//
// Two spec forms are accepted:
//
//   - a bare file name known to Ultralytics ("yolov8m.pt", "yolo11n.pt"):
//     fetched from the Ultralytics release assets
//   - a Hugging Face spec "owner/repo:file.onnx" (or "owner/repo", which
//     picks file "model.onnx"): fetched from the repository's resolve URL
//     and stored under owner/repo/file.onnx
//
// Models already present are skipped. Returns the store-relative name.
func Download(spec string, log zerolog.Logger) (string, error) {
	if _, err := EnsureDir(); err != nil {
		return "", err
	}

	if strings.Contains(spec, "/") {
		return downloadHuggingFace(spec, log)
	}
	return downloadUltralytics(spec, log)
}

// ultralyticsURL builds the release-asset URL for a model file name. Names
// are not restricted to the built-in description list, so newly published
// assets stay fetchable; a missing asset surfaces as HTTP 404 from the
// download itself.
func ultralyticsURL(name string) (string, error) {
	if name != filepath.Base(name) || !modelExtensions[strings.ToLower(filepath.Ext(name))] {
		return "", fmt.Errorf("invalid model name %q: use a model file name (e.g. 'yolov8m.pt') or a Hugging Face 'owner/repo:file' spec", name)
	}
	return ultralyticsReleaseBase + "/" + name, nil
}

func downloadUltralytics(name string, log zerolog.Logger) (string, error) {
	url, err := ultralyticsURL(name)
	if err != nil {
		return "", err
	}
	if Exists(name) {
		log.Info().Str("model", name).Msg("model already present, skipping download")
		return name, nil
	}

	if err := fetch(url, Path(name)); err != nil {
		return "", err
	}
	desc, ok := builtinDescriptions[name]
	if !ok {
		desc = fmt.Sprintf("Model from the Ultralytics release assets (%s)", name)
	}
	if err := SetDescription(name, desc); err != nil {
		return "", err
	}
	log.Info().Str("model", name).Str("url", url).Msg("model downloaded")
	return name, nil
}

func downloadHuggingFace(spec string, log zerolog.Logger) (string, error) {
	repo := spec
	file := "model.onnx"
	if idx := strings.LastIndex(spec, ":"); idx >= 0 {
		repo = spec[:idx]
		file = spec[idx+1:]
	}
	if strings.Count(repo, "/") != 1 || file == "" {
		return "", fmt.Errorf("invalid Hugging Face model spec %q: use 'owner/repo:file'", spec)
	}

	name := repo + "/" + filepath.Base(file)
	if Exists(name) {
		log.Info().Str("model", name).Msg("model already present, skipping download")
		return name, nil
	}

	url := fmt.Sprintf("https://huggingface.co/%s/resolve/main/%s", repo, file)
	if err := fetch(url, Path(name)); err != nil {
		return "", err
	}
	if err := SetDescription(name, fmt.Sprintf("Model from Hugging Face repository %s", repo)); err != nil {
		return "", err
	}
	log.Info().Str("model", name).Str("url", url).Msg("model downloaded")
	return name, nil
}

// fetch streams a URL to dest through a temp file, with a progress bar on
// stderr, renaming into place only on success.
func fetch(url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
	}

	resp, err := httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("download from %s failed: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download from %s failed: HTTP %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".download-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	bar := progressbar.DefaultBytes(resp.ContentLength, "downloading "+filepath.Base(dest))
	if _, err := io.Copy(io.MultiWriter(tmp, bar), resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("download from %s interrupted: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to finish writing %s: %w", dest, err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to move model into place: %w", err)
	}
	return nil
}
