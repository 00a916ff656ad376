package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp moves the test into a temp working directory, since the model
// store is resolved relative to it.
func chdirTemp(t *testing.T) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func touchModel(t *testing.T, name string) {
	t.Helper()
	path := Path(name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("weights"), 0o644))
}

func TestListMissingStore(t *testing.T) {
	chdirTemp(t)

	list, err := List()
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestListFindsModelsWithDescriptions(t *testing.T) {
	chdirTemp(t)
	touchModel(t, "yolov8m.onnx")
	touchModel(t, "custom/repo/model.onnx")
	require.NoError(t, SetDescription("yolov8m.onnx", "medium model"))

	list, err := List()
	require.NoError(t, err)
	require.Len(t, list, 2)

	// Sorted by name.
	assert.Equal(t, "custom/repo/model.onnx", list[0].Name)
	assert.Contains(t, list[0].Description, "not found")
	assert.Equal(t, "yolov8m.onnx", list[1].Name)
	assert.Equal(t, "medium model", list[1].Description)
	assert.Equal(t, Path("yolov8m.onnx"), list[1].Path)
}

func TestListIgnoresNonModelFiles(t *testing.T) {
	chdirTemp(t)
	touchModel(t, "yolov8n.onnx")
	_, err := EnsureDir()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(Dir, "readme.txt"), []byte("hi"), 0o644))

	list, err := List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "yolov8n.onnx", list[0].Name)
}

func TestExists(t *testing.T) {
	chdirTemp(t)
	assert.False(t, Exists("yolov8m.onnx"))

	touchModel(t, "yolov8m.onnx")
	assert.True(t, Exists("yolov8m.onnx"))
}

func TestWriteDescriptionsSeedsManifest(t *testing.T) {
	chdirTemp(t)

	path, err := WriteDescriptions()
	require.NoError(t, err)
	assert.FileExists(t, path)

	manifest, err := readManifest()
	require.NoError(t, err)
	assert.Contains(t, manifest, "yolov8m.onnx")
}

func TestWriteDescriptionsKeepsCustomEntries(t *testing.T) {
	chdirTemp(t)
	require.NoError(t, SetDescription("custom/repo/model.onnx", "my model"))

	_, err := WriteDescriptions()
	require.NoError(t, err)

	manifest, err := readManifest()
	require.NoError(t, err)
	assert.Equal(t, "my model", manifest["custom/repo/model.onnx"])
	assert.Contains(t, manifest, "yolov8n.onnx")
}
