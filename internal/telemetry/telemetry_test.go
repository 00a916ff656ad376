package telemetry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelmill/pixelmill-mcp/internal/logging"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestTrackPostsEvent(t *testing.T) {
	chdirTemp(t)

	received := make(chan Event, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		received <- ev
	}))
	defer ts.Close()

	c := New(true, logging.Nop())
	c.endpoint = ts.URL

	c.Track("tool_call", map[string]any{"tool": "crop", "success": true})

	select {
	case ev := <-received:
		assert.Equal(t, "tool_call", ev.Name)
		assert.NotEmpty(t, ev.DeviceID)
		assert.Equal(t, "crop", ev.Properties["tool"])
	case <-time.After(2 * time.Second):
		t.Fatal("no telemetry event received")
	}
}

func TestDisabledClientIsNoOp(t *testing.T) {
	chdirTemp(t)

	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer ts.Close()

	c := New(false, logging.Nop())
	c.endpoint = ts.URL
	c.Track("tool_call", nil)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, hits)
	assert.Empty(t, c.deviceID)
	assert.NoFileExists(t, deviceIDFile)
}

func TestDeviceIDPersists(t *testing.T) {
	chdirTemp(t)

	first := loadOrCreateDeviceID(logging.Nop())
	require.NotEmpty(t, first)
	second := loadOrCreateDeviceID(logging.Nop())
	assert.Equal(t, first, second)
}

func TestNilClientTrack(t *testing.T) {
	var c *Client
	c.Track("tool_call", nil) // must not panic
}
