// Package telemetry sends opt-in, anonymous usage events.
//
// Events are fire-and-forget HTTP posts identified only by a random,
// locally persisted device id. Nothing about image contents or file paths
// leaves the machine. The client is a no-op unless telemetry is enabled in
// the configuration.
package telemetry

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultEndpoint receives usage events.
const DefaultEndpoint = "https://telemetry.pixelmill.dev/v1/events"

// deviceIDFile persists the anonymous device id, relative to the working
// directory (next to config.toml).
const deviceIDFile = ".pixelmill_device_id"

// Event is one usage record.
type Event struct {
	Name       string         `json:"event"`
	DeviceID   string         `json:"device_id"`
	Timestamp  time.Time      `json:"timestamp"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Client posts events when enabled. The zero value is unusable; use New.
type Client struct {
	enabled  bool
	endpoint string
	deviceID string
	http     *http.Client
	log      zerolog.Logger
}

// New builds a telemetry client. When enabled is false every Track call is
// a no-op, and no device id is created.
func New(enabled bool, log zerolog.Logger) *Client {
	c := &Client{
		enabled:  enabled,
		endpoint: DefaultEndpoint,
		http:     &http.Client{Timeout: 5 * time.Second},
		log:      log,
	}
	if enabled {
		c.deviceID = loadOrCreateDeviceID(log)
	}
	return c
}

// Track sends one event in the background. It never blocks the caller and
// never surfaces errors: telemetry must not affect tool calls.
func (c *Client) Track(name string, properties map[string]any) {
	if c == nil || !c.enabled {
		return
	}
	ev := Event{
		Name:       name,
		DeviceID:   c.deviceID,
		Timestamp:  time.Now().UTC(),
		Properties: properties,
	}
	go func() {
		body, err := json.Marshal(ev)
		if err != nil {
			return
		}
		resp, err := c.http.Post(c.endpoint, "application/json", bytes.NewReader(body))
		if err != nil {
			c.log.Debug().Err(err).Msg("telemetry post failed")
			return
		}
		resp.Body.Close()
	}()
}

func loadOrCreateDeviceID(log zerolog.Logger) string {
	path := filepath.Clean(deviceIDFile)
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}
	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		log.Debug().Err(err).Msg("failed to persist telemetry device id")
	}
	return id
}
