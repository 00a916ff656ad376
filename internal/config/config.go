// Package config manages server configuration.
//
// Settings are loaded from a TOML file (config.toml in the working
// directory by default) and can be adjusted at runtime through the MCP
// config tool. Runtime overrides are layered over the file contents and
// can optionally be persisted back to it.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// DefaultFile is the configuration file name, relative to the working directory.
const DefaultFile = "config.toml"

// Detection holds object-detection tool settings.
type Detection struct {
	ConfidenceThreshold float64 `toml:"confidence_threshold" json:"confidence_threshold"`
	DefaultModel        string  `toml:"default_model" json:"default_model"`
}

// Find holds find-tool settings.
type Find struct {
	ConfidenceThreshold float64 `toml:"confidence_threshold" json:"confidence_threshold"`
	DefaultModel        string  `toml:"default_model" json:"default_model"`
}

// Blur holds blur-tool settings. Strength is a Gaussian kernel size and
// must be odd.
type Blur struct {
	Strength int `toml:"strength" json:"strength"`
}

// Text holds text-drawing settings.
type Text struct {
	FontScale float64 `toml:"font_scale" json:"font_scale"`
}

// Drawing holds shared drawing defaults. Color is BGR, matching the
// argument format of the draw tools.
type Drawing struct {
	Color     []int `toml:"color" json:"color"`
	Thickness int   `toml:"thickness" json:"thickness"`
}

// OCR holds OCR tool settings.
type OCR struct {
	Language string `toml:"language" json:"language"`
}

// Resize holds resize-tool settings.
type Resize struct {
	Interpolation string `toml:"interpolation" json:"interpolation"`
}

// Telemetry holds usage-reporting settings. Disabled unless explicitly
// turned on.
type Telemetry struct {
	Enabled bool `toml:"enabled" json:"enabled"`
}

// Config is the complete server configuration.
type Config struct {
	Detection Detection `toml:"detection" json:"detection"`
	Find      Find      `toml:"find" json:"find"`
	Blur      Blur      `toml:"blur" json:"blur"`
	Text      Text      `toml:"text" json:"text"`
	Drawing   Drawing   `toml:"drawing" json:"drawing"`
	OCR       OCR       `toml:"ocr" json:"ocr"`
	Resize    Resize    `toml:"resize" json:"resize"`
	Telemetry Telemetry `toml:"telemetry" json:"telemetry"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Detection: Detection{ConfidenceThreshold: 0.75, DefaultModel: "yolov8m.onnx"},
		Find:      Find{ConfidenceThreshold: 0.75, DefaultModel: "yolov8m.onnx"},
		Blur:      Blur{Strength: 15},
		Text:      Text{FontScale: 1.0},
		Drawing:   Drawing{Color: []int{0, 0, 0}, Thickness: 1},
		OCR:       OCR{Language: "en"},
		Resize:    Resize{Interpolation: "linear"},
		Telemetry: Telemetry{Enabled: false},
	}
}

var validInterpolations = map[string]bool{
	"nearest": true, "linear": true, "area": true, "cubic": true, "lanczos": true,
}

// Validate checks every field against its allowed range. It reports the
// first violation found so the config tool can reject bad updates atomically.
func (c Config) Validate() error {
	if c.Detection.ConfidenceThreshold < 0 || c.Detection.ConfidenceThreshold > 1 {
		return fmt.Errorf("detection.confidence_threshold must be between 0.0 and 1.0, got %v", c.Detection.ConfidenceThreshold)
	}
	if c.Find.ConfidenceThreshold < 0 || c.Find.ConfidenceThreshold > 1 {
		return fmt.Errorf("find.confidence_threshold must be between 0.0 and 1.0, got %v", c.Find.ConfidenceThreshold)
	}
	if c.Blur.Strength < 1 {
		return fmt.Errorf("blur.strength must be at least 1, got %d", c.Blur.Strength)
	}
	if c.Blur.Strength%2 == 0 {
		return fmt.Errorf("blur.strength must be an odd number, got %d", c.Blur.Strength)
	}
	if c.Text.FontScale <= 0 {
		return fmt.Errorf("text.font_scale must be greater than 0, got %v", c.Text.FontScale)
	}
	if len(c.Drawing.Color) != 3 {
		return fmt.Errorf("drawing.color must have exactly 3 components, got %d", len(c.Drawing.Color))
	}
	for _, v := range c.Drawing.Color {
		if v < 0 || v > 255 {
			return fmt.Errorf("drawing.color values must be between 0 and 255, got %d", v)
		}
	}
	if c.Drawing.Thickness < 1 {
		return fmt.Errorf("drawing.thickness must be at least 1, got %d", c.Drawing.Thickness)
	}
	if !validInterpolations[c.Resize.Interpolation] {
		return fmt.Errorf("resize.interpolation must be one of nearest, linear, area, cubic, lanczos, got %q", c.Resize.Interpolation)
	}
	return nil
}

// Manager loads the configuration file and tracks runtime overrides made
// through the config tool. It is safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	file      string
	base      Config         // file contents merged over defaults
	overrides map[string]any // dotted key -> value, applied over base
	current   Config
	log       zerolog.Logger
}

// NewManager loads (or creates) the configuration file at path.
func NewManager(path string, log zerolog.Logger) (*Manager, error) {
	if path == "" {
		path = DefaultFile
	}
	m := &Manager{file: path, overrides: map[string]any{}, log: log}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) load() error {
	cfg := Default()
	data, err := os.ReadFile(m.file)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", m.file, err)
		}
		m.log.Info().Str("file", m.file).Msg("loaded configuration")
	case os.IsNotExist(err):
		if err := writeFile(m.file, cfg); err != nil {
			return err
		}
		m.log.Info().Str("file", m.file).Msg("created configuration file with defaults")
	default:
		return fmt.Errorf("failed to read %s: %w", m.file, err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration in %s: %w", m.file, err)
	}
	m.base = cfg
	m.current = cfg
	return nil
}

func writeFile(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Current returns a copy of the effective configuration.
func (m *Manager) Current() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Keys returns the settable dotted configuration keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value at a dotted key, or the whole configuration when
// key is empty.
func (m *Manager) Get(key string) (any, error) {
	cfg := m.Current()
	if key == "" {
		return cfg.asMap(), nil
	}
	full := cfg.asMap()
	parts := strings.Split(key, ".")
	var cur any = full
	for _, p := range parts {
		sect, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unknown config key: %s", key)
		}
		cur, ok = sect[p]
		if !ok {
			return nil, fmt.Errorf("unknown config key: %s", key)
		}
	}
	return cur, nil
}

// Set applies a runtime override at a dotted key. The resulting
// configuration is validated before the update takes effect; invalid
// updates are rejected without changing anything. When persist is true the
// merged configuration is also written back to the file.
func (m *Manager) Set(key string, value any, persist bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	setter, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s (available: %s)", key, strings.Join(Keys(), ", "))
	}

	candidate := m.current
	if err := setter(&candidate, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := candidate.Validate(); err != nil {
		return err
	}

	m.current = candidate
	m.overrides[key] = value
	m.log.Info().Str("key", key).Interface("value", value).Bool("persist", persist).Msg("configuration updated")

	if persist {
		m.base = m.current
		m.overrides = map[string]any{}
		return writeFile(m.file, m.current)
	}
	return nil
}

// Reset drops all runtime overrides, returning to the file contents.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.base
	m.overrides = map[string]any{}
	m.log.Info().Msg("configuration runtime overrides reset")
}

// Overrides returns a copy of the active runtime overrides.
func (m *Manager) Overrides() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.overrides))
	for k, v := range m.overrides {
		out[k] = v
	}
	return out
}

func (c Config) asMap() map[string]any {
	return map[string]any{
		"detection": map[string]any{
			"confidence_threshold": c.Detection.ConfidenceThreshold,
			"default_model":        c.Detection.DefaultModel,
		},
		"find": map[string]any{
			"confidence_threshold": c.Find.ConfidenceThreshold,
			"default_model":        c.Find.DefaultModel,
		},
		"blur":    map[string]any{"strength": c.Blur.Strength},
		"text":    map[string]any{"font_scale": c.Text.FontScale},
		"drawing": map[string]any{"color": c.Drawing.Color, "thickness": c.Drawing.Thickness},
		"ocr":     map[string]any{"language": c.OCR.Language},
		"resize":  map[string]any{"interpolation": c.Resize.Interpolation},
		"telemetry": map[string]any{
			"enabled": c.Telemetry.Enabled,
		},
	}
}

// setters maps dotted keys to typed update functions. JSON decoding hands
// us float64 for every number, so integer fields go through asInt.
var setters = map[string]func(*Config, any) error{
	"detection.confidence_threshold": func(c *Config, v any) error { return asFloat(v, &c.Detection.ConfidenceThreshold) },
	"detection.default_model":        func(c *Config, v any) error { return asString(v, &c.Detection.DefaultModel) },
	"find.confidence_threshold":      func(c *Config, v any) error { return asFloat(v, &c.Find.ConfidenceThreshold) },
	"find.default_model":             func(c *Config, v any) error { return asString(v, &c.Find.DefaultModel) },
	"blur.strength":                  func(c *Config, v any) error { return asInt(v, &c.Blur.Strength) },
	"text.font_scale":                func(c *Config, v any) error { return asFloat(v, &c.Text.FontScale) },
	"drawing.color":                  func(c *Config, v any) error { return asIntSlice(v, &c.Drawing.Color) },
	"drawing.thickness":              func(c *Config, v any) error { return asInt(v, &c.Drawing.Thickness) },
	"ocr.language":                   func(c *Config, v any) error { return asString(v, &c.OCR.Language) },
	"resize.interpolation":           func(c *Config, v any) error { return asString(v, &c.Resize.Interpolation) },
	"telemetry.enabled":              func(c *Config, v any) error { return asBool(v, &c.Telemetry.Enabled) },
}

func asFloat(v any, dst *float64) error {
	switch n := v.(type) {
	case float64:
		*dst = n
	case int:
		*dst = float64(n)
	case int64:
		*dst = float64(n)
	default:
		return fmt.Errorf("expected a number, got %T", v)
	}
	return nil
}

func asInt(v any, dst *int) error {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return fmt.Errorf("expected an integer, got %v", n)
		}
		*dst = int(n)
	case int:
		*dst = n
	case int64:
		*dst = int(n)
	default:
		return fmt.Errorf("expected an integer, got %T", v)
	}
	return nil
}

func asString(v any, dst *string) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("expected a string, got %T", v)
	}
	*dst = s
	return nil
}

func asBool(v any, dst *bool) error {
	b, ok := v.(bool)
	if !ok {
		return fmt.Errorf("expected a boolean, got %T", v)
	}
	*dst = b
	return nil
}

func asIntSlice(v any, dst *[]int) error {
	raw, ok := v.([]any)
	if !ok {
		return fmt.Errorf("expected an array of integers, got %T", v)
	}
	out := make([]int, len(raw))
	for i, e := range raw {
		if err := asInt(e, &out[i]); err != nil {
			return err
		}
	}
	*dst = out
	return nil
}
