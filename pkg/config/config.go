package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"glscene/internal/util"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

// Config represents the main configuration
type Config struct {
	Window  WindowConfig  `yaml:"window" toml:"window"`
	Camera  CameraConfig  `yaml:"camera" toml:"camera"`
	Audio   AudioConfig   `yaml:"audio" toml:"audio"`
	Scripts ScriptsConfig `yaml:"scripts" toml:"scripts"`
	Shaders ShadersConfig `yaml:"shaders" toml:"shaders"`
	Scene   SceneConfig   `yaml:"scene" toml:"scene"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// WindowConfig contains window and frame loop configuration
type WindowConfig struct {
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	Title      string `yaml:"title" toml:"title"`
	Fullscreen bool   `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool   `yaml:"vsync" toml:"vsync"`
	FrameRate  int    `yaml:"framerate" toml:"framerate"` // 0 means uncapped
}

// CameraConfig configures the editor camera
type CameraConfig struct {
	FovyDegrees     float32 `yaml:"fovy_degrees" toml:"fovy_degrees"`
	Near            float32 `yaml:"near" toml:"near"`
	Far             float32 `yaml:"far" toml:"far"` // 0 means infinite
	Speed           float32 `yaml:"speed" toml:"speed"`
	ScrollFactor    float32 `yaml:"scroll_factor" toml:"scroll_factor"`
	Controller      string  `yaml:"controller" toml:"controller"`             // edit, orbit, none
	CollisionRadius float32 `yaml:"collision_radius" toml:"collision_radius"` // 0 lets the camera pass through objects
}

// AudioConfig contains audio-related configuration
type AudioConfig struct {
	Enabled bool    `yaml:"enabled" toml:"enabled"`
	Volume  float64 `yaml:"volume" toml:"volume"`
}

// ScriptsConfig points at the Lua behaviours
type ScriptsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Dir     string `yaml:"dir" toml:"dir"`
}

// ShadersConfig controls shader overrides
type ShadersConfig struct {
	Dir       string `yaml:"dir" toml:"dir"` // empty keeps the built-in sources
	HotReload bool   `yaml:"hot_reload" toml:"hot_reload"`
}

// SceneConfig selects what the viewer shows
type SceneConfig struct {
	Manifest string `yaml:"manifest" toml:"manifest"` // empty uses DefaultManifest
	Grid     bool   `yaml:"grid" toml:"grid"`
}

// LoggingConfig contains logger configuration
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
	File  string `yaml:"file" toml:"file"` // also log to this file when set
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Title:      "glscene",
			Fullscreen: false,
			VSync:      true,
			FrameRate:  60,
		},
		Camera: CameraConfig{
			FovyDegrees:     60,
			Near:            0.1,
			Far:             1000,
			Speed:           3,
			ScrollFactor:    0.1,
			Controller:      "edit",
			CollisionRadius: 0.3,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.8,
		},
		Scripts: ScriptsConfig{
			Enabled: true,
			Dir:     "scripts",
		},
		Shaders: ShadersConfig{
			Dir:       "",
			HotReload: false,
		},
		Scene: SceneConfig{
			Grid: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate rejects values the engine cannot start with
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.FrameRate < 0 {
		return fmt.Errorf("framerate %d must not be negative", c.Window.FrameRate)
	}
	switch c.Camera.Controller {
	case "edit", "orbit", "none":
	default:
		return fmt.Errorf("unknown camera controller %q", c.Camera.Controller)
	}
	if c.Camera.Near <= 0 {
		return fmt.Errorf("camera near plane %v must be positive", c.Camera.Near)
	}
	if c.Camera.Far != 0 && c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("camera far plane %v must exceed near plane %v", c.Camera.Far, c.Camera.Near)
	}
	if c.Camera.CollisionRadius < 0 {
		return fmt.Errorf("camera collision radius %v must not be negative", c.Camera.CollisionRadius)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("audio volume %v must be in [0, 1]", c.Audio.Volume)
	}
	return nil
}

// LoadConfig loads the configuration from a file. It always returns a usable
// config: defaults when the file is missing or broken, alongside the error.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config, fmt.Errorf("config file not found, using defaults: %w", err)
	}

	if err := decode(filePath, data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("error parsing config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("invalid config %s: %w", filePath, err)
	}
	return config, nil
}

// SaveConfig saves the configuration to a file, as toml for a .toml path and
// yaml otherwise
func SaveConfig(config *Config, filePath string) error {
	data, err := encode(filePath, config)
	if err != nil {
		return fmt.Errorf("error serializing config: %w", err)
	}
	if err := util.CreateDirIfNotExist(filepath.Dir(filePath)); err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

func format(filePath string) string {
	return strings.ToLower(filepath.Ext(filePath))
}

func decode(filePath string, data []byte, v any) error {
	switch format(filePath) {
	case ".toml":
		_, err := toml.Decode(string(data), v)
		return err
	case ".json":
		return json.Unmarshal(data, v)
	default:
		return yaml.Unmarshal(data, v)
	}
}

func encode(filePath string, v any) ([]byte, error) {
	switch format(filePath) {
	case ".toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ".json":
		return json.MarshalIndent(v, "", "  ")
	default:
		return yaml.Marshal(v)
	}
}
