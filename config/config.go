// Package config loads aqpong settings from a JSON file and the environment.
// Command line flags are applied on top by the caller.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ushitora-anqou/aqpong/constant"
)

const (
	EnvConfig = "AQPONG_CONFIG"
	EnvTrace  = "AQPONG_TRACE"
	EnvDebug  = "AQPONG_DEBUG"
	EnvBack   = "AQPONG_BACKEND"
)

var Backends = []string{"sdl", "terminal", "ebiten", "headless"}

type Config struct {
	Backend string `json:"backend"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Scale   int    `json:"scale"`

	// FrameDelayMs is passed to Delay every frame. When 0 the loop is paced
	// to FPS by a TimeSynchronizer instead.
	FrameDelayMs int     `json:"frame_delay_ms"`
	FPS          float64 `json:"fps"`
	// Frames stops the loop after that many frames. 0 runs until quit.
	Frames int `json:"frames"`

	Scoring   bool     `json:"scoring"`
	WinScore  int      `json:"win_score"`
	Autopilot []string `json:"autopilot"`
	Sound     bool     `json:"sound"`
	KeyHoldMs int      `json:"key_hold_ms"`

	Record        string `json:"record"`
	FfmpegPath    string `json:"ffmpeg"`
	Codec         string `json:"codec"`
	ScreenshotDir string `json:"screenshot_dir"`

	Debug bool `json:"debug"`
	Trace bool `json:"trace"`
}

func Default() Config {
	return Config{
		Backend:       "sdl",
		Width:         constant.WINDOW_WIDTH,
		Height:        constant.WINDOW_HEIGHT,
		Scale:         1,
		FrameDelayMs:  constant.FRAME_DELAY,
		FPS:           constant.TARGET_FPS,
		Scoring:       true,
		Sound:         true,
		KeyHoldMs:     constant.TERMINAL_KEY_HOLD_MS,
		ScreenshotDir: ".",
	}
}

// DefaultPath returns $AQPONG_CONFIG, or config.json under the user config
// directory.
func DefaultPath() (string, error) {
	if path := os.Getenv(EnvConfig); path != "" {
		return path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "aqpong", "config.json"), nil
}

// Load reads path over the defaults. A missing file is only an error when
// required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func parseBool(name, v string) (bool, error) {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s=%q: %w", name, v, err)
	}
	return b, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvTrace); v != "" {
		b, err := parseBool(EnvTrace, v)
		if err != nil {
			return err
		}
		c.Trace = b
	}
	if v := getenv(EnvDebug); v != "" {
		b, err := parseBool(EnvDebug, v)
		if err != nil {
			return err
		}
		c.Debug = b
	}
	if v := getenv(EnvBack); v != "" {
		c.Backend = v
	}
	return nil
}

func (c *Config) Validate() error {
	valid := false
	for _, b := range Backends {
		valid = valid || c.Backend == b
	}
	if !valid {
		return fmt.Errorf("config: unknown backend %q (want one of %s)", c.Backend, strings.Join(Backends, ", "))
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: invalid size %dx%d", c.Width, c.Height)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("config: invalid scale %d", c.Scale)
	}
	if c.FrameDelayMs < 0 || c.Frames < 0 || c.WinScore < 0 || c.KeyHoldMs < 0 {
		return fmt.Errorf("config: negative frame_delay_ms, frames, win_score or key_hold_ms")
	}
	if c.FrameDelayMs == 0 && c.FPS <= 0 {
		return fmt.Errorf("config: fps must be positive when frame_delay_ms is 0")
	}
	for _, side := range c.Autopilot {
		if side != "left" && side != "right" {
			return fmt.Errorf("config: unknown autopilot side %q", side)
		}
	}
	return nil
}

// AutopilotSides reports which sides the computer steers, left first.
func (c *Config) AutopilotSides() [2]bool {
	var sides [2]bool
	for _, side := range c.Autopilot {
		switch side {
		case "left":
			sides[0] = true
		case "right":
			sides[1] = true
		}
	}
	return sides
}

// RecordFPS is the frame rate written into recordings.
func (c *Config) RecordFPS() int {
	if c.FrameDelayMs > 0 {
		return max(1, 1000/c.FrameDelayMs)
	}
	return max(1, int(c.FPS))
}
