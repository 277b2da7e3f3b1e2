// Package config loads driver configuration: defaults, then an optional YAML
// file, then environment overrides, in that precedence order.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DesktopConfig names the container and its starting host ports.
type DesktopConfig struct {
	Name           string `yaml:"name"`
	Image          string `yaml:"image"`
	VNCPort        int    `yaml:"vnc_port"`
	APIPort        int    `yaml:"api_port"`
	MarionettePort int    `yaml:"marionette_port"`
	SocatPort      int    `yaml:"socat_port"`
}

// Config is the full driver configuration.
type Config struct {
	Model         string        `yaml:"model"`
	DisplayWidth  int           `yaml:"display_width"`
	DisplayHeight int           `yaml:"display_height"`
	Environment   string        `yaml:"environment"`
	MaxTurns      int           `yaml:"max_turns"`
	SnapshotDir   string        `yaml:"snapshot_dir"`
	Desktop       DesktopConfig `yaml:"desktop"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Model:         "computer-use-preview",
		DisplayWidth:  1024,
		DisplayHeight: 768,
		Environment:   "linux",
		MaxTurns:      50,
		SnapshotDir:   ".deskdriver/snapshots",
		Desktop: DesktopConfig{
			VNCPort:        5900,
			APIPort:        8000,
			MarionettePort: 3838,
			SocatPort:      2828,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (optional: an
// empty path or a missing file is fine), and DESK_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DESK_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("DESK_MAX_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTurns = n
		}
	}
	if v := os.Getenv("DESK_SNAPSHOT_DIR"); v != "" {
		cfg.SnapshotDir = v
	}
	if v := os.Getenv("DESK_CONTAINER_NAME"); v != "" {
		cfg.Desktop.Name = v
	}
	if v := os.Getenv("DESK_IMAGE"); v != "" {
		cfg.Desktop.Image = v
	}
}
