// Package config handles loading and saving tutor configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/tutor/config.yaml
//   - Data:    ~/.local/share/tutor/ (exports, generated pages)
//   - State:   ~/.local/state/tutor/ (progress database)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tutorial represents a registered tutorial root in the config.
type Tutorial struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// UIConfig holds terminal presentation settings.
type UIConfig struct {
	WrapWidth int  `yaml:"wrap_width,omitempty"` // 0 means the terminal width
	NoColor   bool `yaml:"no_color,omitempty"`
}

// RunnerConfig controls snippet execution.
type RunnerConfig struct {
	AutoRunDemos *bool `yaml:"auto_run_demos,omitempty"` // nil means on
}

// ExportConfig holds defaults for the export flags.
type ExportConfig struct {
	SnapshotFormat string `yaml:"snapshot_format,omitempty"` // svg or png
}

// Config is the top-level configuration for tutor.
type Config struct {
	Tutorials []Tutorial     `yaml:"tutorials,omitempty"`
	Favorites map[int]string `yaml:"favorites,omitempty"` // Number key (1-9) -> tutorial name
	UI        UIConfig       `yaml:"ui,omitempty"`
	Runner    RunnerConfig   `yaml:"runner,omitempty"`
	Export    ExportConfig   `yaml:"export,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Favorites: make(map[int]string),
		Export: ExportConfig{
			SnapshotFormat: "svg",
		},
	}
}

// AutoRunDemos reports whether demo sections execute automatically when
// shown. On unless the config disables it.
func (c Config) AutoRunDemos() bool {
	return c.Runner.AutoRunDemos == nil || *c.Runner.AutoRunDemos
}

// ConfigDir returns the XDG config directory for tutor.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tutor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tutor")
}

// DataDir returns the XDG data directory for tutor.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "tutor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "tutor")
}

// StateDir returns the XDG state directory for tutor.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "tutor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "tutor")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// Ensure favorites map is initialized
	if cfg.Favorites == nil {
		cfg.Favorites = make(map[int]string)
	}

	// Expand ~ in tutorial paths
	for i := range cfg.Tutorials {
		cfg.Tutorials[i].Path = expandHome(cfg.Tutorials[i].Path)
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// FindTutorial returns the registered tutorial with the given name, or nil.
func (c Config) FindTutorial(name string) *Tutorial {
	for i := range c.Tutorials {
		if strings.EqualFold(c.Tutorials[i].Name, name) {
			return &c.Tutorials[i]
		}
	}
	return nil
}

// FavoriteTutorial returns the tutorial assigned to number key n (1-9), or nil.
func (c Config) FavoriteTutorial(n int) *Tutorial {
	name, ok := c.Favorites[n]
	if !ok {
		return nil
	}
	return c.FindTutorial(name)
}

// SetFavorite assigns a tutorial name to a number key (1-9).
func (c *Config) SetFavorite(n int, name string) {
	if c.Favorites == nil {
		c.Favorites = make(map[int]string)
	}
	if name == "" {
		delete(c.Favorites, n)
	} else {
		c.Favorites[n] = name
	}
}

// TutorialFavoriteNumber returns the favorite number (1-9) for a tutorial name, or 0 if not favorited.
func (c Config) TutorialFavoriteNumber(name string) int {
	for n, tname := range c.Favorites {
		if strings.EqualFold(tname, name) {
			return n
		}
	}
	return 0
}

// ResolvedPath returns the tutorial path with ~ expanded.
func (t Tutorial) ResolvedPath() string {
	return expandHome(t.Path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
