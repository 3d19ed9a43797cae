// Package config loads the ridgeline daemon configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mcuadros/go-defaults"

	"github.com/ayusman/ridgeline/internal/detector"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete daemon configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Store    StoreConfig    `toml:"store"`
	Log      LogConfig      `toml:"log"`
	Match    MatchConfig    `toml:"match"`
	Vision   VisionConfig   `toml:"vision"`
	Skeleton SkeletonConfig `toml:"skeleton"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string `toml:"addr" default:":8080"`
}

// StoreConfig holds the enrollment database location.
type StoreConfig struct {
	Path string `toml:"path" default:"~/.ridgeline/ridgeline.db"`
}

// LogConfig controls rotating log files. An empty Dir logs to stderr only.
type LogConfig struct {
	Dir      string `toml:"dir"`
	Rotation string `toml:"rotation" default:"24h"`
	MaxAge   string `toml:"max_age" default:"168h"`
}

// MatchConfig holds the match filter and identification thresholds.
type MatchConfig struct {
	Threshold float64 `toml:"threshold" default:"45.0"`
	MinScore  int     `toml:"min_score" default:"15"`
}

// VisionConfig selects the feature pipeline.
type VisionConfig struct {
	Detector string `toml:"detector" default:"sift"`
	Thin     bool   `toml:"thin" default:"true"`
}

// SkeletonConfig tunes the thinning worker pool. Zero workers means one per CPU.
type SkeletonConfig struct {
	Workers int `toml:"workers" default:"0"`
}

// Default returns a Config populated from the default tags.
func Default() *Config {
	c := &Config{}
	defaults.SetDefaults(c)
	return c
}

// DefaultPath returns the default config file location, ~/.ridgeline/config.toml.
func DefaultPath() string {
	return ExpandPath("~/.ridgeline/config.toml")
}

// Load returns the defaults overlaid with the TOML file at path.
// An empty path yields the defaults alone.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	md, err := toml.DecodeFile(ExpandPath(path), c)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown keys %v", ErrInvalidConfig, undecoded)
	}

	return c, nil
}

// Validate checks every setting and returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("%w: store.path is empty", ErrInvalidConfig)
	}
	if !(c.Match.Threshold > 0) {
		return fmt.Errorf("%w: match.threshold must be positive, got %v", ErrInvalidConfig, c.Match.Threshold)
	}
	if c.Match.MinScore < 0 {
		return fmt.Errorf("%w: match.min_score must not be negative, got %d", ErrInvalidConfig, c.Match.MinScore)
	}
	if _, err := detector.ParseKind(c.Vision.Detector); err != nil {
		return fmt.Errorf("%w: vision.detector: %v", ErrInvalidConfig, err)
	}
	if c.Skeleton.Workers < 0 {
		return fmt.Errorf("%w: skeleton.workers must not be negative, got %d", ErrInvalidConfig, c.Skeleton.Workers)
	}
	if _, err := c.Log.RotationTime(); err != nil {
		return fmt.Errorf("%w: log.rotation: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Log.MaxAgeDuration(); err != nil {
		return fmt.Errorf("%w: log.max_age: %v", ErrInvalidConfig, err)
	}
	return nil
}

// RotationTime parses the log rotation interval.
func (l LogConfig) RotationTime() (time.Duration, error) {
	return parsePositiveDuration(l.Rotation)
}

// MaxAgeDuration parses how long rotated logs are kept.
func (l LogConfig) MaxAgeDuration() (time.Duration, error) {
	return parsePositiveDuration(l.MaxAge)
}

// DetectorKind returns the configured detector kind.
func (v VisionConfig) DetectorKind() (detector.Kind, error) {
	return detector.ParseKind(v.Detector)
}

// EffectiveWorkers resolves a zero worker count to runtime.NumCPU().
func (s SkeletonConfig) EffectiveWorkers() int {
	if s.Workers <= 0 {
		return runtime.NumCPU()
	}
	return s.Workers
}

func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
