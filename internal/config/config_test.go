package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	want := &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Store:    StoreConfig{Path: "~/.ridgeline/ridgeline.db"},
		Log:      LogConfig{Dir: "", Rotation: "24h", MaxAge: "168h"},
		Match:    MatchConfig{Threshold: 45.0, MinScore: 15},
		Vision:   VisionConfig{Detector: "sift", Thin: true},
		Skeleton: SkeletonConfig{Workers: 0},
	}

	if diff := cmp.Diff(want, Default()); diff != "" {
		t.Errorf("Default() mismatch (-want +got):\n%s", diff)
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(Default(), c); diff != "" {
		t.Errorf("Load(\"\") mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
addr = "127.0.0.1:9000"

[match]
threshold = 30.5

[vision]
detector = "orb"
thin = false

[skeleton]
workers = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Default()
	want.Server.Addr = "127.0.0.1:9000"
	want.Match.Threshold = 30.5
	want.Vision.Detector = "orb"
	want.Vision.Thin = false
	want.Skeleton.Workers = 4

	if diff := cmp.Diff(want, c); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist for missing file, got %v", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[server\naddr ="), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected parse error for malformed TOML")
	}

	unknown := filepath.Join(dir, "unknown.toml")
	if err := os.WriteFile(unknown, []byte("[match]\nthreshhold = 10\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(unknown); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for misspelled key, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = " " }},
		{"empty store path", func(c *Config) { c.Store.Path = "" }},
		{"zero threshold", func(c *Config) { c.Match.Threshold = 0 }},
		{"negative threshold", func(c *Config) { c.Match.Threshold = -1 }},
		{"negative min score", func(c *Config) { c.Match.MinScore = -1 }},
		{"unknown detector", func(c *Config) { c.Vision.Detector = "surf" }},
		{"negative workers", func(c *Config) { c.Skeleton.Workers = -2 }},
		{"bad rotation", func(c *Config) { c.Log.Rotation = "daily" }},
		{"zero max age", func(c *Config) { c.Log.MaxAge = "0s" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestAccessors(t *testing.T) {
	c := Default()

	rot, err := c.Log.RotationTime()
	if err != nil || rot != 24*time.Hour {
		t.Errorf("expected 24h rotation, got %v (%v)", rot, err)
	}
	age, err := c.Log.MaxAgeDuration()
	if err != nil || age != 7*24*time.Hour {
		t.Errorf("expected 168h max age, got %v (%v)", age, err)
	}
	if kind, err := c.Vision.DetectorKind(); err != nil || kind != "sift" {
		t.Errorf("expected sift, got %q (%v)", kind, err)
	}

	if got := c.Skeleton.EffectiveWorkers(); got != runtime.NumCPU() {
		t.Errorf("expected %d workers, got %d", runtime.NumCPU(), got)
	}
	c.Skeleton.Workers = 3
	if got := c.Skeleton.EffectiveWorkers(); got != 3 {
		t.Errorf("expected 3 workers, got %d", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/.ridgeline/x.db", filepath.Join(home, ".ridgeline/x.db")},
		{"/abs/path.db", "/abs/path.db"},
		{"relative.db", "relative.db"},
		{"~other/x", "~other/x"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := DefaultPath(); got != filepath.Join(home, ".ridgeline/config.toml") {
		t.Errorf("unexpected DefaultPath %q", got)
	}
}
