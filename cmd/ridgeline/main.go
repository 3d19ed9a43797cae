package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"

	"github.com/ayusman/ridgeline/internal/app"
	"github.com/ayusman/ridgeline/internal/config"
	"github.com/ayusman/ridgeline/internal/server"
	"github.com/ayusman/ridgeline/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.ridgeline/config.toml if present)")
	staticDir := flag.String("static", "", "directory of static web files to serve")
	flag.Parse()

	fmt.Println("Ridgeline - Fingerprint Identification")

	path := *configPath
	if path == "" {
		if _, err := os.Stat(config.DefaultPath()); err == nil {
			path = config.DefaultPath()
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if cfg.Log.Dir != "" {
		closer, err := setupLogging(cfg.Log)
		if err != nil {
			log.Fatalf("Failed to set up logging: %v", err)
		}
		defer closer.Close()
	}
	if path != "" {
		log.Printf("Loaded config from %s", path)
	}

	dbPath := config.ExpandPath(cfg.Store.Path)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	if version, _, err := st.SchemaVersion(); err == nil {
		log.Printf("Database %s at schema version %d", dbPath, version)
	}

	kind, err := cfg.Vision.DetectorKind()
	if err != nil {
		log.Fatalf("Invalid detector: %v", err)
	}

	application, err := app.New(app.Config{
		Store:     st,
		Detector:  kind,
		Threshold: cfg.Match.Threshold,
		MinScore:  cfg.Match.MinScore,
		Thin:      cfg.Vision.Thin,
		Workers:   cfg.Skeleton.EffectiveWorkers(),
	})
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	if err := application.LoadGallery(); err != nil {
		log.Fatalf("Failed to load enrolled templates: %v", err)
	}

	srv := server.New(server.Config{
		StaticDir: *staticDir,
		Service:   application,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting server on %s", cfg.Server.Addr)
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		log.Printf("Server failed: %v", err)
		return
	}
	log.Println("Server stopped")
}

// setupLogging tees the standard logger into daily rotated files under cfg.Dir.
func setupLogging(cfg config.LogConfig) (io.Closer, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, err
	}

	rotation, err := cfg.RotationTime()
	if err != nil {
		return nil, err
	}
	maxAge, err := cfg.MaxAgeDuration()
	if err != nil {
		return nil, err
	}

	rl, err := rotatelogs.New(
		filepath.Join(cfg.Dir, "ridgeline.%Y%m%d%H%M.log"),
		rotatelogs.WithLinkName(filepath.Join(cfg.Dir, "ridgeline.log")),
		rotatelogs.WithRotationTime(rotation),
		rotatelogs.WithMaxAge(maxAge),
	)
	if err != nil {
		return nil, err
	}

	log.SetOutput(io.MultiWriter(os.Stderr, rl))
	return rl, nil
}
