// Package app orchestrates fingerprint enrollment, verification and identification.
package app

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/ridgeline/internal/detector"
	"github.com/ayusman/ridgeline/internal/match"
	"github.com/ayusman/ridgeline/internal/skeleton"
	"github.com/ayusman/ridgeline/internal/store"
)

// ErrNoStore is returned by gallery operations when the app has no store.
var ErrNoStore = errors.New("no enrollment store configured")

// Config holds configuration options for the application.
type Config struct {
	Store     *store.Store
	Detector  detector.Kind
	Threshold float64 // Good-match distance threshold; 0 means match.DefaultThreshold
	MinScore  int     // Good matches required to identify, exclusive
	Thin      bool    // Skeletonize ridges before feature extraction
	Workers   int     // Thinning workers; 0 means one per CPU
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Detector:  detector.KindSIFT,
		Threshold: match.DefaultThreshold,
		MinScore:  match.DefaultMinScore,
		Thin:      true,
	}
}

// enrolled is a gallery template held in memory for identification.
type enrolled struct {
	templateID  string
	user        *store.User
	descriptors gocv.Mat
}

// App is the fingerprint service: it turns images into descriptors and matches
// them against each other and against the enrolled gallery.
type App struct {
	config   Config
	detector detector.Detector
	matcher  detector.DescriptorMatcher
	thinner  *skeleton.Thinner
	gallery  []*enrolled
	mu       sync.RWMutex
}

// New creates a new App instance with the given configuration.
func New(config Config) (*App, error) {
	if config.Detector == "" {
		config.Detector = detector.KindSIFT
	}
	if config.Threshold == 0 {
		config.Threshold = match.DefaultThreshold
	}
	if math.IsNaN(config.Threshold) || config.Threshold < 0 {
		return nil, fmt.Errorf("%w: %v", match.ErrInvalidThreshold, config.Threshold)
	}

	d, err := detector.NewDetector(detector.Config{Kind: config.Detector})
	if err != nil {
		return nil, err
	}
	m, err := detector.NewMatcher(config.Detector)
	if err != nil {
		d.Close()
		return nil, err
	}

	opts := skeleton.DefaultOptions()
	if config.Workers > 0 {
		opts.Workers = config.Workers
	}

	log.Printf("Using %s features (threshold %.1f, min score %d, thinning %v)",
		config.Detector, config.Threshold, config.MinScore, config.Thin)

	return &App{
		config:   config,
		detector: d,
		matcher:  m,
		thinner:  skeleton.NewThinner(opts),
	}, nil
}

// Config returns the application configuration.
func (a *App) Config() Config {
	return a.config
}

// SetDetector replaces the feature detector, closing the previous one.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.detector != nil {
		a.detector.Close()
	}
	a.detector = d
}

// SetMatcher replaces the descriptor matcher, closing the previous one.
func (a *App) SetMatcher(m detector.DescriptorMatcher) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.matcher != nil {
		a.matcher.Close()
	}
	a.matcher = m
}

// LoadGallery loads enrolled templates from the database into memory.
func (a *App) LoadGallery() error {
	if a.config.Store == nil {
		return nil
	}

	users, err := a.config.Store.Users().List()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	byID := make(map[string]*store.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	templates, err := a.config.Store.Templates().ListAll()
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	gallery := make([]*enrolled, 0, len(templates))
	for _, t := range templates {
		if t.Detector != string(a.config.Detector) {
			log.Printf("Skipping template %s: enrolled with %s, using %s", t.ID, t.Detector, a.config.Detector)
			continue
		}
		desc, err := detector.DecodeDescriptors(t.Descriptors)
		if err != nil {
			log.Printf("Failed to decode template %s: %v", t.ID, err)
			continue
		}
		gallery = append(gallery, &enrolled{templateID: t.ID, user: byID[t.UserID], descriptors: desc})
	}

	a.mu.Lock()
	old := a.gallery
	a.gallery = gallery
	a.mu.Unlock()
	closeGallery(old)

	log.Printf("Loaded %d templates from database", len(gallery))
	return nil
}

// GallerySize returns the number of templates available for identification.
func (a *App) GallerySize() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.gallery)
}

// Users lists the enrolled users.
func (a *App) Users() ([]*store.User, error) {
	if a.config.Store == nil {
		return nil, ErrNoStore
	}
	return a.config.Store.Users().List()
}

// User returns one enrolled user.
func (a *App) User(id string) (*store.User, error) {
	if a.config.Store == nil {
		return nil, ErrNoStore
	}
	return a.config.Store.Users().GetByID(id)
}

// RemoveUser deletes a user, its templates, and their gallery entries.
func (a *App) RemoveUser(id string) error {
	if a.config.Store == nil {
		return ErrNoStore
	}
	if err := a.config.Store.Users().Delete(id); err != nil {
		return err
	}

	a.mu.Lock()
	kept := a.gallery[:0]
	var removed []*enrolled
	for _, e := range a.gallery {
		if e.user != nil && e.user.ID == id {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	a.gallery = kept
	a.mu.Unlock()
	closeGallery(removed)

	log.Printf("Removed user %s (%d templates)", id, len(removed))
	return nil
}

// Close releases the detector, the matcher and the in-memory gallery.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.detector != nil {
		errs = append(errs, a.detector.Close())
		a.detector = nil
	}
	if a.matcher != nil {
		errs = append(errs, a.matcher.Close())
		a.matcher = nil
	}
	closeGallery(a.gallery)
	a.gallery = nil

	return errors.Join(errs...)
}

func closeGallery(entries []*enrolled) {
	for _, e := range entries {
		e.descriptors.Close()
	}
}
