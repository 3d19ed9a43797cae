package app

import (
	"fmt"
	"image/color"
	"log"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ayusman/ridgeline/internal/capture"
	"github.com/ayusman/ridgeline/internal/detector"
	"github.com/ayusman/ridgeline/internal/match"
	"github.com/ayusman/ridgeline/internal/skeleton"
	"github.com/ayusman/ridgeline/internal/store"
)

// Extraction is one image run through the pipeline.
type Extraction struct {
	Features *detector.Features
	Skeleton *skeleton.Result // nil when thinning is disabled
}

// Close releases the extracted descriptors.
func (e *Extraction) Close() error {
	return e.Features.Close()
}

// Comparison is the verdict on a pair of fingerprints.
type Comparison struct {
	Result *match.Result
	Match  bool // Result.Count > MinScore
}

// Identification is the verdict on a probe matched against the gallery.
type Identification struct {
	User       *store.User       // nil when access is denied
	TemplateID string            // Winning template, empty when denied
	Score      int               // Good matches of the best candidate
	Granted    bool              // Score > MinScore
	Candidates []match.Candidate // Every gallery template, best first
}

// Preview is the rendered skeleton of an image.
type Preview struct {
	PNG       []byte
	Passes    int
	Removed   int
	Keypoints int
}

// Extract decodes an image and runs it through binarization, optional thinning
// and feature extraction. The caller must close the result.
func (a *App) Extract(data []byte) (*Extraction, error) {
	img, err := capture.Decode(data)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	return a.extractMat(img, a.config.Thin)
}

func (a *App) extractMat(img gocv.Mat, thin bool) (*Extraction, error) {
	binary, err := capture.Binarize(img)
	if err != nil {
		return nil, err
	}
	defer binary.Close()

	ext := &Extraction{}
	ridges := binary
	if thin {
		res, err := a.thin(binary)
		if err != nil {
			return nil, err
		}
		ext.Skeleton = res

		skel, err := capture.FromGrid(res.Grid)
		if err != nil {
			return nil, err
		}
		defer skel.Close()
		ridges = skel
	}

	a.mu.RLock()
	features, err := a.detector.Detect(ridges)
	a.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("feature detection failed: %w", err)
	}
	ext.Features = features
	return ext, nil
}

func (a *App) thin(binary gocv.Mat) (*skeleton.Result, error) {
	grid, err := capture.ToGrid(binary)
	if err != nil {
		return nil, err
	}
	return a.thinner.Thin(grid)
}

// Compare verifies whether two images show the same finger.
func (a *App) Compare(probe, reference []byte) (*Comparison, error) {
	p, err := a.Extract(probe)
	if err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}
	defer p.Close()

	r, err := a.Extract(reference)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	defer r.Close()

	a.mu.RLock()
	res, err := a.score(a.matcher, p.Features.Descriptors, r.Features.Descriptors)
	a.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	return &Comparison{Result: res, Match: res.Count > a.config.MinScore}, nil
}

// score matches two descriptor sets and filters the correspondences.
func (a *App) score(m detector.DescriptorMatcher, query, train gocv.Mat) (*match.Result, error) {
	cs, err := m.Match(query, train)
	if err != nil {
		return nil, fmt.Errorf("descriptor matching failed: %w", err)
	}

	res, err := match.Filter(cs, a.config.Threshold)
	if err != nil {
		return nil, err
	}

	log.Printf("MinMax: %f %f", res.Min, res.Max)
	log.Printf("All, good: %d %d", res.Total, res.Count)
	return res, nil
}

// Enroll registers a new user with the fingerprint in data.
func (a *App) Enroll(name string, level store.AccessLevel, data []byte) (*store.User, error) {
	if a.config.Store == nil {
		return nil, ErrNoStore
	}
	if _, err := store.ParseAccessLevel(string(level)); err != nil {
		return nil, err
	}

	ext, err := a.Extract(data)
	if err != nil {
		return nil, err
	}
	defer ext.Close()

	if ext.Features.Empty() {
		return nil, detector.ErrNoFeatures
	}
	blob, err := detector.EncodeDescriptors(ext.Features.Descriptors)
	if err != nil {
		return nil, err
	}

	user := &store.User{
		ID:          uuid.New().String(),
		Name:        name,
		AccessLevel: level,
	}
	if err := a.config.Store.Users().Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tpl := &store.Template{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		Detector:    string(a.config.Detector),
		Keypoints:   len(ext.Features.Keypoints),
		Descriptors: blob,
	}
	if err := a.config.Store.Templates().Create(tpl); err != nil {
		if delErr := a.config.Store.Users().Delete(user.ID); delErr != nil {
			log.Printf("Failed to roll back user %s: %v", user.ID, delErr)
		}
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	a.mu.Lock()
	a.gallery = append(a.gallery, &enrolled{
		templateID:  tpl.ID,
		user:        user,
		descriptors: ext.Features.Descriptors.Clone(),
	})
	a.mu.Unlock()

	log.Printf("Enrolled %s as %s (%d keypoints)", user.Name, user.AccessLevel.Role(), tpl.Keypoints)
	return user, nil
}

// Identify matches a probe against every enrolled template and returns the owner of
// the best one if it has more than MinScore good matches.
func (a *App) Identify(data []byte) (*Identification, error) {
	probe, err := a.Extract(data)
	if err != nil {
		return nil, err
	}
	defer probe.Close()

	// The read lock keeps gallery descriptors open while they are matched.
	a.mu.RLock()
	defer a.mu.RUnlock()

	candidates := make([]match.Candidate, 0, len(a.gallery))
	owners := make(map[string]*store.User, len(a.gallery))
	for _, e := range a.gallery {
		res, err := a.score(a.matcher, probe.Features.Descriptors, e.descriptors)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", e.templateID, err)
		}
		candidates = append(candidates, match.Candidate{ID: e.templateID, Result: res})
		owners[e.templateID] = e.user
	}

	id := &Identification{Candidates: match.Rank(candidates)}
	if len(id.Candidates) > 0 {
		id.Score = id.Candidates[0].Score()
	}

	best, ok := match.Best(candidates, a.config.MinScore)
	if !ok {
		log.Printf("Access denied (best score %d)", id.Score)
		return id, nil
	}

	id.Granted = true
	id.TemplateID = best.ID
	id.User = owners[best.ID]
	if id.User != nil {
		log.Printf("Access granted to %s (score %d)", id.User.Name, id.Score)
	}
	return id, nil
}

// Preview skeletonizes an image and renders the skeleton with its keypoints as PNG.
func (a *App) Preview(data []byte) (*Preview, error) {
	img, err := capture.Decode(data)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	ext, err := a.extractMat(img, true)
	if err != nil {
		return nil, err
	}
	defer ext.Close()

	skel, err := capture.FromGrid(ext.Skeleton.Grid)
	if err != nil {
		return nil, err
	}
	defer skel.Close()

	canvas := gocv.NewMat()
	defer canvas.Close()
	gocv.CvtColor(skel, &canvas, gocv.ColorGrayToBGR)
	if len(ext.Features.Keypoints) > 0 {
		gocv.DrawKeyPoints(canvas, ext.Features.Keypoints, &canvas, color.RGBA{255, 0, 0, 0}, gocv.DrawRichKeyPoints)
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, canvas)
	if err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	png := append([]byte(nil), buf.GetBytes()...)

	return &Preview{
		PNG:       png,
		Passes:    ext.Skeleton.Passes,
		Removed:   ext.Skeleton.Removed,
		Keypoints: len(ext.Features.Keypoints),
	}, nil
}
