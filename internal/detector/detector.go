// Package detector extracts keypoint descriptors from ridge images and matches them using GoCV (OpenCV).
package detector

import (
	"errors"
	"fmt"
	"strings"

	"gocv.io/x/gocv"
)

// Kind selects the feature detector and descriptor.
type Kind string

const (
	// KindSIFT uses SIFT keypoints with float descriptors.
	KindSIFT Kind = "sift"
	// KindORB uses ORB keypoints with binary descriptors.
	KindORB Kind = "orb"
)

var (
	// ErrNoFeatures is returned when an image yields no descriptors.
	ErrNoFeatures = errors.New("no features detected")
	// ErrUnknownKind is returned for an unsupported detector kind.
	ErrUnknownKind = errors.New("unknown detector kind")
)

// ParseKind parses a detector kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSIFT, KindORB:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Features holds the keypoints and descriptor matrix extracted from one image.
type Features struct {
	Keypoints   []gocv.KeyPoint
	Descriptors gocv.Mat // One row per keypoint
}

// Empty reports whether no descriptors were extracted.
func (f *Features) Empty() bool {
	return f == nil || f.Descriptors.Empty()
}

// Close releases the descriptor matrix.
func (f *Features) Close() error {
	if f == nil {
		return nil
	}
	return f.Descriptors.Close()
}

// Detector defines the interface for feature extraction implementations.
type Detector interface {
	// Detect extracts keypoints and descriptors from a single-channel image.
	// An image without features yields empty Features, not an error.
	Detect(img gocv.Mat) (*Features, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for feature extraction.
type Config struct {
	// Kind selects SIFT (default) or ORB.
	Kind Kind
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Kind: KindSIFT,
	}
}

// NewDetector creates the Detector selected by config.
func NewDetector(config Config) (Detector, error) {
	switch config.Kind {
	case KindSIFT, "":
		s := gocv.NewSIFT()
		return &siftDetector{sift: &s}, nil
	case KindORB:
		o := gocv.NewORB()
		return &orbDetector{orb: &o}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, config.Kind)
	}
}
