package detector

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/ridgeline/internal/match"
)

// DescriptorMatcher finds, for every query descriptor, its nearest train descriptor.
type DescriptorMatcher interface {
	// Match returns one correspondence per query row that has a neighbour.
	// Empty descriptor matrices yield no correspondences.
	Match(query, train gocv.Mat) ([]match.Correspondence, error)

	// Close releases any resources held by the matcher.
	Close() error
}

// NewMatcher creates the matcher suited to the descriptors produced by kind:
// FLANN for SIFT's float descriptors, brute force Hamming for ORB's binary ones.
func NewMatcher(kind Kind) (DescriptorMatcher, error) {
	switch kind {
	case KindSIFT, "":
		m := gocv.NewFlannBasedMatcher()
		return &flannMatcher{matcher: &m}, nil
	case KindORB:
		m := gocv.NewBFMatcherWithParams(gocv.NormHamming, false)
		return &bfMatcher{matcher: &m}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

type flannMatcher struct {
	matcher *gocv.FlannBasedMatcher
	mu      sync.Mutex
}

func (m *flannMatcher) Match(query, train gocv.Mat) ([]match.Correspondence, error) {
	if query.Empty() || train.Empty() {
		return nil, nil
	}
	if query.Type() != train.Type() {
		return nil, fmt.Errorf("descriptor type mismatch: %v vs %v", query.Type(), train.Type())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return toCorrespondences(m.matcher.KnnMatch(query, train, 1)), nil
}

func (m *flannMatcher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matcher.Close()
}

type bfMatcher struct {
	matcher *gocv.BFMatcher
	mu      sync.Mutex
}

func (m *bfMatcher) Match(query, train gocv.Mat) ([]match.Correspondence, error) {
	if query.Empty() || train.Empty() {
		return nil, nil
	}
	if query.Type() != train.Type() {
		return nil, fmt.Errorf("descriptor type mismatch: %v vs %v", query.Type(), train.Type())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return toCorrespondences(m.matcher.KnnMatch(query, train, 1)), nil
}

func (m *bfMatcher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matcher.Close()
}

// toCorrespondences keeps the nearest neighbour of each query row.
func toCorrespondences(knn [][]gocv.DMatch) []match.Correspondence {
	cs := make([]match.Correspondence, 0, len(knn))
	for _, neighbours := range knn {
		if len(neighbours) == 0 {
			continue
		}
		nn := neighbours[0]
		cs = append(cs, match.Correspondence{
			QueryIdx: nn.QueryIdx,
			TrainIdx: nn.TrainIdx,
			Distance: float64(nn.Distance),
		})
	}
	return cs
}
