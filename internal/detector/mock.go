package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/ridgeline/internal/match"
)

// MockDescriptorCols is the descriptor width produced by MockDetector.
const MockDescriptorCols = 8

// MockDetector is a test implementation of the Detector interface.
// It produces one zeroed float descriptor per image row, so images of different
// heights yield distinguishable feature sets.
type MockDetector struct {
	err error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns synthetic features or the configured error.
func (m *MockDetector) Detect(img gocv.Mat) (*Features, error) {
	if m.err != nil {
		return nil, m.err
	}
	if img.Empty() {
		return &Features{Descriptors: gocv.NewMat()}, nil
	}

	rows := img.Rows()
	kps := make([]gocv.KeyPoint, rows)
	for i := range kps {
		kps[i] = gocv.KeyPoint{X: float64(img.Cols() / 2), Y: float64(i), Size: 1}
	}
	return &Features{
		Keypoints:   kps,
		Descriptors: gocv.NewMatWithSize(rows, MockDescriptorCols, gocv.MatTypeCV32F),
	}, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// MockMatcher is a test implementation of the DescriptorMatcher interface.
type MockMatcher struct {
	fn  func(query, train gocv.Mat) []match.Correspondence
	err error
}

// NewMockMatcher creates a MockMatcher. With a nil fn, descriptor sets with the same
// number of rows match row for row at distance 0 and any other pair at distance 100.
func NewMockMatcher(fn func(query, train gocv.Mat) []match.Correspondence) *MockMatcher {
	return &MockMatcher{fn: fn}
}

// SetError sets the error that will be returned by Match.
func (m *MockMatcher) SetError(err error) {
	m.err = err
}

// Match returns the configured correspondences or error.
func (m *MockMatcher) Match(query, train gocv.Mat) ([]match.Correspondence, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.fn != nil {
		return m.fn(query, train), nil
	}
	if query.Empty() || train.Empty() {
		return nil, nil
	}

	distance := 100.0
	if query.Rows() == train.Rows() {
		distance = 0
	}
	cs := make([]match.Correspondence, query.Rows())
	for i := range cs {
		cs[i] = match.Correspondence{QueryIdx: i, TrainIdx: i % train.Rows(), Distance: distance}
	}
	return cs, nil
}

// Close is a no-op for the mock matcher.
func (m *MockMatcher) Close() error {
	return nil
}
