// Package match selects good feature correspondences and ranks enrolled candidates.
package match

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultThreshold is the distance below which a correspondence counts as a good match.
// It is tuned for SIFT descriptors compared with an L2 nearest-neighbour matcher.
const DefaultThreshold = 45.0

var (
	// ErrInvalidDistance is returned when a correspondence has a negative or NaN distance.
	ErrInvalidDistance = errors.New("invalid correspondence distance")
	// ErrInvalidThreshold is returned when the acceptance threshold is negative or NaN.
	ErrInvalidThreshold = errors.New("invalid match threshold")
)

// Correspondence is a proposed match between a feature in the query image and a
// feature in the train image.
type Correspondence struct {
	QueryIdx int     `json:"query_idx"`
	TrainIdx int     `json:"train_idx"`
	Distance float64 `json:"distance"` // Lower is more similar
}

// Result holds the good correspondences of one image pair.
type Result struct {
	Good  []Correspondence `json:"good"`  // Good matches in input order
	Count int              `json:"count"` // len(Good)
	Total int              `json:"total"` // Number of correspondences considered
	Min   float64          `json:"min"`   // Smallest distance over all correspondences
	Max   float64          `json:"max"`   // Largest distance over all correspondences
	Mean  float64          `json:"mean"`  // Mean distance over all correspondences
}

// Filter keeps the correspondences whose distance is strictly below threshold.
//
// Order is preserved. Min, Max and Mean are computed over every input, not only the
// good ones, and do not influence selection. An empty input yields an empty result.
func Filter(cs []Correspondence, threshold float64) (*Result, error) {
	if math.IsNaN(threshold) || threshold < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, threshold)
	}

	res := &Result{
		Good:  make([]Correspondence, 0),
		Total: len(cs),
	}
	if len(cs) == 0 {
		return res, nil
	}

	distances := make([]float64, len(cs))
	for i, c := range cs {
		if math.IsNaN(c.Distance) || c.Distance < 0 {
			return nil, fmt.Errorf("%w: correspondence %d has distance %v", ErrInvalidDistance, i, c.Distance)
		}
		distances[i] = c.Distance
		if c.Distance < threshold {
			res.Good = append(res.Good, c)
		}
	}

	res.Count = len(res.Good)
	res.Min = floats.Min(distances)
	res.Max = floats.Max(distances)
	res.Mean = stat.Mean(distances, nil)
	return res, nil
}
