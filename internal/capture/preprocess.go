package capture

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/ayusman/ridgeline/internal/skeleton"
)

// Gray converts a frame to a single-channel grayscale Mat.
// Single-channel input is copied. The caller is responsible for closing the result.
func Gray(src gocv.Mat) (gocv.Mat, error) {
	if src.Empty() {
		return gocv.NewMat(), ErrEmptyImage
	}

	gray := gocv.NewMat()
	if src.Channels() > 1 {
		gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	} else {
		src.CopyTo(&gray)
	}
	return gray, nil
}

// Binarize converts a frame to a binary ridge map using Otsu's threshold.
//
// Ridges are dark in a fingerprint print, so the threshold is inverted: ridge pixels
// become 255 and valleys 0. The caller is responsible for closing the result.
func Binarize(src gocv.Mat) (gocv.Mat, error) {
	gray, err := Gray(src)
	if err != nil {
		return gray, err
	}
	defer gray.Close()

	binary := gocv.NewMat()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)
	return binary, nil
}

// ToGrid copies a single-channel 8-bit Mat into a skeleton.Grid.
func ToGrid(m gocv.Mat) (*skeleton.Grid, error) {
	if m.Empty() {
		return nil, ErrEmptyImage
	}
	if m.Type() != gocv.MatTypeCV8UC1 {
		return nil, fmt.Errorf("expected 8-bit single channel image, got type %v", m.Type())
	}

	src := m
	if !m.IsContinuous() {
		src = m.Clone()
		defer src.Close()
	}

	return skeleton.NewGrid(src.Rows(), src.Cols(), src.ToBytes())
}

// FromGrid copies a grid into a new single-channel 8-bit Mat.
// The caller is responsible for closing the result.
func FromGrid(g *skeleton.Grid) (gocv.Mat, error) {
	view, err := gocv.NewMatFromBytes(g.Rows(), g.Cols(), gocv.MatTypeCV8UC1, g.Pix())
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("grid to mat: %w", err)
	}
	defer view.Close()

	// NewMatFromBytes shares the Go buffer; clone so the Mat owns its pixels.
	return view.Clone(), nil
}
