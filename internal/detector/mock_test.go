package detector

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestMockDetector(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	img := gocv.NewMatWithSize(12, 20, gocv.MatTypeCV8UC1)
	defer img.Close()

	d := NewMockDetector()
	f, err := d.Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	defer f.Close()

	if len(f.Keypoints) != 12 || f.Descriptors.Rows() != 12 {
		t.Errorf("expected 12 keypoints and rows, got %d and %d", len(f.Keypoints), f.Descriptors.Rows())
	}
	if f.Descriptors.Cols() != MockDescriptorCols {
		t.Errorf("expected %d cols, got %d", MockDescriptorCols, f.Descriptors.Cols())
	}

	wantErr := errors.New("camera unplugged")
	d.SetError(wantErr)
	if _, err := d.Detect(img); !errors.Is(err, wantErr) {
		t.Errorf("expected configured error, got %v", err)
	}
}

func TestMockMatcher_Default(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	a := gocv.NewMatWithSize(5, MockDescriptorCols, gocv.MatTypeCV32F)
	defer a.Close()
	b := gocv.NewMatWithSize(7, MockDescriptorCols, gocv.MatTypeCV32F)
	defer b.Close()

	m := NewMockMatcher(nil)

	same, err := m.Match(a, a)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(same) != 5 {
		t.Fatalf("expected 5 correspondences, got %d", len(same))
	}
	for _, c := range same {
		if c.Distance != 0 {
			t.Errorf("expected distance 0 for equal row counts, got %f", c.Distance)
		}
	}

	diff, err := m.Match(a, b)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	for _, c := range diff {
		if c.Distance != 100 {
			t.Errorf("expected distance 100 for different row counts, got %f", c.Distance)
		}
	}
}
