package detector

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/ridgeline/internal/match"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"sift", KindSIFT, false},
		{"ORB", KindORB, false},
		{"  Sift ", KindSIFT, false},
		{"surf", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownKind) {
					t.Fatalf("expected ErrUnknownKind, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNewDetector_UnknownKind(t *testing.T) {
	if _, err := NewDetector(Config{Kind: "surf"}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind from NewDetector, got %v", err)
	}
	if _, err := NewMatcher("surf"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind from NewMatcher, got %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	if got := DefaultConfig().Kind; got != KindSIFT {
		t.Errorf("expected default kind sift, got %q", got)
	}
}

func TestToCorrespondences(t *testing.T) {
	knn := [][]gocv.DMatch{
		{{QueryIdx: 0, TrainIdx: 4, Distance: 12.5}},
		{},
		{{QueryIdx: 2, TrainIdx: 1, Distance: 50}, {QueryIdx: 2, TrainIdx: 3, Distance: 70}},
	}

	got := toCorrespondences(knn)
	want := []match.Correspondence{
		{QueryIdx: 0, TrainIdx: 4, Distance: 12.5},
		{QueryIdx: 2, TrainIdx: 1, Distance: 50},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d correspondences, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("correspondence %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	if got := toCorrespondences(nil); len(got) != 0 {
		t.Errorf("expected no correspondences for nil input, got %d", len(got))
	}
}

// syntheticPrint draws high-contrast blobs and bars that both SIFT and ORB lock onto.
func syntheticPrint(t *testing.T) gocv.Mat {
	t.Helper()

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 240, 240, gocv.MatTypeCV8UC1)
	white := color.RGBA{255, 255, 255, 0}
	gray := color.RGBA{128, 128, 128, 0}

	gocv.Rectangle(&img, image.Rect(50, 50, 90, 110), white, -1)
	gocv.Rectangle(&img, image.Rect(130, 60, 190, 90), gray, -1)
	gocv.Circle(&img, image.Pt(80, 170), 18, white, -1)
	gocv.Circle(&img, image.Pt(165, 165), 10, gray, -1)
	gocv.Line(&img, image.Pt(40, 200), image.Pt(200, 140), white, 3)
	return img
}

func TestSIFT_DetectAndSelfMatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	img := syntheticPrint(t)
	defer img.Close()

	d, err := NewDetector(Config{Kind: KindSIFT})
	if err != nil {
		t.Fatalf("NewDetector failed: %v", err)
	}
	defer d.Close()

	f, err := d.Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	defer f.Close()

	if f.Empty() {
		t.Fatal("expected SIFT features on synthetic print")
	}
	if f.Descriptors.Rows() != len(f.Keypoints) {
		t.Errorf("expected one descriptor per keypoint, got %d rows for %d keypoints", f.Descriptors.Rows(), len(f.Keypoints))
	}
	if f.Descriptors.Cols() != 128 {
		t.Errorf("expected 128-wide SIFT descriptors, got %d", f.Descriptors.Cols())
	}
	if f.Descriptors.Type() != gocv.MatTypeCV32F {
		t.Errorf("expected CV_32F descriptors, got %v", f.Descriptors.Type())
	}

	m, err := NewMatcher(KindSIFT)
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}
	defer m.Close()

	cs, err := m.Match(f.Descriptors, f.Descriptors)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(cs) != f.Descriptors.Rows() {
		t.Errorf("expected %d correspondences, got %d", f.Descriptors.Rows(), len(cs))
	}
}

func TestORB_SelfMatchIsExact(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	img := syntheticPrint(t)
	defer img.Close()

	d, err := NewDetector(Config{Kind: KindORB})
	if err != nil {
		t.Fatalf("NewDetector failed: %v", err)
	}
	defer d.Close()

	f, err := d.Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	defer f.Close()

	if f.Empty() {
		t.Fatal("expected ORB features on synthetic print")
	}
	if f.Descriptors.Type() != gocv.MatTypeCV8UC1 {
		t.Errorf("expected CV_8U binary descriptors, got %v", f.Descriptors.Type())
	}

	m, err := NewMatcher(KindORB)
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}
	defer m.Close()

	cs, err := m.Match(f.Descriptors, f.Descriptors)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}

	res, err := match.Filter(cs, match.DefaultThreshold)
	if err != nil {
		t.Fatalf("Filter failed: %v", err)
	}
	if res.Count != f.Descriptors.Rows() {
		t.Errorf("expected every descriptor to match itself, got %d of %d", res.Count, f.Descriptors.Rows())
	}
	if res.Max != 0 {
		t.Errorf("expected zero Hamming distance on self match, got max %f", res.Max)
	}
}

func TestMatcher_EmptyDescriptors(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	empty := gocv.NewMat()
	defer empty.Close()

	for _, kind := range []Kind{KindSIFT, KindORB} {
		m, err := NewMatcher(kind)
		if err != nil {
			t.Fatalf("NewMatcher(%s) failed: %v", kind, err)
		}
		cs, err := m.Match(empty, empty)
		m.Close()
		if err != nil {
			t.Errorf("%s: expected no error for empty descriptors, got %v", kind, err)
		}
		if len(cs) != 0 {
			t.Errorf("%s: expected no correspondences, got %d", kind, len(cs))
		}
	}
}

func TestMatcher_TypeMismatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	f32 := gocv.NewMatWithSize(4, 8, gocv.MatTypeCV32F)
	defer f32.Close()
	u8 := gocv.NewMatWithSize(4, 8, gocv.MatTypeCV8UC1)
	defer u8.Close()

	m, err := NewMatcher(KindORB)
	if err != nil {
		t.Fatalf("NewMatcher failed: %v", err)
	}
	defer m.Close()

	if _, err := m.Match(f32, u8); err == nil {
		t.Error("expected error for mismatched descriptor types")
	}
}
