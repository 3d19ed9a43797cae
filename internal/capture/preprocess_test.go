package capture

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/ridgeline/internal/skeleton"
)

// whitePrint returns a white BGR frame with one dark horizontal ridge across row 20.
func whitePrint(t *testing.T) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), 40, 60, gocv.MatTypeCV8UC3)
	gocv.Line(&frame, image.Pt(5, 20), image.Pt(54, 20), color.RGBA{0, 0, 0, 0}, 3)
	return frame
}

func TestGray(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := whitePrint(t)
	defer frame.Close()

	gray, err := Gray(frame)
	if err != nil {
		t.Fatalf("Gray() error = %v", err)
	}
	defer gray.Close()

	if gray.Channels() != 1 {
		t.Errorf("channels = %d, want 1", gray.Channels())
	}
	if got := gray.GetUCharAt(0, 0); got != 255 {
		t.Errorf("background = %d, want 255", got)
	}
}

func TestGray_Empty(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	gray, err := Gray(empty)
	defer gray.Close()

	if err != ErrEmptyImage {
		t.Errorf("Gray() error = %v, want ErrEmptyImage", err)
	}
}

func TestBinarize_RidgesBecomeForeground(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := whitePrint(t)
	defer frame.Close()

	binary, err := Binarize(frame)
	if err != nil {
		t.Fatalf("Binarize() error = %v", err)
	}
	defer binary.Close()

	if binary.Type() != gocv.MatTypeCV8UC1 {
		t.Fatalf("type = %v, want CV8UC1", binary.Type())
	}
	if got := binary.GetUCharAt(20, 30); got != 255 {
		t.Errorf("ridge pixel = %d, want 255", got)
	}
	if got := binary.GetUCharAt(5, 30); got != 0 {
		t.Errorf("valley pixel = %d, want 0", got)
	}
}

func TestGridRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	g, err := skeleton.NewGrid(3, 4, []uint8{
		0, 255, 0, 0,
		0, 255, 255, 0,
		0, 0, 0, 255,
	})
	if err != nil {
		t.Fatalf("NewGrid() error = %v", err)
	}

	m, err := FromGrid(g)
	if err != nil {
		t.Fatalf("FromGrid() error = %v", err)
	}
	defer m.Close()

	// The Mat must not alias the grid buffer.
	g.Set(0, 0, 255)
	if got := m.GetUCharAt(0, 0); got != 0 {
		t.Errorf("Mat shares grid memory: pixel = %d, want 0", got)
	}
	g.Set(0, 0, 0)

	back, err := ToGrid(m)
	if err != nil {
		t.Fatalf("ToGrid() error = %v", err)
	}
	if !back.Equal(g) {
		t.Errorf("round trip mismatch: got %v, want %v", back.Pix(), g.Pix())
	}
}

func TestToGrid_RejectsColor(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	frame := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer frame.Close()

	if _, err := ToGrid(frame); err == nil {
		t.Error("ToGrid() should reject a 3-channel Mat")
	}
}
