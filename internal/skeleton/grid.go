// Package skeleton reduces binary ridge images to one-pixel-wide ridge centerlines.
package skeleton

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidGrid is returned when a grid has no pixels, a pixel buffer that does not
// match its dimensions, or values outside the binary conventions {0,1} and {0,255}.
var ErrInvalidGrid = errors.New("invalid grid")

// Grid is a fixed-size, row-major grid of single-byte pixel values.
// A value of 0 is background; 1 or 255 is ridge foreground.
type Grid struct {
	rows int
	cols int
	pix  []uint8
}

// NewGrid creates a rows x cols grid backed by pix.
// If pix is nil a zeroed buffer is allocated. The grid takes ownership of pix.
func NewGrid(rows, cols int, pix []uint8) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidGrid, rows, cols)
	}
	if pix == nil {
		pix = make([]uint8, rows*cols)
	}
	if len(pix) != rows*cols {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d", ErrInvalidGrid, len(pix), rows, cols)
	}
	return &Grid{rows: rows, cols: cols, pix: pix}, nil
}

// FromGray copies an 8-bit grayscale image into a new grid.
func FromGray(img *image.Gray) (*Grid, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidGrid)
	}
	b := img.Bounds()
	g, err := NewGrid(b.Dy(), b.Dx(), nil)
	if err != nil {
		return nil, err
	}
	for r := 0; r < g.rows; r++ {
		start := img.PixOffset(b.Min.X, b.Min.Y+r)
		copy(g.pix[r*g.cols:(r+1)*g.cols], img.Pix[start:start+g.cols])
	}
	return g, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Pix returns the underlying row-major pixel buffer. Writes are visible to the grid.
func (g *Grid) Pix() []uint8 { return g.pix }

// At returns the pixel at row r, column c.
func (g *Grid) At(r, c int) uint8 {
	return g.pix[r*g.cols+c]
}

// Set writes the pixel at row r, column c.
func (g *Grid) Set(r, c int, v uint8) {
	g.pix[r*g.cols+c] = v
}

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	pix := make([]uint8, len(g.pix))
	copy(pix, g.pix)
	return &Grid{rows: g.rows, cols: g.cols, pix: pix}
}

// Foreground counts the nonzero pixels.
func (g *Grid) Foreground() int {
	n := 0
	for _, v := range g.pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Equal reports whether both grids have the same dimensions and pixel values.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.rows != o.rows || g.cols != o.cols {
		return false
	}
	for i := range g.pix {
		if g.pix[i] != o.pix[i] {
			return false
		}
	}
	return true
}

// Gray returns the grid as an 8-bit grayscale image with the same pixel values.
func (g *Grid) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.cols, g.rows))
	copy(img.Pix, g.pix)
	return img
}
