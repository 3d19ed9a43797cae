package skeleton

import (
	"fmt"
	"runtime"
	"sync"
)

// Options configures a Thinner.
type Options struct {
	// Workers is the number of goroutines deciding removals within a sub-iteration.
	// Values <= 1 run sequentially.
	Workers int
}

// DefaultOptions returns Options using one worker per CPU.
func DefaultOptions() Options {
	return Options{Workers: runtime.NumCPU()}
}

// Result is the outcome of a thinning run.
type Result struct {
	Grid    *Grid // Skeleton, in the foreground convention of the input
	Passes  int   // Full passes that removed at least one pixel
	Removed int   // Total pixels removed
}

// Thinner runs Zhang-Suen thinning.
type Thinner struct {
	workers int
}

// NewThinner creates a Thinner with the given options.
func NewThinner(opts Options) *Thinner {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Thinner{workers: workers}
}

// Skeletonize thins g sequentially and returns the skeleton as a new grid.
// The input grid is not modified.
func Skeletonize(g *Grid) (*Grid, error) {
	res, err := NewThinner(Options{Workers: 1}).Thin(g)
	if err != nil {
		return nil, err
	}
	return res.Grid, nil
}

// Thin reduces the ridges of g to one-pixel-wide lines.
//
// The input may use {0,1} or {0,255}; the skeleton is written back in the same
// convention (255 if any pixel was 255). Border pixels are never candidates for
// removal and are copied to the output unchanged.
func (t *Thinner) Thin(g *Grid) (*Result, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrInvalidGrid)
	}
	if g.rows <= 0 || g.cols <= 0 || len(g.pix) != g.rows*g.cols {
		return nil, fmt.Errorf("%w: dimensions %dx%d with %d pixels", ErrInvalidGrid, g.rows, g.cols, len(g.pix))
	}

	work, scale, err := normalize(g)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	if g.rows >= 3 && g.cols >= 3 {
		marker := make([]uint8, len(work))
		for {
			removed := t.subIteration(work, marker, g.rows, g.cols, 0)
			removed += t.subIteration(work, marker, g.rows, g.cols, 1)
			if removed == 0 {
				break
			}
			res.Passes++
			res.Removed += removed
		}
	}

	out := g.Clone()
	for i := 1; i < g.rows-1; i++ {
		for j := 1; j < g.cols-1; j++ {
			idx := i*g.cols + j
			out.pix[idx] = work[idx] * scale
		}
	}
	res.Grid = out
	return res, nil
}

// normalize maps {0,1,255} onto {0,1} and reports the foreground value to restore.
func normalize(g *Grid) ([]uint8, uint8, error) {
	work := make([]uint8, len(g.pix))
	scale := uint8(1)
	for i, v := range g.pix {
		switch v {
		case 0:
		case 1:
			work[i] = 1
		case 255:
			work[i] = 1
			scale = 255
		default:
			return nil, 0, fmt.Errorf("%w: pixel (%d,%d) has non-binary value %d",
				ErrInvalidGrid, i/g.cols, i%g.cols, v)
		}
	}
	return work, scale, nil
}

// subIteration marks removable pixels from the current state of work, then
// clears every marked pixel. No pixel of work changes until all rows are decided.
func (t *Thinner) subIteration(work, marker []uint8, rows, cols, iter int) int {
	interior := rows - 2
	workers := t.workers
	if workers > interior {
		workers = interior
	}

	if workers <= 1 {
		decideRows(work, marker, cols, 1, rows-1, iter)
	} else {
		var wg sync.WaitGroup
		chunk := (interior + workers - 1) / workers
		for start := 1; start < rows-1; start += chunk {
			end := start + chunk
			if end > rows-1 {
				end = rows - 1
			}
			wg.Add(1)
			go func(start, end int) {
				defer wg.Done()
				decideRows(work, marker, cols, start, end, iter)
			}(start, end)
		}
		wg.Wait()
	}

	removed := 0
	for i := 1; i < rows-1; i++ {
		for j := 1; j < cols-1; j++ {
			idx := i*cols + j
			if marker[idx] == 1 {
				work[idx] = 0
				removed++
			}
		}
	}
	return removed
}

// decideRows fills marker for interior rows [start, end).
func decideRows(work, marker []uint8, cols, start, end, iter int) {
	for i := start; i < end; i++ {
		for j := 1; j < cols-1; j++ {
			idx := i*cols + j
			marker[idx] = 0
			if work[idx] != 1 {
				continue
			}
			if removable(work, idx, cols, iter) {
				marker[idx] = 1
			}
		}
	}
}

// removable evaluates the Zhang-Suen deletion condition for the pixel at idx.
// Neighbours are p2..p9 clockwise starting north.
func removable(work []uint8, idx, cols, iter int) bool {
	n := idx - cols
	s := idx + cols
	p2 := int(work[n])
	p3 := int(work[n+1])
	p4 := int(work[idx+1])
	p5 := int(work[s+1])
	p6 := int(work[s])
	p7 := int(work[s-1])
	p8 := int(work[idx-1])
	p9 := int(work[n-1])

	b := p2 + p3 + p4 + p5 + p6 + p7 + p8 + p9
	if b < 2 || b > 6 {
		return false
	}

	a := 0
	ring := [9]int{p2, p3, p4, p5, p6, p7, p8, p9, p2}
	for k := 0; k < 8; k++ {
		if ring[k] == 0 && ring[k+1] == 1 {
			a++
		}
	}
	if a != 1 {
		return false
	}

	var m1, m2 int
	if iter == 0 {
		m1 = p2 * p4 * p6
		m2 = p4 * p6 * p8
	} else {
		m1 = p2 * p4 * p8
		m2 = p2 * p6 * p8
	}
	return m1 == 0 && m2 == 0
}
