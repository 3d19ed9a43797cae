// Package fixture renders synthetic fingerprint images for tests.
package fixture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"

	"gocv.io/x/gocv"
)

// Ridge and valley intensities of a rendered print.
const (
	Ridge  = 30
	Valley = 225
)

// Print renders a whorl pattern whose ridge period, twist and centre depend on
// seed. Light discs break the ridges so the print has endings and islands for
// a feature detector to find. The same seed always yields the same image.
func Print(seed int64, rows, cols int) *image.Gray {
	rng := rand.New(rand.NewSource(seed))

	period := 7 + rng.Float64()*3
	twist := 0.6 + rng.Float64()*1.4
	phase := rng.Float64() * 2 * math.Pi
	cx := float64(cols) * (0.4 + rng.Float64()*0.2)
	cy := float64(rows) * (0.4 + rng.Float64()*0.2)

	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			r := math.Hypot(dx, dy)
			theta := math.Atan2(dy, dx)
			v := math.Cos(2*math.Pi*r/period + twist*math.Sin(2*theta) + phase)
			if v > 0.2 {
				img.SetGray(x, y, color.Gray{Y: Ridge})
			} else {
				img.SetGray(x, y, color.Gray{Y: Valley})
			}
		}
	}

	gaps := 30 + rng.Intn(21)
	for i := 0; i < gaps; i++ {
		gx := rng.Intn(cols)
		gy := rng.Intn(rows)
		radius := 2 + rng.Intn(2)
		for y := gy - radius; y <= gy+radius; y++ {
			for x := gx - radius; x <= gx+radius; x++ {
				if x < 0 || y < 0 || x >= cols || y >= rows {
					continue
				}
				if (x-gx)*(x-gx)+(y-gy)*(y-gy) <= radius*radius {
					img.SetGray(x, y, color.Gray{Y: Valley})
				}
			}
		}
	}

	return img
}

// PrintPNG renders Print and encodes it as PNG.
func PrintPNG(seed int64, rows, cols int) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Print(seed, rows, cols)); err != nil {
		return nil, fmt.Errorf("encode print %d: %w", seed, err)
	}
	return buf.Bytes(), nil
}

// LoadPrint renders Print as a BGR Mat. The caller must Close it.
func LoadPrint(seed int64, rows, cols int) (gocv.Mat, error) {
	data, err := PrintPNG(seed, rows, cols)
	if err != nil {
		return gocv.NewMat(), err
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return mat, fmt.Errorf("decode print %d: %w", seed, err)
	}
	return mat, nil
}
