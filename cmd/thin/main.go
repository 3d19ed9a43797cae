// Command thin skeletonizes the ridges of a fingerprint image and writes the
// skeleton as a PGM or PBM file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spakin/netpbm"

	"github.com/ayusman/ridgeline/internal/capture"
	"github.com/ayusman/ridgeline/internal/skeleton"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("thin", flag.ContinueOnError)
	in := fs.String("in", "", "input image (PNG, JPEG, BMP, TIFF, PGM)")
	out := fs.String("out", "", "output file; .pbm writes a bitmap, anything else a graymap")
	workers := fs.Int("workers", runtime.NumCPU(), "thinning workers")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		fs.Usage()
		return errors.New("both -in and -out are required")
	}

	img, err := capture.Load(*in)
	if err != nil {
		return err
	}
	defer img.Close()

	binary, err := capture.Binarize(img)
	if err != nil {
		return err
	}
	defer binary.Close()

	grid, err := capture.ToGrid(binary)
	if err != nil {
		return err
	}

	res, err := skeleton.NewThinner(skeleton.Options{Workers: *workers}).Thin(grid)
	if err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := encode(f, res.Grid, filepath.Ext(*out)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %dx%d, %d passes, %d pixels removed, %d skeleton pixels\n",
		*out, grid.Cols(), grid.Rows(), res.Passes, res.Removed, res.Grid.Foreground())
	return nil
}

// encode writes the skeleton with ridges as black on white.
func encode(w io.Writer, g *skeleton.Grid, ext string) error {
	img := g.Gray()
	for i, v := range img.Pix {
		img.Pix[i] = 255 - v
	}

	opts := &netpbm.EncodeOptions{
		Format:   netpbm.PGM,
		MaxValue: 255,
		Comments: []string{"ridge skeleton"},
	}
	if strings.EqualFold(ext, ".pbm") {
		opts.Format = netpbm.PBM
		opts.MaxValue = 1
	}
	return netpbm.Encode(w, img, opts)
}
