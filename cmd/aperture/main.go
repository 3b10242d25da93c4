// Command aperture runs a simulated imaging pass from a json5 parameter
// file: it generates an observation for the named antenna configuration,
// predicts visibilities from a unit source at the phase centre, and writes
// the dirty image, point spread function and diagnostic plots as PNG files.
package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/radiokit/aperture/diagnostics"
	"github.com/radiokit/aperture/geometry"
	"github.com/radiokit/aperture/imaging"
	"github.com/radiokit/aperture/params"
	"github.com/radiokit/aperture/skyimage"
	"github.com/radiokit/aperture/visibility"
)

func main() {
	programStart := time.Now()

	args := os.Args
	if len(args) != 2 {
		fmt.Println("\n\tWrong number of arguments.\n\tUsage: aperture <parameter-file>")
		os.Exit(1)
	}

	settings, err := params.Load(args[1])
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	config, err := visibility.NamedConfiguration(settings.Configuration)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	// One synthesis track: hour angles over +-3h, a single 100 MHz channel.
	hourAngles := geometry.Linspace(-math.Pi/4, math.Pi/4, 73)
	frequency := []float64{1.0e8}
	bandwidth := []float64{1.0e7}
	centre := geometry.Direction{RA: 0.0, Dec: -35.0 * math.Pi / 180.0}

	vis, err := visibility.New(config, hourAngles, frequency, bandwidth, centre, 1.0, visibility.StokesI)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	comp := &visibility.Component{
		Direction: centre,
		Flux:      [][]float64{{1.0}},
	}
	if err := visibility.PredictComponents(vis, []*visibility.Component{comp}); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	model, err := skyimage.NewFromVisibility(vis, settings.Npixel, settings.Cellsize, 0)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	if _, err := imaging.Weight(vis, model, settings.Weighting, settings.Imaging); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	dirty, sumwt, stats, err := imaging.InvertContext(vis, model, false, true, settings.Context, settings.Imaging)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	psf, _, _, err := imaging.InvertContext(vis, model, true, true, settings.Context, settings.Imaging)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	fmt.Printf("Gridded %d samples, dropped %d, sum of weights %.1f\n",
		stats.Gridded, stats.Dropped, sumwt[0][0])
	fmt.Printf("Dirty image peak %.4f, psf peak %.4f\n",
		dirty.MaxAbs(), psf.MaxAbs())

	writeImage := func(im *skyimage.Image, name string) {
		gray, err := im.SliceToGrayPercentile(0, 0, 1.0, 99.0)
		if err != nil {
			fmt.Println(err)
			os.Exit(3)
		}
		if err := skyimage.SavePNG(name, gray); err != nil {
			fmt.Println(err)
			os.Exit(3)
		}
	}
	writeImage(dirty, "dirty.png")
	writeImage(psf, "psf.png")

	if err := diagnostics.SaveUVCoverage(vis, "uvcoverage.png"); err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	if err := diagnostics.SavePSFProfile(psf, 0, 0, "psf_profile.png"); err != nil {
		fmt.Println(err)
		os.Exit(3)
	}

	fmt.Printf("Run took %v\n", time.Since(programStart))
}
