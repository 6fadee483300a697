package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"

	"partomo/pkg/config"
	"partomo/pkg/filter"
	"partomo/pkg/geometry"
	"partomo/pkg/projector"
	"partomo/pkg/scaling"
	"partomo/pkg/tomo"
	"partomo/pkg/visualization"
)

func main() {
	configPath := flag.String("config", "partomo.yaml", "Path to YAML run configuration")
	inputFile := flag.String("input", "", "Raw volume file (float64 little-endian); a box phantom is used when empty")
	backendName := flag.String("backend", "", "Projector backend override (cpu or gpu)")
	table := flag.Bool("table", false, "Print the per-angle correction table as CSV and exit")
	forwardOnly := flag.Bool("forward-only", false, "Skip backprojection")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *backendName != "" {
		cfg.Backend = *backendName
	}

	geom, err := cfg.BuildGeometry()
	if err != nil {
		log.Fatalf("Invalid geometry: %v", err)
	}

	if cfg.Output.Verbose {
		scaling.Trace = func(i int, theta float64, res scaling.Result) {
			log.Printf("angle[%d]: theta=%.6f corrected=%.6f scale=%.6f pixel=%.6f",
				i, theta, res.Angle, res.ScaleFactor, res.PixelScale)
		}
	}

	if *table {
		if err := printTable(geom); err != nil {
			log.Fatalf("Failed to compute correction table: %v", err)
		}
		return
	}

	backend, err := projector.ParseBackend(cfg.Backend)
	if err != nil {
		log.Fatalf("Invalid backend: %v", err)
	}

	vol, err := loadVolume(*inputFile, geom.Volume)
	if err != nil {
		log.Fatalf("Failed to load volume: %v", err)
	}

	fmt.Printf("Volume %v spacing %v, detector %v spacing %v, %d angles, backend %s\n",
		geom.Volume.Shape, geom.Volume.Spacing,
		geom.Detector.Shape, geom.Detector.Spacing,
		len(geom.Angles), backend)

	ctx := context.Background()

	fmt.Println("Computing forward projection...")
	sino, err := tomo.Forward(ctx, geom, vol, backend)
	if err != nil {
		log.Fatalf("Forward projection failed: %v", err)
	}
	fmt.Printf("Saving sinogram slices to %s...\n", cfg.Output.SinogramDir)
	if err := visualization.NewViewer(sino).SaveSliceSequence("z", cfg.Output.SinogramDir); err != nil {
		log.Fatalf("Failed to save sinogram slices: %v", err)
	}

	if *forwardOnly {
		return
	}

	if cfg.Filter != "none" {
		kind, err := filter.ParseKind(cfg.Filter)
		if err != nil {
			log.Fatalf("Invalid filter: %v", err)
		}
		fmt.Printf("Applying %s filter...\n", kind)
		sino, err = filter.Apply(kind, sino)
		if err != nil {
			log.Fatalf("Filtering failed: %v", err)
		}
	}

	fmt.Println("Computing backprojection...")
	field, err := tomo.Backward(ctx, geom, sino, backend)
	if err != nil {
		log.Fatalf("Backprojection failed: %v", err)
	}
	fmt.Printf("Saving volume slices to %s...\n", cfg.Output.VolumeDir)
	if err := visualization.NewViewer(field).SaveSliceSequence("z", cfg.Output.VolumeDir); err != nil {
		log.Fatalf("Failed to save volume slices: %v", err)
	}
	fmt.Println("Done.")
}

// printTable writes the forward-direction correction table for the
// configured geometry as CSV on stdout.
func printTable(geom geometry.Parallel3D) error {
	sx, sy := geom.Volume.Spacing[0], geom.Volume.Spacing[1]
	results, err := scaling.Factors(1/sx, 1/sy, geom.Angles)
	if err != nil {
		return err
	}
	fmt.Println("index,angle,corrected_angle,scale_factor,pixel_scale")
	for i, res := range results {
		fmt.Printf("%d,%.9f,%.9f,%.9f,%.9f\n", i, geom.Angles[i], res.Angle, res.ScaleFactor, res.PixelScale)
	}
	return nil
}

// loadVolume reads a raw little-endian float64 volume matching the grid, or
// synthesizes a centered box phantom when path is empty.
func loadVolume(path string, grid geometry.Grid) ([]float64, error) {
	n := grid.NumElements()
	if path == "" {
		return boxPhantom(grid), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() != int64(n*8) {
		return nil, fmt.Errorf("volume file holds %d bytes, want %d for shape %v", info.Size(), n*8, grid.Shape)
	}
	data := make([]float64, n)
	if err := binary.Read(file, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("failed to read volume data: %w", err)
	}
	return data, nil
}

// boxPhantom fills the central half of each axis with ones.
func boxPhantom(grid geometry.Grid) []float64 {
	nx, ny, nz := grid.Shape[0], grid.Shape[1], grid.Shape[2]
	data := make([]float64, nx*ny*nz)
	for z := nz / 4; z < 3*nz/4; z++ {
		for y := ny / 4; y < 3*ny/4; y++ {
			for x := nx / 4; x < 3*nx/4; x++ {
				data[(z*ny+y)*nx+x] = 1
			}
		}
	}
	return data
}
