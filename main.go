package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/echoflaresat/spheretracer/output"
	"github.com/echoflaresat/spheretracer/render"
	"github.com/echoflaresat/spheretracer/scene"
	"github.com/echoflaresat/spheretracer/sky"
)

var errBaselineMismatch = errors.New("render differs from baseline")

type config struct {
	scenePath     *string
	width, height *int
	fov           *float64
	fovConvention *string
	workers       *int
	sunTime       *string
	sunDistance   *float64
	out           *string
	baseline      *string
	verbose       *bool
	showHelp      *bool
}

func defineFlags(fs *flag.FlagSet) config {
	return config{
		scenePath: fs.String("scene", "", "Scene description (JSON); defaults to the built-in reference scene"),

		width:         fs.Int("width", 400, "Output image width in pixels"),
		height:        fs.Int("height", 300, "Output image height in pixels"),
		fov:           fs.Float64("fov", 40.0, "Camera vertical field of view in degrees"),
		fovConvention: fs.String("fov-convention", "legacy", "How -fov maps to the image plane: legacy (1/tan(fov)) or half-angle (1/tan(fov/2))"),

		workers:     fs.Int("workers", 0, "Rows rendered in parallel (0 = GOMAXPROCS)"),
		sunTime:     fs.String("sun-time", "", "Place the light at the Sun's direction at this RFC3339 time (e.g., 2025-08-02T15:04:05Z)"),
		sunDistance: fs.Float64("sun-distance", 100.0, "Distance of the Sun light from the origin"),

		out:      fs.String("out", "render.png", "Output image path (.png, .jpg, .tif)"),
		baseline: fs.String("baseline", "", "Fail if the render differs from this previously saved image"),

		verbose:  fs.Bool("v", false, "Verbose logging"),
		showHelp: fs.Bool("h", false, "Show this help message"),
	}
}

func printHelp(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `Sphere Tracer - diffuse sphere renderer

Usage:
  %[1]s [options]

`, os.Args[0])

	printGroup(fs, "Scene", []string{"scene", "sun-time", "sun-distance"})
	printGroup(fs, "Camera Options", []string{"width", "height", "fov", "fov-convention"})
	printGroup(fs, "Rendering Options", []string{"workers"})
	printGroup(fs, "Output", []string{"out", "baseline"})
	printGroup(fs, "Misc", []string{"v", "h"})
}

func printGroup(fs *flag.FlagSet, title string, keys []string) {
	fmt.Fprintf(os.Stderr, "%s:\n", title)
	for _, name := range keys {
		if f := fs.Lookup(name); f != nil {
			fmt.Fprintf(os.Stderr, "  -%-15s %s (default %q)\n", f.Name, f.Usage, f.DefValue)
		}
	}
	fmt.Fprintln(os.Stderr)
}

func main() {
	fs := flag.CommandLine
	cfg := defineFlags(fs)
	fs.Usage = func() { printHelp(fs) }
	flag.Parse()

	if *cfg.showHelp {
		printHelp(fs)
		return
	}

	level := slog.LevelInfo
	if *cfg.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	rc, err := buildContext(cfg, explicitFlags(fs))
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	img, err := render.RenderImage(rc, render.Options{Workers: *cfg.workers})
	if err != nil {
		log.Fatal(err)
	}

	if err := output.Save(*cfg.out, img); err != nil {
		log.Fatalf("Failed to write image: %v", err)
	}
	slog.Info("rendered", "out", *cfg.out, "width", rc.Camera.Width, "height", rc.Camera.Height, "elapsed", time.Since(start))

	if *cfg.baseline != "" {
		if err := checkBaseline(*cfg.baseline, img); err != nil {
			log.Fatal(err)
		}
		slog.Info("render matches baseline", "baseline", *cfg.baseline)
	}
}

// checkBaseline compares img against a previously saved frame.
func checkBaseline(path string, img image.Image) error {
	want, err := output.Load(path)
	if err != nil {
		return fmt.Errorf("load baseline: %w", err)
	}
	if !output.Equal(want, img) {
		return fmt.Errorf("%w: %s", errBaselineMismatch, path)
	}
	return nil
}

func explicitFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// buildContext assembles the scene and camera. Values from the scene file's
// camera block apply unless the matching flag was given explicitly.
func buildContext(cfg config, explicit map[string]bool) (render.RenderContext, error) {
	s := scene.Default()
	var fileCam *scene.CameraSpec
	if *cfg.scenePath != "" {
		var err error
		s, fileCam, err = scene.Load(*cfg.scenePath)
		if err != nil {
			return render.RenderContext{}, err
		}
		slog.Debug("scene loaded", "path", *cfg.scenePath, "spheres", len(s.Spheres))
	}

	width, height, fov, convention := *cfg.width, *cfg.height, *cfg.fov, *cfg.fovConvention
	if fileCam != nil {
		if fileCam.Width > 0 && !explicit["width"] {
			width = fileCam.Width
		}
		if fileCam.Height > 0 && !explicit["height"] {
			height = fileCam.Height
		}
		if fileCam.FOVDegrees > 0 && !explicit["fov"] {
			fov = fileCam.FOVDegrees
		}
		if fileCam.FOVConvention != "" && !explicit["fov-convention"] {
			convention = fileCam.FOVConvention
		}
	}

	if *cfg.sunTime != "" {
		t, err := time.Parse(time.RFC3339, *cfg.sunTime)
		if err != nil {
			return render.RenderContext{}, fmt.Errorf("invalid -sun-time: %w", err)
		}
		if *cfg.sunDistance <= 0 {
			return render.RenderContext{}, fmt.Errorf("-sun-distance must be positive, got %v", *cfg.sunDistance)
		}
		s.Light.Position = sky.SunLight(t, *cfg.sunDistance)
		slog.Debug("sun light", "time", t, "position", s.Light.Position)
	}

	conv, err := render.ParseFOVConvention(convention)
	if err != nil {
		return render.RenderContext{}, err
	}
	cam, err := render.NewCamera(width, height, fov, conv)
	if err != nil {
		return render.RenderContext{}, err
	}
	return render.NewRenderContext(s, cam)
}
