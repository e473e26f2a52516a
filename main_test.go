package main

import (
	"errors"
	"flag"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/echoflaresat/spheretracer/output"
	"github.com/echoflaresat/spheretracer/render"
	"github.com/echoflaresat/spheretracer/scene"
)

func parseArgs(t *testing.T, args ...string) (config, map[string]bool) {
	t.Helper()
	fs := flag.NewFlagSet("spheretracer", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg := defineFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return cfg, explicitFlags(fs)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestBuildContextDefaults(t *testing.T) {
	rc, err := buildContext(parseArgs(t))
	if err != nil {
		t.Fatalf("buildContext: %v", err)
	}
	cam := rc.Camera
	if cam.Width != 400 || cam.Height != 300 || cam.FOVDeg != 40 || cam.Convention != render.FOVLegacy {
		t.Errorf("camera = %+v", cam)
	}
	if len(rc.Scene.Spheres) != len(scene.Default().Spheres) {
		t.Errorf("scene = %+v, want default", rc.Scene)
	}
}

func TestBuildContextSceneFile(t *testing.T) {
	path := writeFile(t, "scene.json", `{
		"camera": {"width": 64, "height": 32, "fov_degrees": 60, "fov_convention": "half-angle"},
		"background": "#000080",
		"light": {"position": [0, 4, 0]},
		"spheres": [{"center": [0, 0, 5], "radius": 1, "albedo": [1, 0, 0]}]
	}`)

	t.Run("file values", func(t *testing.T) {
		rc, err := buildContext(parseArgs(t, "-scene", path))
		if err != nil {
			t.Fatalf("buildContext: %v", err)
		}
		cam := rc.Camera
		if cam.Width != 64 || cam.Height != 32 || cam.FOVDeg != 60 || cam.Convention != render.FOVHalfAngle {
			t.Errorf("camera = %+v", cam)
		}
	})

	t.Run("flags override file", func(t *testing.T) {
		rc, err := buildContext(parseArgs(t, "-scene", path, "-width", "20", "-fov-convention", "legacy"))
		if err != nil {
			t.Fatalf("buildContext: %v", err)
		}
		cam := rc.Camera
		if cam.Width != 20 || cam.Height != 32 || cam.Convention != render.FOVLegacy {
			t.Errorf("camera = %+v", cam)
		}
	})
}

func TestBuildContextSunLight(t *testing.T) {
	rc, err := buildContext(parseArgs(t, "-sun-time", "2024-08-08T09:23:00Z", "-sun-distance", "25"))
	if err != nil {
		t.Fatalf("buildContext: %v", err)
	}
	if d := rc.Scene.Light.Position.Norm(); math.Abs(d-25) > 1e-9 {
		t.Errorf("|light| = %v, want 25", d)
	}
}

func TestBuildContextErrors(t *testing.T) {
	badScene := writeFile(t, "bad.json", `{"light": {"position": [0,0,0]}, "spheres": [{"center": [0,0,4], "radius": -1, "albedo": [1,1,1]}]}`)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown convention", []string{"-fov-convention", "diagonal"}, render.ErrInvalidCamera},
		{"zero width", []string{"-width", "0"}, render.ErrInvalidCamera},
		{"invalid scene", []string{"-scene", badScene}, scene.ErrInvalidRadius},
		{"missing scene", []string{"-scene", filepath.Join(t.TempDir(), "none.json")}, os.ErrNotExist},
		{"bad sun time", []string{"-sun-time", "noon"}, nil},
		{"bad sun distance", []string{"-sun-time", "2024-08-08T09:23:00Z", "-sun-distance", "-1"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildContext(parseArgs(t, tt.args...))
			if err == nil {
				t.Fatal("buildContext succeeded, want error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRenderIsReproducible(t *testing.T) {
	rc, err := buildContext(parseArgs(t, "-width", "80", "-height", "60"))
	if err != nil {
		t.Fatalf("buildContext: %v", err)
	}

	first, err := render.RenderImage(rc, render.Options{Workers: 1})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := render.RenderImage(rc, render.Options{Workers: 4})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !output.Equal(first, second) {
		t.Fatal("two renders of the same scene differ")
	}

	for _, name := range []string{"out.png", "out.tif"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := output.Save(path, first); err != nil {
				t.Fatalf("Save: %v", err)
			}
			loaded, err := output.Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !output.Equal(first, loaded) {
				t.Errorf("%s does not round-trip", name)
			}
		})
	}
}

func TestReferenceFrameLayout(t *testing.T) {
	rc, err := buildContext(parseArgs(t))
	if err != nil {
		t.Fatalf("buildContext: %v", err)
	}
	img, err := render.RenderImage(rc, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	black := [4]uint8{0, 0, 0, 255}
	at := func(x, y int) [4]uint8 {
		c := img.NRGBAAt(x, y)
		return [4]uint8{c.R, c.G, c.B, c.A}
	}
	// sphere in the middle, lit from the upper left
	if at(200, 150) == black {
		t.Error("image center should show the lit sphere")
	}
	if at(0, 0) != black || at(399, 299) != black {
		t.Error("image corners should show the black background")
	}
	upperLeft, lowerRight := at(185, 135), at(215, 165)
	if upperLeft[0] <= lowerRight[0] {
		t.Errorf("upper-left of sphere (%v) should be brighter than lower-right (%v)", upperLeft, lowerRight)
	}
}

func TestReferenceFrameMatchesGolden(t *testing.T) {
	runGoldenImageTest(t, filepath.Join("testdata", "reference_80x60.tif"), func() (*image.NRGBA, error) {
		rc, err := buildContext(parseArgs(t, "-width", "80", "-height", "60"))
		if err != nil {
			return nil, err
		}
		return render.RenderImage(rc, render.Options{Workers: 2})
	})
}

func TestCheckBaselineMismatch(t *testing.T) {
	rc, err := buildContext(parseArgs(t, "-width", "80", "-height", "60"))
	if err != nil {
		t.Fatalf("buildContext: %v", err)
	}
	img, err := render.RenderImage(rc, render.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})

	err = checkBaseline(filepath.Join("testdata", "reference_80x60.tif"), img)
	if !errors.Is(err, errBaselineMismatch) {
		t.Errorf("error = %v, want errBaselineMismatch", err)
	}
	if err := checkBaseline(filepath.Join(t.TempDir(), "none.tif"), img); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing baseline error = %v, want os.ErrNotExist", err)
	}
}

// runGoldenImageTest renders with renderFunc and compares the result against the
// image at expectedPath. A missing baseline is written and the test fails; a
// differing render is saved next to the baseline for inspection.
func runGoldenImageTest(t *testing.T, expectedPath string, renderFunc func() (*image.NRGBA, error)) {
	t.Helper()

	img, err := renderFunc()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		if err := output.Save(expectedPath, img); err != nil {
			t.Fatalf("failed to write baseline image: %v", err)
		}
		t.Fatalf("baseline image %s did not exist, created one", expectedPath)
	}

	if err := checkBaseline(expectedPath, img); err != nil {
		actualPath := strings.TrimSuffix(expectedPath, filepath.Ext(expectedPath)) + ".actual.png"
		if werr := output.Save(actualPath, img); werr != nil {
			t.Fatalf("%v (and failed to save actual image: %v)", err, werr)
		}
		t.Fatalf("%v; saved new image to %s", err, actualPath)
	}
}
