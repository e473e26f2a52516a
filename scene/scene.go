package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/echoflaresat/spheretracer/vectors"
)

var (
	ErrInvalidRadius = errors.New("sphere radius must be positive")
	ErrInvalidAlbedo = errors.New("albedo components must lie in [0,1]")
	ErrNonFinite     = errors.New("non-finite coordinate")
)

// Sphere is a diffuse spherical primitive.
type Sphere struct {
	Center vectors.Vec3
	Radius float64
	Albedo vectors.Vec3
}

// Light is a single point light.
type Light struct {
	Position vectors.Vec3
}

// Scene is the immutable input of one render. Sphere order does not affect
// the result; only the nearest hit along each ray matters.
type Scene struct {
	Spheres    []Sphere
	Light      Light
	Background vectors.Vec3
}

// Default returns the reference scene: one white unit sphere four units in
// front of the camera, lit from the upper left, on a black background.
func Default() Scene {
	return Scene{
		Spheres: []Sphere{
			{Center: vectors.New(0, 0, 4), Radius: 1, Albedo: vectors.New(1, 1, 1)},
		},
		Light:      Light{Position: vectors.New(-3, 3, 0)},
		Background: vectors.Zero(),
	}
}

// Validate reports the first malformed element of s.
func (s Scene) Validate() error {
	for i, sp := range s.Spheres {
		if err := sp.Validate(); err != nil {
			return fmt.Errorf("sphere %d: %w", i, err)
		}
	}
	if !s.Light.Position.IsFinite() {
		return fmt.Errorf("light position: %w", ErrNonFinite)
	}
	if !s.Background.IsFinite() {
		return fmt.Errorf("background: %w", ErrNonFinite)
	}
	return nil
}

func (sp Sphere) Validate() error {
	if math.IsNaN(sp.Radius) || math.IsInf(sp.Radius, 0) || sp.Radius <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidRadius, sp.Radius)
	}
	if !sp.Center.IsFinite() {
		return fmt.Errorf("center: %w", ErrNonFinite)
	}
	for _, c := range [3]float64{sp.Albedo.X, sp.Albedo.Y, sp.Albedo.Z} {
		if !(c >= 0 && c <= 1) {
			return fmt.Errorf("%w: got %v", ErrInvalidAlbedo, sp.Albedo)
		}
	}
	return nil
}
