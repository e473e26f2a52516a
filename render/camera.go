package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/echoflaresat/spheretracer/vectors"
)

var ErrInvalidCamera = errors.New("invalid camera")

// FOVConvention selects how the vertical field of view maps to the distance
// of the image plane.
type FOVConvention int

const (
	// FOVLegacy uses near = 1/tan(fov). This is what the reference renders
	// were produced with; a "40°" camera frames like an 80° pinhole.
	FOVLegacy FOVConvention = iota
	// FOVHalfAngle uses near = 1/tan(fov/2), the usual pinhole relation.
	FOVHalfAngle
)

func (c FOVConvention) String() string {
	switch c {
	case FOVLegacy:
		return "legacy"
	case FOVHalfAngle:
		return "half-angle"
	default:
		return fmt.Sprintf("FOVConvention(%d)", int(c))
	}
}

// ParseFOVConvention accepts "legacy" (or empty) and "half-angle".
func ParseFOVConvention(s string) (FOVConvention, error) {
	switch s {
	case "", "legacy":
		return FOVLegacy, nil
	case "half-angle", "half":
		return FOVHalfAngle, nil
	}
	return 0, fmt.Errorf("%w: unknown fov convention %q", ErrInvalidCamera, s)
}

// Camera is a pinhole at the world origin looking down +z with +y up.
type Camera struct {
	Width      int
	Height     int
	FOVDeg     float64
	Convention FOVConvention

	aspect float64
	near   float64
}

// NewCamera builds a camera for a width×height image with the given vertical
// field of view in degrees.
func NewCamera(width, height int, fovDeg float64, convention FOVConvention) (Camera, error) {
	if width <= 0 || height <= 0 {
		return Camera{}, fmt.Errorf("%w: image size %dx%d", ErrInvalidCamera, width, height)
	}

	fov := fovDeg * math.Pi / 180.0
	var near float64
	switch convention {
	case FOVLegacy:
		if !(fov > 0 && fov < math.Pi/2) {
			return Camera{}, fmt.Errorf("%w: legacy fov must be in (0, 90) degrees, got %v", ErrInvalidCamera, fovDeg)
		}
		near = 1.0 / math.Tan(fov)
	case FOVHalfAngle:
		if !(fov > 0 && fov < math.Pi) {
			return Camera{}, fmt.Errorf("%w: fov must be in (0, 180) degrees, got %v", ErrInvalidCamera, fovDeg)
		}
		near = 1.0 / math.Tan(fov/2.0)
	default:
		return Camera{}, fmt.Errorf("%w: %v", ErrInvalidCamera, convention)
	}

	return Camera{
		Width:      width,
		Height:     height,
		FOVDeg:     fovDeg,
		Convention: convention,
		aspect:     float64(width) / float64(height),
		near:       near,
	}, nil
}

// Near returns the distance of the image plane.
func (c Camera) Near() float64 {
	return c.near
}

func (c Camera) validate() error {
	if c.Width <= 0 || c.Height <= 0 || !(c.near > 0) || math.IsInf(c.near, 0) {
		return fmt.Errorf("%w: use NewCamera", ErrInvalidCamera)
	}
	return nil
}

// GenerateRay returns the unit ray through pixel (x, y), with (0, 0) at the
// bottom-left. The pixel's lower-left corner is sampled, not its center, so
// the exact center ray is the one through (width/2, height/2).
func (c Camera) GenerateRay(x, y int) Ray {
	// [0,1] -> [-1,1]
	u := 2.0*float64(x)/float64(c.Width) - 1.0
	v := 2.0*float64(y)/float64(c.Height) - 1.0

	dir := vectors.Vec3{X: u * c.aspect, Y: v, Z: c.near}
	return Ray{Direction: dir.Normalize()}
}
