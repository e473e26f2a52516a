package colors

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/echoflaresat/spheretracer/vectors"
)

var ErrInvalidHex = errors.New("invalid hex color")

// RGB is a linear color with float64 components. Values outside [0,1]
// are allowed while shading and are only clamped on quantization.
type RGB struct {
	R, G, B float64
}

// FromVec3 interprets v as (r, g, b).
func FromVec3(v vectors.Vec3) RGB {
	return RGB{R: v.X, G: v.Y, B: v.Z}
}

// Vec3 returns c as (r, g, b).
func (c RGB) Vec3() vectors.Vec3 {
	return vectors.Vec3{X: c.R, Y: c.G, Z: c.B}
}

// From8BitRGB maps 0..255 channels onto [0,1].
func From8BitRGB(r, g, b byte) RGB {
	return RGB{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
}

// ParseHex parses "#rrggbb", "rrggbb" or the short "#rgb" form.
func ParseHex(s string) (RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return From8BitRGB(byte(n>>16), byte(n>>8), byte(n)), nil
}

// ToNRGBA quantizes c to 8 bits per channel: round(clamp01(x) * 255).
// Negative values from back-facing shading become 0, over-range values 255.
func (c RGB) ToNRGBA() color.NRGBA {
	return color.NRGBA{
		R: to8bit(c.R),
		G: to8bit(c.G),
		B: to8bit(c.B),
		A: 255,
	}
}

// --- helpers ---

func clamp01(x float64) float64 {
	if math.IsNaN(x) || x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func to8bit(x float64) uint8 {
	return uint8(math.Round(255.0 * clamp01(x)))
}
