package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/echoflaresat/spheretracer/colors"
	"github.com/echoflaresat/spheretracer/sky"
	"github.com/echoflaresat/spheretracer/vectors"
	"golang.org/x/exp/mmap"
)

var (
	ErrMissingLight   = errors.New("light needs either a position or a sun block")
	ErrAmbiguousLight = errors.New("light has both a position and a sun block")
)

// CameraSpec is the optional camera block of a scene file. Zero fields
// mean "not set" and are filled in by the caller.
type CameraSpec struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	FOVDegrees    float64 `json:"fov_degrees"`
	FOVConvention string  `json:"fov_convention"`
}

// SunSpec places the light along the solar direction at Time.
type SunSpec struct {
	Time     string  `json:"time"`
	Distance float64 `json:"distance"`
}

type LightSpec struct {
	Position *Point   `json:"position,omitempty"`
	Sun      *SunSpec `json:"sun,omitempty"`
}

type SphereSpec struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
	Albedo Color   `json:"albedo"`
}

// File is the JSON layout of a scene description.
type File struct {
	Camera     *CameraSpec  `json:"camera,omitempty"`
	Background Color        `json:"background"`
	Light      LightSpec    `json:"light"`
	Spheres    []SphereSpec `json:"spheres"`
}

// Point is a JSON [x, y, z] triple.
type Point vectors.Vec3

func (p *Point) UnmarshalJSON(data []byte) error {
	xyz, err := decodeTriple(data)
	if err != nil {
		return fmt.Errorf("point must be [x, y, z]: %w", err)
	}
	*p = Point(xyz)
	return nil
}

// Color is a JSON color, either [r, g, b] in [0,1] or a "#rrggbb" string.
type Color vectors.Vec3

func (c *Color) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		rgb, err := colors.ParseHex(s)
		if err != nil {
			return err
		}
		*c = Color(rgb.Vec3())
		return nil
	}
	rgb, err := decodeTriple(data)
	if err != nil {
		return fmt.Errorf("color must be [r, g, b] or \"#rrggbb\": %w", err)
	}
	*c = Color(rgb)
	return nil
}

func decodeTriple(data []byte) (vectors.Vec3, error) {
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return vectors.Vec3{}, err
	}
	if len(v) != 3 {
		return vectors.Vec3{}, fmt.Errorf("got %d components", len(v))
	}
	return vectors.New(v[0], v[1], v[2]), nil
}

// Load reads and validates a scene file. The camera block is returned
// as-is and is nil when the file has none.
func Load(path string) (Scene, *CameraSpec, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return Scene{}, nil, err
	}
	defer reader.Close()

	f, err := Decode(io.NewSectionReader(reader, 0, int64(reader.Len())))
	if err != nil {
		return Scene{}, nil, fmt.Errorf("%s: %w", path, err)
	}

	s, err := f.Build()
	if err != nil {
		return Scene{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, f.Camera, nil
}

// Decode parses a scene file without validating it.
func Decode(r io.Reader) (File, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return File{}, fmt.Errorf("decode scene: %w", err)
	}
	return f, nil
}

// Build converts the file into a validated Scene.
func (f File) Build() (Scene, error) {
	light, err := f.Light.resolve()
	if err != nil {
		return Scene{}, err
	}

	s := Scene{
		Spheres:    make([]Sphere, 0, len(f.Spheres)),
		Light:      light,
		Background: vectors.Vec3(f.Background),
	}
	for _, sp := range f.Spheres {
		s.Spheres = append(s.Spheres, Sphere{
			Center: vectors.Vec3(sp.Center),
			Radius: sp.Radius,
			Albedo: vectors.Vec3(sp.Albedo),
		})
	}

	if err := s.Validate(); err != nil {
		return Scene{}, err
	}
	return s, nil
}

func (l LightSpec) resolve() (Light, error) {
	switch {
	case l.Position != nil && l.Sun != nil:
		return Light{}, ErrAmbiguousLight
	case l.Position != nil:
		return Light{Position: vectors.Vec3(*l.Position)}, nil
	case l.Sun != nil:
		ts, err := time.Parse(time.RFC3339, l.Sun.Time)
		if err != nil {
			return Light{}, fmt.Errorf("sun time: %w", err)
		}
		if l.Sun.Distance <= 0 {
			return Light{}, fmt.Errorf("sun distance must be positive, got %v", l.Sun.Distance)
		}
		return Light{Position: sky.SunLight(ts, l.Sun.Distance)}, nil
	default:
		return Light{}, ErrMissingLight
	}
}
