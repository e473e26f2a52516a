package render

import (
	"errors"
	"math"

	"github.com/echoflaresat/spheretracer/scene"
	"github.com/echoflaresat/spheretracer/vectors"
)

var ErrZeroDirection = errors.New("ray direction has zero length")

// Ray starts at the world origin. Direction must be unit length; only the
// zero vector is caught, by Intersect.
type Ray struct {
	Direction vectors.Vec3
}

// At returns the point t units along the ray.
func (r Ray) At(t float64) vectors.Vec3 {
	return r.Direction.Scale(t)
}

// HitInfo describes a ray/sphere intersection. Point, Normal and Albedo are
// only meaningful when Hit is true; Normal is then unit length and points out
// of the sphere.
type HitInfo struct {
	Hit    bool
	Point  vectors.Vec3
	Normal vectors.Vec3
	Albedo vectors.Vec3
}

// Distance returns the distance of the hit from the ray origin.
func (h HitInfo) Distance() float64 {
	return h.Point.Norm()
}

// Intersect solves a·t² + b·t + c = 0 for a ray from the origin.
//
// Spheres whose center lies behind the origin (b > 0) and spheres that
// contain the origin (c < 0) are treated as misses. A zero direction is a
// caller bug and panics with ErrZeroDirection.
func Intersect(s scene.Sphere, r Ray) HitInfo {
	rd := r.Direction

	a := rd.Dot(rd)
	if a == 0 {
		panic(ErrZeroDirection)
	}
	b := -2.0 * rd.Dot(s.Center)
	c := s.Center.Dot(s.Center) - s.Radius*s.Radius

	if b > 0 {
		return HitInfo{}
	}
	if c < 0 {
		return HitInfo{}
	}

	discriminant := b*b - 4.0*a*c
	if discriminant < 0 {
		return HitInfo{}
	}

	// nearer root
	t := (-b - math.Sqrt(discriminant)) / (2.0 * a)
	point := r.At(t)

	return HitInfo{
		Hit:    true,
		Point:  point,
		Normal: point.Sub(s.Center).Normalize(),
		Albedo: s.Albedo,
	}
}
