package render

import "github.com/echoflaresat/spheretracer/scene"

// Resolve intersects r with every sphere and returns the hit closest to the
// ray origin, or a zero HitInfo when nothing is hit. When two hits are at
// exactly the same distance either may be returned.
func Resolve(s scene.Scene, r Ray) HitInfo {
	var (
		nearest  HitInfo
		bestDist float64
	)
	for _, sp := range s.Spheres {
		hit := Intersect(sp, r)
		if !hit.Hit {
			continue
		}
		if d := hit.Distance(); !nearest.Hit || d < bestDist {
			nearest, bestDist = hit, d
		}
	}
	return nearest
}
