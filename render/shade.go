package render

import "github.com/echoflaresat/spheretracer/vectors"

// Shade evaluates Lambertian diffuse lighting from a point light.
//
// The cosine term is not clamped: surfaces facing away from the light come
// out negative and end up black after quantization.
func Shade(hit HitInfo, light, background vectors.Vec3) vectors.Vec3 {
	if !hit.Hit {
		return background
	}

	lightDir := light.Sub(hit.Point).Normalize()
	intensity := lightDir.Dot(hit.Normal)
	return hit.Albedo.Scale(intensity)
}
