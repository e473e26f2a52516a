package render

import (
	"fmt"
	"image/color"

	"github.com/echoflaresat/spheretracer/colors"
	"github.com/echoflaresat/spheretracer/scene"
	"github.com/echoflaresat/spheretracer/vectors"
)

// RenderContext holds everything a pixel depends on. It is read-only during a
// render and safe to share between goroutines.
type RenderContext struct {
	Scene  scene.Scene
	Camera Camera
}

func NewRenderContext(s scene.Scene, cam Camera) (RenderContext, error) {
	rc := RenderContext{Scene: s, Camera: cam}
	if err := rc.Validate(); err != nil {
		return RenderContext{}, err
	}
	return rc, nil
}

func (rc RenderContext) Validate() error {
	if err := rc.Camera.validate(); err != nil {
		return err
	}
	if err := rc.Scene.Validate(); err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	return nil
}

// Trace runs camera, resolver and shader for pixel (x, y) and returns the
// unclamped linear color.
func (rc RenderContext) Trace(x, y int) vectors.Vec3 {
	ray := rc.Camera.GenerateRay(x, y)
	hit := Resolve(rc.Scene, ray)
	return Shade(hit, rc.Scene.Light.Position, rc.Scene.Background)
}

// Pixel returns the quantized color of pixel (x, y).
func (rc RenderContext) Pixel(x, y int) color.NRGBA {
	return colors.FromVec3(rc.Trace(x, y)).ToNRGBA()
}
