package render

import (
	"image"
	"image/color"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/echoflaresat/spheretracer/output"
	"golang.org/x/sync/errgroup"
)

// Sink receives finished pixels in image coordinates (origin top-left).
// Render writes every pixel exactly once and never the same pixel from two
// goroutines, so *image.NRGBA can be used directly.
type Sink interface {
	SetNRGBA(x, y int, c color.NRGBA)
}

type Options struct {
	// Workers bounds the number of rows rendered concurrently.
	// Zero or less means runtime.GOMAXPROCS(0).
	Workers int
	Logger  *slog.Logger
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Workers
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Render traces every pixel of rc.Camera into sink. Pixel row y (counted from
// the bottom) lands on image row height-1-y.
func Render(rc RenderContext, sink Sink, opts Options) error {
	if err := rc.Validate(); err != nil {
		return err
	}

	W, H := rc.Camera.Width, rc.Camera.Height
	log := opts.logger()
	start := time.Now()
	log.Debug("render started",
		"width", W, "height", H,
		"spheres", len(rc.Scene.Spheres),
		"fov", rc.Camera.FOVDeg, "convention", rc.Camera.Convention, "near", rc.Camera.Near(),
		"workers", opts.workers())

	var done atomic.Int64
	var g errgroup.Group
	g.SetLimit(opts.workers())

	for y := 0; y < H; y++ {
		g.Go(func() error {
			row := H - 1 - y
			for x := 0; x < W; x++ {
				sink.SetNRGBA(x, row, rc.Pixel(x, y))
			}
			reportProgress(log, done.Add(1), int64(H))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Debug("render finished", "elapsed", time.Since(start))
	return nil
}

// RenderImage renders into a new NRGBA image of the camera's size.
func RenderImage(rc RenderContext, opts Options) (*image.NRGBA, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	img := output.NewImage(rc.Camera.Width, rc.Camera.Height)
	if err := Render(rc, img, opts); err != nil {
		return nil, err
	}
	return img, nil
}

// reportProgress logs each time another 10% of the rows is complete.
func reportProgress(log *slog.Logger, rows, total int64) {
	if rows*10/total != (rows-1)*10/total {
		log.Debug("render progress", "percent", rows*100/total)
	}
}
