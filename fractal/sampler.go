// Package fractal samples the Mandelbrot set over a fixed view of the
// complex plane and colors each pixel by its escape time.
package fractal

import (
	"log/slog"

	"mandelbmp/palette"
	"mandelbmp/parallel"
	"mandelbmp/pixbuf"
)

// View of the complex plane: real part in [-2.5, 1.0), imaginary part in
// [-1.0, 1.0).
const (
	RealSpan   = 3.5
	RealOffset = -2.5
	ImagSpan   = 2.0
	ImagOffset = -1.0
)

// MaxIter bounds the escape-time iteration. Points still inside the escape
// radius after MaxIter iterations are considered members of the set.
const MaxIter = 1000

// Point maps pixel (px, py) of a width x height image to the complex plane.
func Point(px, py, width, height int) (x0, y0 float64) {
	x0 = float64(RealSpan/float64(width)*float64(px)) + RealOffset
	y0 = float64(ImagSpan/float64(height)*float64(py)) + ImagOffset
	return x0, y0
}

// Escape iterates z = z*z + c from z = 0 for c = x0 + y0i and returns the
// number of iterations done before |z| exceeded 2, or MaxIter.
func Escape(x0, y0 float64) int {
	var x, y float64
	it := 0
	// explicit conversions keep every product rounded, no fused multiply-add
	for float64(x*x)+float64(y*y) <= 4 && it < MaxIter {
		xtemp := float64(x*x) - float64(y*y) + x0
		y = float64(2*x*y) + y0
		x = xtemp
		it++
	}
	return it
}

// ColorIndex returns the palette entry for an escape count.
func ColorIndex(it int) int {
	if it == MaxIter {
		return 0
	}
	return it % palette.EscapeSize
}

// Sampler renders images, splitting rows across Pool when it has more than
// one worker. The zero value renders sequentially.
type Sampler struct {
	Pool   *parallel.Pool
	Logger *slog.Logger
}

// Sample renders a width x height image with the default Sampler.
func Sample(width, height int) (*pixbuf.BGR, error) {
	return (&Sampler{}).Sample(width, height)
}

func (s *Sampler) Sample(width, height int) (*pixbuf.BGR, error) {
	buf, err := pixbuf.New(width, height)
	if err != nil {
		return nil, err
	}

	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pal := palette.NewEscape()
	bands := parallel.Split(height, s.Pool.Size())
	logger.Debug("sampling", "width", width, "height", height, "bands", len(bands))

	tasks := make([]func(), len(bands))
	for i, band := range bands {
		tasks[i] = func() {
			sampleRows(buf, &pal, band.Start, band.End)
		}
	}
	s.Pool.Run(tasks...)

	return buf, nil
}

// sampleRows fills rows [y0, y1) of buf. Concurrent calls must cover
// disjoint rows.
func sampleRows(buf *pixbuf.BGR, pal *palette.Escape, y0, y1 int) {
	for py := y0; py < y1; py++ {
		for px := range buf.Width {
			c := pal[ColorIndex(Escape(Point(px, py, buf.Width, buf.Height)))]
			buf.SetRGB(px, py, c.R, c.G, c.B)
		}
	}
}
