package render

import (
	"image"
	"image/png"
	"io"
	"log/slog"
	"math"

	"mandelbmp/fileop"
	"mandelbmp/pixbuf"

	"golang.org/x/image/draw"
)

// thumbnail scales the upright image to width pixels, keeping the aspect
// ratio. Images already narrower than width are not enlarged.
func thumbnail(buf *pixbuf.BGR, width int) image.Image {
	src := buf.Upright()
	srcBounds := src.Bounds()
	if width >= srcBounds.Dx() {
		return src
	}

	height := int(math.Round(float64(srcBounds.Dy()) * float64(width) / float64(srcBounds.Dx())))
	height = max(height, 1)

	dest := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dest, dest.Bounds(), src, srcBounds, draw.Src, nil)
	return dest
}

func saveThumb(logger *slog.Logger, buf *pixbuf.BGR, width int, dest string, scratch *pngScratch) error {
	img := thumbnail(buf, width)
	logger.Info("writing thumbnail", "width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	enc := png.Encoder{BufferPool: scratch}
	_, err := fileop.WriteAtomic(dest, func(w io.Writer) error {
		return enc.Encode(w, img)
	})
	return err
}
