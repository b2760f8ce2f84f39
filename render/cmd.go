package render

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"mandelbmp/bitmap"
	"mandelbmp/fileop"
	"mandelbmp/fractal"
	"mandelbmp/parallel"
	"mandelbmp/pixbuf"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Width     int    `arg:"" help:"Image width in pixels. Rounded down to a multiple of 4."`
	Height    int    `arg:"" help:"Image height in pixels."`
	Output    string `arg:"" help:"Destination file." type:"path"`
	Format    string `help:"Output format. 'auto' picks it from the destination extension." enum:"auto,bmp,bmp.zst,png,tiff" default:"auto"`
	NoClobber bool   `help:"Refuse to overwrite an existing destination." default:"false"`
	Thumb     int    `help:"If positive, also write a PNG thumbnail of this width next to the output." group:"thumbnail"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	// rows are written unpadded, so width*3 has to stay 4-byte aligned
	c.Width -= c.Width % 4
	if err := pixbuf.CheckGeometry(c.Width, c.Height); err != nil {
		return fmt.Errorf("invalid width/height value: %w", err)
	}

	if c.Thumb < 0 {
		return fmt.Errorf("invalid thumbnail width: %d", c.Thumb)
	}

	c.Format = resolveFormat(c.Format, c.Output)

	if c.NoClobber {
		if err := fileop.CheckDest(c.Output); err != nil {
			return err
		}
		if c.Thumb > 0 {
			if err := fileop.CheckDest(thumbPath(c.Output)); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *CLICmd) Run(kctx *kong.Context, pool *parallel.Pool) error {
	logger := slog.Default().With("file", c.Output)

	sampler := &fractal.Sampler{Pool: pool, Logger: logger}
	buf, err := sampler.Sample(c.Width, c.Height)
	if err != nil {
		return fmt.Errorf("could not render %dx%d image: %w", c.Width, c.Height, err)
	}
	logger.Info("rendered", "width", buf.Width, "height", buf.Height, "workers", pool.Size())

	scratch := &pngScratch{}
	size, err := save(buf, c.Format, c.Output, scratch)
	if err != nil {
		return err
	}

	fmt.Fprintf(kctx.Stdout, "Output information:\n")
	fmt.Fprintf(kctx.Stdout, "File Name: %s\n", c.Output)
	fmt.Fprintf(kctx.Stdout, "File size: %d bytes\n", size)
	fmt.Fprintf(kctx.Stdout, "Width:  %d\n", buf.Width)
	fmt.Fprintf(kctx.Stdout, "Height: %d\n\n", buf.Height)

	if c.Thumb > 0 {
		dest := thumbPath(c.Output)
		thumbLog := logger.With("thumbnail", dest)
		if err := saveThumb(thumbLog, buf, c.Thumb, dest, scratch); err != nil {
			return err
		}
	}

	logger.Info("stats", "format", c.Format, "bytes", size, "bmpSize", bitmap.FileSize(buf.Width, buf.Height))
	return nil
}

func resolveFormat(format, dest string) string {
	if format != "auto" {
		return format
	}

	switch strings.ToLower(filepath.Ext(dest)) {
	case ".zst":
		return "bmp.zst"
	case ".png":
		return "png"
	case ".tif", ".tiff":
		return "tiff"
	default:
		return "bmp"
	}
}

func thumbPath(dest string) string {
	return dest + ".thumb.png"
}
