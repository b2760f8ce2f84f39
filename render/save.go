package render

import (
	"fmt"
	"image/png"
	"io"

	"mandelbmp/bitmap"
	"mandelbmp/fileop"
	"mandelbmp/pixbuf"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/tiff"
)

// save writes buf to dest in the given format and returns the file size.
func save(buf *pixbuf.BGR, format, dest string, scratch *pngScratch) (int64, error) {
	return fileop.WriteAtomic(dest, func(w io.Writer) error {
		return encode(w, buf, format, scratch)
	})
}

func encode(w io.Writer, buf *pixbuf.BGR, format string, scratch *pngScratch) error {
	switch format {
	case "bmp":
		if _, err := bitmap.Write(w, buf.Width, buf.Height, buf.Pix); err != nil {
			return fmt.Errorf("could not encode BMP: %w", err)
		}
	case "bmp.zst":
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return fmt.Errorf("could not start zstd stream: %w", err)
		}
		if _, err = bitmap.Write(enc, buf.Width, buf.Height, buf.Pix); err != nil {
			_ = enc.Close()
			return fmt.Errorf("could not encode BMP: %w", err)
		}
		if err = enc.Close(); err != nil {
			return fmt.Errorf("could not finish zstd stream: %w", err)
		}
	case "png":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       scratch,
		}
		if err := enc.Encode(w, buf.Upright()); err != nil {
			return fmt.Errorf("could not encode PNG: %w", err)
		}
	case "tiff":
		if err := tiff.Encode(w, buf.Upright(), &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
			return fmt.Errorf("could not encode TIFF: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}

	return nil
}

// pngScratch hands the same encoder buffer to every PNG written during a
// run. Saves happen one after another, so it is not safe for concurrent use.
type pngScratch struct {
	buf *png.EncoderBuffer
}

func (p *pngScratch) Get() *png.EncoderBuffer {
	buf := p.buf
	if buf == nil {
		buf = new(png.EncoderBuffer)
	}
	p.buf = nil
	return buf
}

func (p *pngScratch) Put(buf *png.EncoderBuffer) {
	p.buf = buf
}
