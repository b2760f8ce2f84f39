package inspect

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mandelbmp/bitmap"
	"mandelbmp/pixbuf"

	"github.com/alecthomas/kong"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/bmp"
)

type CLICmd struct {
	Files []string `arg:"" help:"BMP files to check. Files ending in .zst are decompressed first."`
}

// Report describes one checked file.
type Report struct {
	Name   string
	Header bitmap.Header
	Size   int
}

func (c *CLICmd) Run(kctx *kong.Context) error {
	var okCount, errCount int
	for _, name := range c.Files {
		rep, err := Check(name)
		if err != nil {
			errCount++
			slog.Error("could not inspect image", "file", name, "error", err)
			continue
		}
		okCount++

		fmt.Fprintf(kctx.Stdout, "%s: %dx%d, %d bpp, %d bytes\n", rep.Name,
			rep.Header.Width, rep.Header.Height, rep.Header.BitsPerPixel, rep.Size)
	}

	slog.Info("stats", "valid", okCount, "errors", errCount, "total", okCount+errCount)

	if errCount > 0 {
		return fmt.Errorf("error inspecting %d files", errCount)
	}
	return nil
}

// Check reads a BMP file and verifies that its headers agree with each
// other, with the file length and with what a standard BMP decoder sees.
func Check(name string) (Report, error) {
	data, err := readFile(name)
	if err != nil {
		return Report{}, err
	}

	hdr, err := bitmap.ParseHeader(data)
	if err != nil {
		return Report{}, fmt.Errorf("could not parse %q: %w", name, err)
	}

	rep := Report{Name: name, Header: hdr, Size: len(data)}
	switch {
	case int(hdr.FileSize) != len(data):
		return rep, fmt.Errorf("%q: header file size %d, actual %d", name, hdr.FileSize, len(data))
	case int(hdr.DataOffset)+int(hdr.ImageSize) != len(data):
		return rep, fmt.Errorf("%q: pixel data at %d+%d does not end the file (%d bytes)", name, hdr.DataOffset, hdr.ImageSize, len(data))
	}

	cfg, err := bmp.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return rep, fmt.Errorf("could not decode %q: %w", name, err)
	}
	if cfg.Width != int(hdr.Width) || cfg.Height != int(hdr.Height) {
		return rep, fmt.Errorf("%q: decoder sees %dx%d, header says %dx%d", name, cfg.Width, cfg.Height, hdr.Width, hdr.Height)
	}

	return rep, nil
}

// maxFileSize is the largest file a bitmap header can describe.
var maxFileSize = pixbuf.MaxBytes + bitmap.HeaderLen

func readFile(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open image %q: %w", name, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close image", "name", name, "error", closeErr)
		}
	}()

	var r io.Reader = f
	if strings.EqualFold(filepath.Ext(name), ".zst") {
		dec, err := zstd.NewReader(f, zstd.WithDecoderMaxMemory(uint64(maxFileSize)))
		if err != nil {
			return nil, fmt.Errorf("could not open zstd stream %q: %w", name, err)
		}
		defer dec.Close()
		r = dec
	}

	data, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("could not read image %q: %w", name, err)
	}
	if int64(len(data)) > maxFileSize {
		return nil, fmt.Errorf("image %q is larger than %d bytes", name, maxFileSize)
	}
	return data, nil
}
