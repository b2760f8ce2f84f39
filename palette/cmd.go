package palette

import (
	"fmt"
	"io"
	"log/slog"

	"mandelbmp/fileop"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Output    string `arg:"" help:"Destination PAL file." type:"path"`
	NoClobber bool   `help:"Refuse to overwrite an existing destination." default:"false"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if c.NoClobber {
		return fileop.CheckDest(c.Output)
	}
	return nil
}

func (c *CLICmd) Run(kctx *kong.Context) error {
	pal := NewEscape()
	n, err := fileop.WriteAtomic(c.Output, func(w io.Writer) error {
		_, err := pal.WriteRIFF(w)
		return err
	})
	if err != nil {
		return err
	}

	slog.Info("palette written", "file", c.Output, "colors", len(pal), "bytes", n)
	fmt.Fprintf(kctx.Stdout, "%s: %d colors, %d bytes\n", c.Output, len(pal), n)
	return nil
}
