package main

import (
	"log/slog"
	"os"

	"mandelbmp/inspect"
	"mandelbmp/palette"
	"mandelbmp/parallel"
	"mandelbmp/render"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Workers  int    `help:"Number of rendering workers. 0 uses every available CPU." default:"0"`
	LogLevel string `help:"Log level." enum:"debug,info,warn,error" default:"info"`

	Render  render.CLICmd  `cmd:"" help:"Render the Mandelbrot set to an image file"`
	Palette palette.CLICmd `cmd:"" help:"Export the escape-time palette as a RIFF PAL file"`
	Inspect inspect.CLICmd `cmd:"" help:"Check the headers of BMP files"`
}

func (c *CLI) AfterApply() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("mandelbmp"),
		kong.Description("Mandelbrot escape-time renderer writing 24-bit BMP files."),
		kong.UsageOnError(),
	)

	pool := parallel.Start(cli.Workers)
	err := kctx.Run(pool)
	pool.Close()
	kctx.FatalIfErrorf(err)
}
