package palette

import (
	"fmt"
	"image/color"
	"io"
)

// EscapeSize is the number of entries in the escape-time palette.
const EscapeSize = 384

type RGB struct {
	R, G, B uint8
}

// Escape maps an escape iteration count (mod EscapeSize) to a color: a
// red ramp, then red with rising green, then yellow fading out its red.
// Entry 0 is black.
type Escape [EscapeSize]RGB

var _ PaletteRIFFWriter = Escape{}

func NewEscape() Escape {
	var p Escape
	for i := range 128 {
		p[i] = RGB{R: uint8(i * 2)}
		p[128+i] = RGB{R: uint8(i * 2), G: uint8(127 + i)}
		p[256+i] = RGB{R: uint8(255 - i), G: 255}
	}
	p[0] = RGB{}
	return p
}

func (p Escape) Palette() color.Palette {
	pal := make(color.Palette, len(p))
	for i, c := range p {
		pal[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
	}
	return pal
}

func (p Escape) WriteRIFF(w io.Writer) (int64, error) {
	if n, err := WriteTo(w, []color.Palette{p.Palette()}); err != nil {
		return n, fmt.Errorf("could not save palette: %w", err)
	} else {
		return n, nil
	}
}
