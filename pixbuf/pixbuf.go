package pixbuf

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// BytesPerPixel is the size of one packed B, G, R triple.
const BytesPerPixel = 3

// MaxBytes is the largest pixel payload a bitmap can carry: the file size
// field is 32 bits wide and also counts the 54 header bytes.
const MaxBytes int64 = math.MaxUint32 - 54

// maxBytes also keeps Size within int on 32-bit platforms.
var maxBytes = min(MaxBytes, int64(math.MaxInt))

var (
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrSizeMismatch    = errors.New("pixel buffer size mismatch")
)

// BGR is a packed 24-bit pixel buffer, row-major with the top row first.
type BGR struct {
	// Pix holds the image's pixels in B, G, R order. The pixel at (x, y)
	// starts at Pix[(y*Width + x)*3].
	Pix []uint8
	// Width and Height are the image dimensions in pixels.
	Width, Height int
}

var _ image.Image = &BGR{}

// Size is the byte length of a width x height buffer. Only meaningful for
// dimensions accepted by CheckGeometry.
func Size(width, height int) int {
	return width * height * BytesPerPixel
}

// CheckGeometry rejects non-positive dimensions and images whose pixel data
// would not fit in MaxBytes.
func CheckGeometry(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidGeometry, width, height)
	}
	// divide instead of multiplying so the check itself cannot overflow
	if int64(width) > maxBytes/BytesPerPixel/int64(height) {
		return fmt.Errorf("%w: %dx%d exceeds %d bytes of pixel data", ErrInvalidGeometry, width, height, maxBytes)
	}
	return nil
}

// CheckSize reports ErrSizeMismatch when n is not the byte length of a
// width x height buffer.
func CheckSize(width, height, n int) error {
	if want := Size(width, height); n != want {
		return fmt.Errorf("%w: got %d bytes, want %d for %dx%d", ErrSizeMismatch, n, want, width, height)
	}
	return nil
}

func New(width, height int) (*BGR, error) {
	if err := CheckGeometry(width, height); err != nil {
		return nil, err
	}
	return &BGR{
		Pix:    make([]uint8, Size(width, height)),
		Width:  width,
		Height: height,
	}, nil
}

func (b *BGR) Offset(x, y int) int {
	return (y*b.Width + x) * BytesPerPixel
}

func (b *BGR) SetRGB(x, y int, r, g, bl uint8) {
	i := b.Offset(x, y)
	b.Pix[i+0] = bl
	b.Pix[i+1] = g
	b.Pix[i+2] = r
}

func (b *BGR) RGBAt(x, y int) color.RGBA {
	if !image.Pt(x, y).In(b.Bounds()) {
		return color.RGBA{}
	}
	i := b.Offset(x, y)
	return color.RGBA{R: b.Pix[i+2], G: b.Pix[i+1], B: b.Pix[i+0], A: 0xFF}
}

func (b *BGR) ColorModel() color.Model { return color.RGBAModel }

func (b *BGR) Bounds() image.Rectangle { return image.Rect(0, 0, b.Width, b.Height) }

func (b *BGR) At(x, y int) color.Color { return b.RGBAt(x, y) }

// Upright returns a view of the buffer flipped vertically. A BMP with a
// positive height stores its rows bottom-up, so this is how viewers show
// the encoded file.
func (b *BGR) Upright() image.Image {
	return upright{b}
}

type upright struct {
	*BGR
}

func (u upright) At(x, y int) color.Color {
	return u.RGBAt(x, u.Height-1-y)
}
