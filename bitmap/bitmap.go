// Package bitmap writes packed 24-bit pixel buffers as uncompressed BMP
// files.
package bitmap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"mandelbmp/pixbuf"
)

const (
	FileHeaderLen = 14
	InfoHeaderLen = 40
	HeaderLen     = FileHeaderLen + InfoHeaderLen

	Signature    = "BM"
	BitsPerPixel = 24
)

var (
	ErrInvalidGeometry = pixbuf.ErrInvalidGeometry
	ErrSizeMismatch    = pixbuf.ErrSizeMismatch
	ErrMalformedHeader = errors.New("malformed bitmap header")
)

// Header holds the BITMAPFILEHEADER and BITMAPINFOHEADER fields.
type Header struct {
	FileSize   uint32
	Reserved1  uint16
	Reserved2  uint16
	DataOffset uint32

	InfoSize        uint32
	Width           uint32
	Height          uint32
	Planes          uint16
	BitsPerPixel    uint16
	Compression     uint32
	ImageSize       uint32
	XPixelsPerM     uint32
	YPixelsPerM     uint32
	ColorsUsed      uint32
	ColorsImportant uint32
}

// FileSize is the length of the encoded file for a width x height image.
func FileSize(width, height int) int {
	return HeaderLen + pixbuf.Size(width, height)
}

// checkGeometry also requires width to be a multiple of 4: rows are
// written without padding, so width*3 must already be 4-byte aligned.
func checkGeometry(width, height int) error {
	if err := pixbuf.CheckGeometry(width, height); err != nil {
		return err
	}
	if width%4 != 0 {
		return fmt.Errorf("%w: width %d is not a multiple of 4", ErrInvalidGeometry, width)
	}
	return nil
}

func NewHeader(width, height int) (Header, error) {
	if err := checkGeometry(width, height); err != nil {
		return Header{}, err
	}

	size := pixbuf.Size(width, height)
	return Header{
		FileSize:     uint32(HeaderLen + size),
		DataOffset:   HeaderLen,
		InfoSize:     InfoHeaderLen,
		Width:        uint32(width),
		Height:       uint32(height),
		Planes:       1,
		BitsPerPixel: BitsPerPixel,
		ImageSize:    uint32(size),
	}, nil
}

// MarshalBinary serializes both headers, little-endian and packed.
func (h Header) MarshalBinary() ([]byte, error) {
	return h.appendTo(make([]byte, 0, HeaderLen)), nil
}

func (h Header) appendTo(b []byte) []byte {
	b = append(b, Signature...)
	b = binary.LittleEndian.AppendUint32(b, h.FileSize)
	b = binary.LittleEndian.AppendUint16(b, h.Reserved1)
	b = binary.LittleEndian.AppendUint16(b, h.Reserved2)
	b = binary.LittleEndian.AppendUint32(b, h.DataOffset)

	b = binary.LittleEndian.AppendUint32(b, h.InfoSize)
	b = binary.LittleEndian.AppendUint32(b, h.Width)
	b = binary.LittleEndian.AppendUint32(b, h.Height)
	b = binary.LittleEndian.AppendUint16(b, h.Planes)
	b = binary.LittleEndian.AppendUint16(b, h.BitsPerPixel)
	b = binary.LittleEndian.AppendUint32(b, h.Compression)
	b = binary.LittleEndian.AppendUint32(b, h.ImageSize)
	b = binary.LittleEndian.AppendUint32(b, h.XPixelsPerM)
	b = binary.LittleEndian.AppendUint32(b, h.YPixelsPerM)
	b = binary.LittleEndian.AppendUint32(b, h.ColorsUsed)
	b = binary.LittleEndian.AppendUint32(b, h.ColorsImportant)
	return b
}

// ParseHeader decodes the first HeaderLen bytes of b.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderLen {
		return Header{}, fmt.Errorf("%w: %d bytes, need %d", ErrMalformedHeader, len(b), HeaderLen)
	}
	if string(b[0:2]) != Signature {
		return Header{}, fmt.Errorf("%w: signature %q", ErrMalformedHeader, b[0:2])
	}

	le := binary.LittleEndian
	h := Header{
		FileSize:   le.Uint32(b[2:6]),
		Reserved1:  le.Uint16(b[6:8]),
		Reserved2:  le.Uint16(b[8:10]),
		DataOffset: le.Uint32(b[10:14]),

		InfoSize:        le.Uint32(b[14:18]),
		Width:           le.Uint32(b[18:22]),
		Height:          le.Uint32(b[22:26]),
		Planes:          le.Uint16(b[26:28]),
		BitsPerPixel:    le.Uint16(b[28:30]),
		Compression:     le.Uint32(b[30:34]),
		ImageSize:       le.Uint32(b[34:38]),
		XPixelsPerM:     le.Uint32(b[38:42]),
		YPixelsPerM:     le.Uint32(b[42:46]),
		ColorsUsed:      le.Uint32(b[46:50]),
		ColorsImportant: le.Uint32(b[50:54]),
	}
	if h.InfoSize != InfoHeaderLen {
		return h, fmt.Errorf("%w: info header size %d", ErrMalformedHeader, h.InfoSize)
	}
	return h, nil
}

// Encode returns the BMP file for a width x height image whose pixels are
// packed B, G, R, top row first, without row padding. Nothing is returned
// on error.
func Encode(width, height int, pix []byte) ([]byte, error) {
	h, err := header(width, height, pix)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, h.FileSize)
	out = h.appendTo(out)
	return append(out, pix...), nil
}

// Write streams the same bytes as Encode to w. Nothing is written if the
// arguments are inconsistent.
func Write(w io.Writer, width, height int, pix []byte) (int64, error) {
	h, err := header(width, height, pix)
	if err != nil {
		return 0, err
	}

	n, err := w.Write(h.appendTo(make([]byte, 0, HeaderLen)))
	count := int64(n)
	if err != nil {
		return count, fmt.Errorf("could not write headers: %w", err)
	}

	n, err = w.Write(pix)
	count += int64(n)
	if err != nil {
		return count, fmt.Errorf("could not write pixel data: %w", err)
	} else if n != len(pix) {
		return count, fmt.Errorf("wrote only %d/%d pixel bytes", n, len(pix))
	}
	return count, nil
}

func header(width, height int, pix []byte) (Header, error) {
	h, err := NewHeader(width, height)
	if err != nil {
		return h, err
	}
	if err := pixbuf.CheckSize(width, height, len(pix)); err != nil {
		return Header{}, err
	}
	return h, nil
}
