package pixbuf

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	b, err := New(5, 3)
	require.NoError(t, err)
	assert.Len(t, b.Pix, 45)
	assert.Equal(t, image.Rect(0, 0, 5, 3), b.Bounds())

	_, err = New(0, 3)
	assert.True(t, errors.Is(err, ErrInvalidGeometry))
	_, err = New(3, -1)
	assert.True(t, errors.Is(err, ErrInvalidGeometry))
}

func TestSetRGBStoresBGR(t *testing.T) {
	b, err := New(4, 4)
	require.NoError(t, err)
	b.SetRGB(1, 2, 10, 20, 30)

	i := b.Offset(1, 2)
	assert.Equal(t, (2*4+1)*3, i)
	assert.Equal(t, []uint8{30, 20, 10}, b.Pix[i:i+3])
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 0xFF}, b.At(1, 2))
	assert.Equal(t, color.RGBA{}, b.At(4, 0))

	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 0xFF}, b.Upright().At(1, 1))
	assert.Equal(t, b.Bounds(), b.Upright().Bounds())
}

func TestCheckSize(t *testing.T) {
	assert.NoError(t, CheckSize(4, 4, 48))
	assert.True(t, errors.Is(CheckSize(4, 4, 47), ErrSizeMismatch))
}

func TestCheckGeometryBounds(t *testing.T) {
	tests := []struct {
		width, height int
		ok            bool
	}{
		{width: 4, height: 100_000_000, ok: true},
		{width: 4, height: 357_913_937, ok: false},
		{width: 65536, height: 32768, ok: false},
		{width: 1 << 30, height: 1 << 30, ok: false},
		{width: 1, height: 1 << 30, ok: false},
	}
	for _, tt := range tests {
		err := CheckGeometry(tt.width, tt.height)
		if tt.ok {
			assert.NoError(t, err, "%dx%d", tt.width, tt.height)
		} else {
			assert.True(t, errors.Is(err, ErrInvalidGeometry), "%dx%d: %v", tt.width, tt.height, err)
		}
	}
}

func TestNewRejectsOversizedBuffer(t *testing.T) {
	b, err := New(1<<30, 1<<30)
	assert.Nil(t, b)
	assert.True(t, errors.Is(err, ErrInvalidGeometry))
}
