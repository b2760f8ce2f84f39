package palette

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEscape(t *testing.T) {
	p := NewEscape()
	require.Len(t, p, EscapeSize)

	tests := map[int]RGB{
		0:   {0, 0, 0},
		1:   {2, 0, 0},
		127: {254, 0, 0},
		128: {0, 127, 0},
		255: {254, 254, 0},
		256: {255, 255, 0},
		383: {128, 255, 0},
	}
	for i, want := range tests {
		assert.Equal(t, want, p[i], "entry %d", i)
	}

	for i, c := range p {
		assert.Zero(t, c.B, "entry %d", i)
	}
	assert.Equal(t, p, NewEscape())
}

func TestEscapeRIFFRoundTrip(t *testing.T) {
	p := NewEscape()

	var buf bytes.Buffer
	n, err := p.WriteRIFF(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, buf.Len(), n)
	assert.Equal(t, 12+8+4+EscapeSize*4, buf.Len())
	assert.Equal(t, []byte("RIFF"), buf.Bytes()[0:4])
	assert.Equal(t, []byte("PAL data"), buf.Bytes()[8:16])

	pals, err := ReadFrom(&buf)
	require.NoError(t, err)
	require.Len(t, pals, 1)
	require.Len(t, pals[0], EscapeSize)
	assert.Equal(t, color.RGBA{R: 254, G: 254, A: 0xFF}, pals[0][255])
	assert.Equal(t, p.Palette(), pals[0])
}

func TestReadFromRejectsOtherForms(t *testing.T) {
	data := []byte("RIFF\x04\x00\x00\x00WAVE")
	_, err := ReadFrom(bytes.NewReader(data))
	assert.Error(t, err)
}
