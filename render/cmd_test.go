package render

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"mandelbmp/bitmap"
	"mandelbmp/fractal"
	"mandelbmp/parallel"
)

type testCLI struct {
	Render CLICmd `cmd:""`
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var cli testCLI
	var out bytes.Buffer
	parser, err := kong.New(&cli, kong.Writers(&out, io.Discard), kong.Exit(func(int) {}))
	require.NoError(t, err)

	kctx, err := parser.Parse(append([]string{"render"}, args...))
	if err != nil {
		return out.String(), err
	}

	pool := parallel.Start(3)
	defer pool.Close()
	err = kctx.Run(pool)
	return out.String(), err
}

func expectedBMP(t *testing.T, width, height int) []byte {
	t.Helper()
	buf, err := fractal.Sample(width, height)
	require.NoError(t, err)
	want, err := bitmap.Encode(width, height, buf.Pix)
	require.NoError(t, err)
	return want
}

func TestRenderBMP(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.bmp")

	out, err := run(t, "30", "8", dest)
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Len(t, data, bitmap.FileSize(28, 8))
	assert.Equal(t, expectedBMP(t, 28, 8), data)

	assert.Contains(t, out, "Output information:\n")
	assert.Contains(t, out, "File Name: "+dest+"\n")
	assert.Contains(t, out, "File size: 726 bytes\n")
	assert.Contains(t, out, "Width:  28\n")
	assert.Contains(t, out, "Height: 8\n")
}

func TestRenderRejectsInvalidGeometry(t *testing.T) {
	dir := t.TempDir()
	for _, args := range [][]string{{"2", "8"}, {"8", "0"}, {"0", "0"}, {"65536", "32768"}} {
		dest := filepath.Join(dir, "out.bmp")
		_, err := run(t, append(args, dest)...)
		require.Error(t, err, "%v", args)
		assert.Contains(t, err.Error(), "invalid width/height value")
		assert.NoFileExists(t, dest)
	}
}

func TestRenderZstd(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.bmp.zst")

	_, err := run(t, "16", "12", dest)
	require.NoError(t, err)

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()

	dec, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer dec.Close()

	data, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.Equal(t, expectedBMP(t, 16, 12), data)
}

func TestRenderPNGWithThumbnail(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.png")

	_, err := run(t, "--thumb", "8", "32", "16", dest)
	require.NoError(t, err)

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 16), img.Bounds())

	buf, err := fractal.Sample(32, 16)
	require.NoError(t, err)
	// the PNG shows the buffer's last row at the top, like a BMP viewer would
	r, g, b, _ := img.At(5, 0).RGBA()
	assert.Equal(t, buf.RGBAt(5, 15).R, uint8(r>>8))
	assert.Equal(t, buf.RGBAt(5, 15).G, uint8(g>>8))
	assert.Equal(t, buf.RGBAt(5, 15).B, uint8(b>>8))

	tf, err := os.Open(thumbPath(dest))
	require.NoError(t, err)
	defer tf.Close()
	cfg, err := png.DecodeConfig(tf)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, 4, cfg.Height)
}

func TestRenderTIFF(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.bin")

	_, err := run(t, "--format", "tiff", "12", "6", dest)
	require.NoError(t, err)

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := tiff.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Width)
	assert.Equal(t, 6, cfg.Height)
}

func TestRenderNoClobber(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.bmp")
	require.NoError(t, os.WriteFile(dest, []byte("keep"), 0o644))

	_, err := run(t, "--no-clobber", "8", "8", dest)
	require.Error(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	_, err = run(t, "8", "8", dest)
	require.NoError(t, err)
	data, err = os.ReadFile(dest)
	require.NoError(t, err)
	assert.Len(t, data, bitmap.FileSize(8, 8))
}

func TestRenderUnwritableDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing", "out.bmp")
	_, err := run(t, "8", "8", dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), dest)
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		format, dest, want string
	}{
		{"auto", "a.bmp", "bmp"},
		{"auto", "a", "bmp"},
		{"auto", "a.BMP.ZST", "bmp.zst"},
		{"auto", "a.png", "png"},
		{"auto", "a.tif", "tiff"},
		{"auto", "a.tiff", "tiff"},
		{"png", "a.bmp", "png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveFormat(tt.format, tt.dest), "%s %s", tt.format, tt.dest)
	}
}
