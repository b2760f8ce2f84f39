package fileop

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
)

// CheckDest fails if dest already exists or cannot be inspected.
func CheckDest(dest string) error {
	destFileInfo, err := os.Stat(dest)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot stat destination file %q: %w", dest, err)
		}
	} else {
		return fmt.Errorf("destination file already exists: %q", destFileInfo.Name())
	}

	return nil
}

// WriteAtomic creates a temporary file next to dest, fills it with write,
// flushes it and renames it over dest. It returns the number of bytes
// written. On failure dest is left untouched.
func WriteAtomic(dest string, write func(io.Writer) error) (n int64, err error) {
	dir, name := filepath.Split(dest)
	if dir == "" {
		dir = "."
	}

	outFile, err := createTemp(dir, name)
	if err != nil {
		return 0, fmt.Errorf("could not create temporary destination for %q: %w", dest, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", outFile.Name(), defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), dest); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", dest, defErr)
			}
		}

		if err != nil {
			if rmErr := os.Remove(outFile.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				slog.Error("could not remove temporary file", "name", outFile.Name(), "error", rmErr)
			}
		}
	}()

	cw := &countingWriter{w: outFile}
	if err = write(cw); err != nil {
		return cw.n, fmt.Errorf("could not write %q: %w", dest, err)
	}

	if err = outFile.Sync(); err != nil {
		return cw.n, fmt.Errorf("could not flush destination file %q: %w", dest, err)
	}

	canRename = true
	return cw.n, nil
}

// createTemp is os.CreateTemp with the mode os.Create uses, so the
// renamed file gets the same umask-filtered permissions.
func createTemp(dir, name string) (*os.File, error) {
	for range 100 {
		tmp := filepath.Join(dir, fmt.Sprintf(".%s.%d.tmp", name, rand.Uint32()))
		f, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o666)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		return f, err
	}
	return nil, fmt.Errorf("could not find an unused temporary name in %q", dir)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
