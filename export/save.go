package export

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

type encodeFunc func(w io.Writer, img image.Image) error

// CheckPath reports whether Save knows how to encode to path, judged by its
// extension.
func CheckPath(path string) error {
	_, err := encoderFor(path)
	return err
}

// Save encodes img to path. The format is chosen by extension: .png, .tif or
// .tiff. The image is written to a temporary file next to path and renamed
// into place, so path is never left holding a partial image.
func Save(path string, img image.Image) (err error) {
	encode, err := encoderFor(path)
	if err != nil {
		return err
	}

	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating %v: %w", path, err)
	}
	defer func() {
		if err != nil {
			file.Close()
			os.Remove(file.Name())
		}
	}()

	if err = encode(file, img); err != nil {
		return fmt.Errorf("encoding %v: %w", path, err)
	}
	if err = file.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %v: %w", path, err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("closing %v: %w", path, err)
	}
	if err = os.Rename(file.Name(), path); err != nil {
		return fmt.Errorf("renaming into %v: %w", path, err)
	}
	return nil
}

func encoderFor(path string) (encodeFunc, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return png.Encode, nil
	case ".tif", ".tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
