package imaging

import (
	"errors"
	"fmt"
	"image"
	"os"
)

// ErrCorruptImage marks a library file that failed structural verification
// or could not be decoded. The indexer uses it to decide on quarantine.
var ErrCorruptImage = errors.New("corrupt image")

// Verify performs a lightweight structural check of an image file.
//
// Only the header is parsed (image.DecodeConfig); pixel data is not decoded.
// This catches empty files, unknown formats, truncated headers and
// nonsensical dimensions without paying for a full decode.
//
// Returns:
//   - image.Config: The header information (dimensions and color model).
//   - error: Wraps ErrCorruptImage when the file is structurally invalid.
//     A file that cannot be opened at all is reported as corrupt as well,
//     since it could never be served as a tile.
func Verify(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %s: %v", ErrCorruptImage, path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %s: %v", ErrCorruptImage, path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Config{}, fmt.Errorf("%w: %s: invalid dimensions %dx%d",
			ErrCorruptImage, path, cfg.Width, cfg.Height)
	}
	return cfg, nil
}

// DecodeVerified runs Verify and then fully decodes the file.
//
// A file whose header is valid but whose pixel data is broken (for example
// a PNG truncated mid-stream) fails here, also wrapping ErrCorruptImage.
// The decoded image is checked against the header dimensions.
func DecodeVerified(path string) (image.Image, error) {
	cfg, err := Verify(path)
	if err != nil {
		return nil, err
	}
	img, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptImage, err)
	}
	b := img.Bounds()
	if b.Dx() != cfg.Width || b.Dy() != cfg.Height {
		return nil, fmt.Errorf("%w: %s: decoded size %dx%d does not match header %dx%d",
			ErrCorruptImage, path, b.Dx(), b.Dy(), cfg.Width, cfg.Height)
	}
	return img, nil
}
