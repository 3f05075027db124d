package media

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

var ErrUnsupportedMedia = errors.New("unsupported media type")

// raster formats only; svg can carry script
var imageTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"image/avif",
	"image/bmp",
	"image/tiff",
}

// IsImage reports whether contentType is one of the accepted image types.
func IsImage(contentType string) bool {
	return mimetype.EqualsAny(contentType, imageTypes...)
}

// ImageType sniffs the file at path and returns its MIME type when it is an accepted image.
func ImageType(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	if !IsImage(mt.String()) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, mt.String())
	}
	return mt.String(), nil
}
