// Package imageinfo reads pixel dimensions from an image header without
// decoding the full bitmap.
package imageinfo

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrUnknownFormat = errors.New("unknown image format")

type Info struct {
	Width  int
	Height int
	Format string
}

func Sniff(raw []byte) (Info, error) {
	if len(raw) == 0 {
		return Info{}, ErrUnknownFormat
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Info{}, ErrUnknownFormat
		}
		return Info{}, err
	}
	return Info{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}
