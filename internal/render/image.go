package render

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("render: encode png: %w", err)
	}
	return nil
}

func decodePNG(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("render: decode png: %w", err)
	}
	return img, nil
}

// Thumbnail scales img down to width pixels, keeping its aspect ratio.
// Images already narrower than width are returned unchanged.
func Thumbnail(img image.Image, width int) image.Image {
	if width <= 0 || img.Bounds().Dx() <= width {
		return img
	}
	return imaging.Resize(img, width, 0, imaging.Lanczos)
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}
	return nil
}
