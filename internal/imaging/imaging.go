// Package imaging decodes probe images into a canonical grayscale form
// ready for face detection and template extraction.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// ErrInvalidImage is returned when the raw bytes cannot be decoded as a
// common raster image. This is the only unrecoverable input error in the
// analysis pipeline.
var ErrInvalidImage = errors.New("invalid image")

// Decode decodes raw image bytes (jpeg, png, gif or bmp) into a grayscale
// plane suitable for detection.
func Decode(raw []byte) (*image.Gray, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return ToGray(img), nil
}

// ToGray converts an image to grayscale using the ITU-R BT.601 luma formula.
func ToGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray.Pix[(y-bounds.Min.Y)*gray.Stride+(x-bounds.Min.X)] = uint8(luma + 0.5)
		}
	}
	return gray
}

// Resize scales a grayscale image to the given dimensions.
func Resize(g *image.Gray, width, height int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), g, g.Bounds(), draw.Over, nil)
	return dst
}

// Crop returns a copy of the region r of g, clamped to the image bounds.
func Crop(g *image.Gray, r image.Rectangle) *image.Gray {
	r = r.Intersect(g.Bounds())
	dst := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			dst.Pix[y*dst.Stride+x] = g.Pix[(r.Min.Y+y)*g.Stride+(r.Min.X+x)]
		}
	}
	return dst
}
