package photo

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var allowedMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/bmp":  true,
	"image/tiff": true,
}

// Thumbnail is an encoded thumbnail ready to store.
type Thumbnail struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Decode decodes image bytes without applying EXIF orientation, so width and height are the stored pixel grid.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// MakeThumbnail fits img within maxPx on its longest side. Smaller images keep their size.
// PNG and GIF sources keep their format; everything else becomes JPEG on a white background.
func MakeThumbnail(img image.Image, sourceMIME string, maxPx int) (*Thumbnail, error) {
	thumb := imaging.Fit(img, maxPx, maxPx, imaging.Lanczos)

	var (
		buf         bytes.Buffer
		contentType string
		err         error
	)
	switch sourceMIME {
	case "image/png":
		contentType = "image/png"
		err = imaging.Encode(&buf, thumb, imaging.PNG)
	case "image/gif":
		contentType = "image/gif"
		err = imaging.Encode(&buf, thumb, imaging.GIF)
	default:
		contentType = "image/jpeg"
		err = imaging.Encode(&buf, flatten(thumb), imaging.JPEG, imaging.JPEGQuality(85))
	}
	if err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	bounds := thumb.Bounds()
	return &Thumbnail{
		Data:        buf.Bytes(),
		ContentType: contentType,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}

// flatten composites img over opaque white so transparent pixels do not turn black in JPEG.
func flatten(img image.Image) image.Image {
	bounds := img.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(background, img, image.Pt(0, 0), 1.0)
}
