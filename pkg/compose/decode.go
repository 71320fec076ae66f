package compose

import (
	"bytes"
	"image"
	"io"

	"github.com/disintegration/imaging"

	// Social platforms hand back webp and the occasional bmp or tiff;
	// register those formats alongside the stdlib ones.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/brandkit/pkg/errors"
)

// DecodeTarget decodes a target image from r. Unlike overlay elements,
// a target that fails to decode is a hard error for its unit of work.
func DecodeTarget(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeTargetDecode, err, "decode target image")
	}
	return img, nil
}

// DecodeTargetBytes decodes a target image from an in-memory buffer.
func DecodeTargetBytes(data []byte) (image.Image, error) {
	return DecodeTarget(bytes.NewReader(data))
}

// SquareCrop crops img to a centered square with side min(width, height).
// Already-square images are returned cropped to identical content.
func SquareCrop(img image.Image) *image.NRGBA {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	return imaging.CropAnchor(img, side, side, imaging.Center)
}
