package certgen

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// LoadTemplate decodes the certificate background at path.
// The returned image is shared by all renders and must not be modified.
func LoadTemplate(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateLoad, path, err)
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: %s: empty image", ErrTemplateLoad, path)
	}

	return img, nil
}

// VerifyImage reports whether the file at path decodes as an image.
func VerifyImage(path string) bool {
	img, err := imaging.Open(path)
	if err != nil {
		return false
	}
	b := img.Bounds()
	return b.Dx() > 0 && b.Dy() > 0
}
