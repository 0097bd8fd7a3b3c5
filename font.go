package certgen

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// textDPI maps font points one-to-one onto template pixels.
const textDPI = 72

// LoadFont parses the TrueType or OpenType file at path.
func LoadFont(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- font path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontLoad, err)
	}
	return ParseFont(data)
}

// ParseFont parses raw font bytes.
func ParseFont(data []byte) (*opentype.Font, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontLoad, err)
	}
	return f, nil
}

// newFace creates a face at size points.
func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     textDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFaceCreate, err)
	}
	return face, nil
}
