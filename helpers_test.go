package certgen

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// testFont returns the Go Regular font.
func testFont(t *testing.T) *opentype.Font {
	t.Helper()

	f, err := ParseFont(goregular.TTF)
	if err != nil {
		t.Fatalf("ParseFont: %v", err)
	}
	return f
}

// testTemplate returns a solid white template of the given size.
func testTemplate(w, h int) *image.NRGBA {
	return imaging.New(w, h, color.White)
}

// writeTestTemplate saves a white template as PNG and returns its path.
func writeTestTemplate(t *testing.T, dir string, w, h int) string {
	t.Helper()

	path := filepath.Join(dir, "template.png")
	if err := imaging.Save(testTemplate(w, h), path); err != nil {
		t.Fatalf("saving template: %v", err)
	}
	return path
}

// testLayout fits comfortably on an 800x600 template.
func testLayout() Layout {
	return Layout{
		FontSize:  40,
		BoxWidth:  300,
		BoxHeight: 80,
		OffsetX:   -150,
		OffsetY:   40,
		Color:     "#000000",
	}
}

// newTestRenderer builds a renderer with a real font over a white template.
func newTestRenderer(t *testing.T, dir string, layout Layout, opts ...RendererOption) *CertificateRenderer {
	t.Helper()

	faces := NewFacePool(testFont(t), layout.FontSize, 2)
	t.Cleanup(func() { _ = faces.Close() })

	r, err := NewCertificateRenderer(testTemplate(800, 600), faces, layout, dir, opts...)
	if err != nil {
		t.Fatalf("NewCertificateRenderer: %v", err)
	}
	return r
}
