package certgen

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/alnah/go-certgen/internal/fileutil"
)

// Artifact file name suffixes.
const (
	imageSuffix    = "_certificate.png"
	documentSuffix = "_certificate.pdf"
)

// Artifact is the pair of files generated for one participant.
type Artifact struct {
	Name         string
	ImagePath    string
	DocumentPath string
	Size         image.Point
}

// Page returns the artifact's document as a merge input.
func (a Artifact) Page() Page {
	return Page{Path: a.DocumentPath, Size: a.Size}
}

// Files returns the artifact's file paths.
func (a Artifact) Files() []string {
	return []string{a.ImagePath, a.DocumentPath}
}

// Renderer produces one certificate for one normalized name.
type Renderer interface {
	Render(ctx context.Context, name string) (Artifact, error)
}

// Compile-time interface implementation check.
var _ Renderer = (*CertificateRenderer)(nil)

// CertificateRenderer composites names onto a shared template.
type CertificateRenderer struct {
	template  image.Image
	faces     *FacePool
	layout    Layout
	outputDir string
	doc       DocumentWriter
}

// RendererOption configures a CertificateRenderer.
type RendererOption func(*CertificateRenderer)

// WithDocumentWriter replaces the PDF writer.
func WithDocumentWriter(w DocumentWriter) RendererOption {
	return func(r *CertificateRenderer) {
		r.doc = w
	}
}

// NewCertificateRenderer creates a renderer writing into outputDir.
// The template is never modified; each render works on a clone.
func NewCertificateRenderer(template image.Image, faces *FacePool, layout Layout, outputDir string, opts ...RendererOption) (*CertificateRenderer, error) {
	if template == nil {
		return nil, fmt.Errorf("%w: nil template", ErrTemplateLoad)
	}
	if faces == nil {
		return nil, fmt.Errorf("%w: nil face pool", ErrFontLoad)
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	r := &CertificateRenderer{
		template:  template,
		faces:     faces,
		layout:    layout,
		outputDir: outputDir,
		doc:       NewPDFWriter(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ArtifactFor returns the file paths a render of name would produce.
func (r *CertificateRenderer) ArtifactFor(name string) Artifact {
	stem := fileutil.CertificateStem(name)
	b := r.template.Bounds()
	return Artifact{
		Name:         name,
		ImagePath:    filepath.Join(r.outputDir, stem+imageSuffix),
		DocumentPath: filepath.Join(r.outputDir, stem+documentSuffix),
		Size:         image.Pt(b.Dx(), b.Dy()),
	}
}

// Render draws name onto a copy of the template, saves it as PNG, verifies
// the saved image and exports it as a one-page PDF.
// Files left by a failed render are removed. Files are named after the
// certificate stem, so concurrent renders need names with distinct stems;
// PrepareNames guarantees that.
func (r *CertificateRenderer) Render(ctx context.Context, name string) (art Artifact, err error) {
	if name == "" {
		return Artifact{}, ErrEmptyName
	}
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	art = r.ArtifactFor(name)
	defer func() {
		if err != nil {
			removeFiles(art.Files())
			art = Artifact{}
		}
	}()

	face, err := r.faces.Acquire()
	if err != nil {
		return art, err
	}
	canvas := imaging.Clone(r.template)
	err = drawName(canvas, face, name, r.layout)
	r.faces.Release(face)
	if err != nil {
		return art, err
	}

	if err := ctx.Err(); err != nil {
		return art, err
	}

	if err := os.MkdirAll(r.outputDir, fileutil.DirPermissions); err != nil {
		return art, fmt.Errorf("%w: creating output directory: %v", ErrImageWrite, err)
	}
	if err := imaging.Save(canvas, art.ImagePath); err != nil {
		return art, fmt.Errorf("%w: %v", ErrImageWrite, err)
	}
	if !VerifyImage(art.ImagePath) {
		return art, fmt.Errorf("%w: %s", ErrImageVerify, art.ImagePath)
	}

	if err := ctx.Err(); err != nil {
		return art, err
	}

	if err := r.doc.WritePage(canvas, art.DocumentPath); err != nil {
		return art, err
	}
	return art, nil
}

// drawName centers name in the layout's text box on dst.
func drawName(dst *image.NRGBA, face font.Face, name string, layout Layout) error {
	box := layout.TextBox(dst.Bounds())

	bounds, _ := font.BoundString(face, name)
	textW := (bounds.Max.X - bounds.Min.X).Ceil()
	textH := (bounds.Max.Y - bounds.Min.Y).Ceil()

	if layout.StrictFit && (textW > box.Dx() || textH > box.Dy()) {
		return fmt.Errorf("%w: %q needs %dx%d, box is %dx%d", ErrTextOverflow, name, textW, textH, box.Dx(), box.Dy())
	}

	// Dot is the baseline origin; shift so the glyph bounds are centered.
	originX := box.Min.X + (box.Dx()-textW)/2 - bounds.Min.X.Floor()
	originY := box.Min.Y + (box.Dy()-textH)/2 - bounds.Min.Y.Floor()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(layout.textColor()),
		Face: face,
		Dot:  fixed.P(originX, originY),
	}
	d.DrawString(name)
	return nil
}

// removeFiles deletes the files of a failed render, best effort.
func removeFiles(paths []string) {
	for _, p := range paths {
		_, _ = fileutil.RemoveFile(p)
	}
}
