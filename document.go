package certgen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/signintech/gopdf"
)

// pdfMagic starts every PDF file.
var pdfMagic = []byte("%PDF-")

// importBox is the page box copied when importing existing documents.
const importBox = "/MediaBox"

// Page is one single-page document to include in a merge.
type Page struct {
	Path string
	Size image.Point // page size in points (template pixels at 72 DPI)
}

// DocumentWriter exports composited certificates and combines them.
type DocumentWriter interface {
	// WritePage writes img as a one-page document at path.
	WritePage(img image.Image, path string) error
	// Merge concatenates pages in order into out and returns the page count.
	Merge(pages []Page, out string) (int, error)
}

// Compile-time interface implementation check.
var _ DocumentWriter = (*PDFWriter)(nil)

// PDFWriter writes PDF documents with gopdf.
// One point per template pixel keeps the page the size of the template.
type PDFWriter struct{}

// NewPDFWriter returns a PDF document writer.
func NewPDFWriter() *PDFWriter {
	return &PDFWriter{}
}

// WritePage writes img as a single-page PDF. Transparency is flattened onto
// white since certificates are printed.
func (w *PDFWriter) WritePage(img image.Image, path string) error {
	b := img.Bounds()
	rect := gopdf.Rect{W: float64(b.Dx()), H: float64(b.Dy())}

	flat := imaging.New(b.Dx(), b.Dy(), color.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: rect})
	pdf.AddPageWithOption(gopdf.PageOption{PageSize: &rect})

	if err := pdf.ImageFrom(flat, 0, 0, &rect); err != nil {
		return fmt.Errorf("%w: embedding image: %v", ErrPDFWrite, err)
	}
	if err := pdf.WritePdf(path); err != nil {
		return fmt.Errorf("%w: %v", ErrPDFWrite, err)
	}
	return nil
}

// Merge imports the first page of every document and writes them to out.
func (w *PDFWriter) Merge(pages []Page, out string) (n int, err error) {
	if len(pages) == 0 {
		return 0, ErrNothingToMerge
	}

	for _, p := range pages {
		if err := checkPDF(p.Path); err != nil {
			return 0, err
		}
	}

	// gofpdi panics on malformed input instead of returning errors.
	defer func() {
		if r := recover(); r != nil {
			n = 0
			err = fmt.Errorf("%w: %v", ErrMergeRead, r)
		}
	}()

	first := pageRect(pages[0])
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: first})

	for _, p := range pages {
		rect := pageRect(p)
		pdf.AddPageWithOption(gopdf.PageOption{PageSize: &rect})
		tpl := pdf.ImportPage(p.Path, 1, importBox)
		pdf.UseImportedTemplate(tpl, 0, 0, rect.W, rect.H)
		n++
	}

	if err := pdf.WritePdf(out); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMergeWrite, out, err)
	}
	return n, nil
}

func pageRect(p Page) gopdf.Rect {
	return gopdf.Rect{W: float64(p.Size.X), H: float64(p.Size.Y)}
}

// checkPDF verifies path is readable and starts with the PDF header.
func checkPDF(path string) error {
	f, err := os.Open(path) // #nosec G304 -- path produced by the renderer
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMergeRead, err)
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMergeRead, path, err)
	}
	if !bytes.Equal(head, pdfMagic) {
		return fmt.Errorf("%w: %s: not a PDF document", ErrMergeRead, path)
	}
	return nil
}
