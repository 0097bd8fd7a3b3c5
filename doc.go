// Package certgen generates personalized certificate documents from a list
// of participant names, a template image and a font.
//
// # Quick Start
//
// Load the template and font once, build a renderer, run the batch and merge:
//
//	tpl, err := certgen.LoadTemplate("template.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	otf, err := certgen.LoadFont("Noto.ttf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	faces := certgen.NewFacePool(otf, 80, 4)
//	defer faces.Close()
//
//	r, err := certgen.NewCertificateRenderer(tpl, faces, certgen.DefaultLayout(), "certificates")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results := certgen.RunBatch(ctx, r, names, certgen.BatchOptions{Workers: 4, MaxRetries: 3})
//	report, err := certgen.Merge(certgen.NewPDFWriter(), results, certgen.MergeOptions{
//	    Output:    "all_certificates.pdf",
//	    OutputDir: "certificates",
//	})
//
// # Pipeline
//
// A run follows these stages:
//
//  1. Names are read from a spreadsheet or CSV column (ReadNames)
//  2. Names are normalized and deduplicated (PrepareNames)
//  3. Each name is rendered by a fixed-size worker pool with retries (RunBatch)
//  4. The single-page documents are concatenated in input order (Merge)
//  5. Per-name files and the empty output directory are removed unless kept
//
// # Concurrency
//
// The decoded template is shared read-only by all workers; every render
// works on its own clone. Font faces are not safe for concurrent use, so
// each worker takes one from a FacePool for the duration of a render.
//
// # Fonts
//
// Any TrueType or OpenType file parsed by golang.org/x/image/font/opentype
// works. Text is drawn at 72 DPI so the font size is in template pixels.
package certgen
