// Package printing turns validated invoice and receipt records into PDF bytes.
//
// This package contains:
// - PDFRenderer interface implemented by every rendering engine
// - FPDFRenderer, a pure Go engine drawing fixed layouts with gofpdf
// - ChromedpRenderer, an HTML engine printing embedded templates through headless Chrome
// - AttachmentProcessor, which checks and scales uploaded logo and signature images
//
// Example usage:
//
//	renderer := NewFPDFRenderer(&FPDFConfig{DefaultTimeout: 30 * time.Second})
//	defer renderer.Close()
//
//	result, err := renderer.Render(ctx, &RenderRequest{
//	    Record:   record,
//	    Totals:   totals,
//	    Template: spec,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Generated PDF: %d bytes\n", len(result.PDFData))
package printing
