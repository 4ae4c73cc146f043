package integrations

import "context"

// Toolchain turns page images into chapter PDFs, concatenates them and stamps
// the result with the bookmark file produced by toc.Ledger.
type Toolchain interface {
	ImagesToPDF(ctx context.Context, images []string, output string) error
	MergePDFs(ctx context.Context, pdfs []string, output string) error
	Stamp(ctx context.Context, input, bookmarkFile, output string) error
}

// PageCounter reports the number of pages of a PDF file.
type PageCounter interface {
	PageCount(path string) (int, error)
}
