package loaders

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"FlousWise/internal/rag/interfaces"
	"FlousWise/internal/rag/schema"
)

// PdfLoader implements the Loader interface for reading PDF files.
type PdfLoader struct{}

// NewPdfLoader creates a new PdfLoader.
func NewPdfLoader() *PdfLoader {
	return &PdfLoader{}
}

// Load reads a PDF file, extracts the plain text of all pages, and returns it
// as a single Document.
func (l *PdfLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf '%s': %w", path, err)
	}
	defer f.Close()

	textReader, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from pdf '%s': %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(textReader); err != nil {
		return nil, fmt.Errorf("failed to read pdf text '%s': %w", path, err)
	}

	doc := &schema.Document{
		Source: sourceName(path),
		Text:   buf.String(),
	}

	return []*schema.Document{doc}, nil
}

// compile-time check to ensure PdfLoader implements the Loader interface
var _ interfaces.Loader = (*PdfLoader)(nil)
