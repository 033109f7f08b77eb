package loaders

import (
	"context"
	"fmt"
	"os"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"FlousWise/internal/rag/interfaces"
	"FlousWise/internal/rag/schema"
)

// HTMLLoader implements the Loader interface for reading saved HTML pages.
// The HTML is converted to markdown first, then stripped to plain text with
// the markdown loader's rules, so scripts and markup never reach the index.
type HTMLLoader struct{}

// NewHTMLLoader creates a new HTMLLoader.
func NewHTMLLoader() *HTMLLoader {
	return &HTMLLoader{}
}

// Load reads an HTML file and returns its readable text as a single Document.
func (l *HTMLLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	markdown, err := htmltomarkdown.ConvertString(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to convert html '%s': %w", path, err)
	}

	text := imageRegex.ReplaceAllString(markdown, "")
	text = linkRegex.ReplaceAllString(text, "$1")
	text = headingRegex.ReplaceAllString(text, "")
	text = emphasisRegex.ReplaceAllString(text, "$1")

	doc := &schema.Document{
		Source: sourceName(path),
		Text:   text,
	}

	return []*schema.Document{doc}, nil
}

// compile-time check to ensure HTMLLoader implements the Loader interface
var _ interfaces.Loader = (*HTMLLoader)(nil)
