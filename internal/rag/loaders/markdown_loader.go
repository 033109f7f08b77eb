package loaders

import (
	"context"
	"os"
	"regexp"
	"strings"

	"FlousWise/internal/rag/interfaces"
	"FlousWise/internal/rag/schema"
)

// MarkdownLoader implements the Loader interface for reading Markdown (.md) files.
// Formatting markup is stripped so the splitter sees prose, not syntax.
type MarkdownLoader struct{}

// NewMarkdownLoader creates a new MarkdownLoader.
func NewMarkdownLoader() *MarkdownLoader {
	return &MarkdownLoader{}
}

var (
	// imageRegex matches Markdown image syntax (e.g., ![alt text](path/to/image.jpg))
	imageRegex = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	// linkRegex matches Markdown links, keeping the link text.
	linkRegex = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	// headingRegex matches leading heading markers.
	headingRegex = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	// emphasisRegex matches bold/italic markers around words.
	emphasisRegex = regexp.MustCompile(`[*_]{1,3}([^*_]+)[*_]{1,3}`)
	// codeFenceRegex matches fenced code block delimiters.
	codeFenceRegex = regexp.MustCompile("(?m)^```.*$")
)

// Load reads a Markdown file and returns its plain text content as a single Document.
func (l *MarkdownLoader) Load(ctx context.Context, path string) ([]*schema.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text := string(content)
	text = imageRegex.ReplaceAllString(text, "")
	text = linkRegex.ReplaceAllString(text, "$1")
	text = headingRegex.ReplaceAllString(text, "")
	text = emphasisRegex.ReplaceAllString(text, "$1")
	text = codeFenceRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "`", "")

	doc := &schema.Document{
		Source: sourceName(path),
		Text:   text,
	}

	return []*schema.Document{doc}, nil
}

// compile-time check to ensure MarkdownLoader implements the Loader interface
var _ interfaces.Loader = (*MarkdownLoader)(nil)
