package loaders

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"FlousWise/internal/rag/interfaces"
)

// ForFile selects a loader for the given file based on its detected MIME type,
// falling back to the file extension for types the detector reports as plain
// text. Unsupported types return an error so ingestion can skip the file.
func ForFile(path string) (interfaces.Loader, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to detect file type of '%s': %w", path, err)
	}

	switch {
	case mtype.Is("application/pdf"):
		return NewPdfLoader(), nil
	case mtype.Is("text/html"):
		return NewHTMLLoader(), nil
	case mtype.Is("text/markdown"):
		return NewMarkdownLoader(), nil
	case mtype.Is("text/plain"):
		// Markdown files are frequently detected as plain text.
		if strings.EqualFold(filepath.Ext(path), ".md") {
			return NewMarkdownLoader(), nil
		}
		return NewTxtLoader(), nil
	default:
		return nil, fmt.Errorf("unsupported file type '%s' for '%s'", mtype.String(), path)
	}
}

// sourceName derives the attribution string for a file: the base name without
// extension, underscores replaced by spaces. "rich_dad_poor_dad.txt" becomes
// "rich dad poor dad".
func sourceName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(base, "_", " ")
}
