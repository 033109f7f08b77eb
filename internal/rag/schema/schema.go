package schema

// Document is a single loaded source text before chunking, e.g. one book file.
type Document struct {
	// Source is the human-readable origin of the text, typically the book title
	// derived from the file name. It is carried through chunking so every
	// passage can be attributed in the final prompt.
	Source string

	// Text is the full string content of the document.
	Text string
}

// Passage is one chunk of a document, the unit of indexing and retrieval.
type Passage struct {
	// ID is the unique identifier for this passage.
	ID string

	// Source is the attribution inherited from the parent document.
	Source string

	// Text is the chunk content.
	Text string

	// Embedding is the vector representation of Text.
	Embedding []float32
}

// ScoredPassage is a retrieved passage together with its similarity score.
// Score is cosine similarity in [-1, 1]; higher means more similar.
type ScoredPassage struct {
	Passage
	Score float64
}
