package splitters

import (
	"context"
	"errors"
	"strings"
	"testing"

	"FlousWise/internal/faults"
	"FlousWise/internal/rag/schema"
)

func TestNewWordSplitter_InvalidParams(t *testing.T) {
	cases := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero chunk size", 0, 0},
		{"negative chunk size", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals chunk size", 10, 10},
		{"overlap exceeds chunk size", 10, 15},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewWordSplitter(tc.chunkSize, tc.overlap)
			if err == nil {
				t.Fatalf("NewWordSplitter(%d, %d) expected error, got nil", tc.chunkSize, tc.overlap)
			}
			var cfgErr *faults.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected ConfigError, got %T: %v", err, err)
			}
		})
	}
}

func TestSplit_WindowSizeAndOverlap(t *testing.T) {
	s, err := NewWordSplitter(10, 3)
	if err != nil {
		t.Fatalf("NewWordSplitter() error = %v", err)
	}

	words := make([]string, 25)
	for i := range words {
		words[i] = "w" + string(rune('a'+i))
	}
	docs := []*schema.Document{{Source: "Test Book", Text: strings.Join(words, " ")}}

	passages, err := s.Split(context.Background(), docs)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	// step = 10 - 3 = 7, so windows start at 0, 7, 14, 21
	if len(passages) != 4 {
		t.Fatalf("expected 4 passages, got %d", len(passages))
	}

	for i, p := range passages {
		got := strings.Fields(p.Text)
		if len(got) > 10 {
			t.Errorf("passage %d has %d words, exceeds chunk size 10", i, len(got))
		}
		if p.Source != "Test Book" {
			t.Errorf("passage %d source = %q, want %q", i, p.Source, "Test Book")
		}
		if p.ID == "" {
			t.Errorf("passage %d has empty ID", i)
		}
	}

	// Consecutive windows must share the last 3 words of one with the first 3 of the next.
	first := strings.Fields(passages[0].Text)
	second := strings.Fields(passages[1].Text)
	for i := 0; i < 3; i++ {
		if first[7+i] != second[i] {
			t.Errorf("overlap word %d: %q != %q", i, first[7+i], second[i])
		}
	}

	// The final window keeps the trailing words even though it is short.
	last := strings.Fields(passages[3].Text)
	if last[len(last)-1] != words[24] {
		t.Errorf("last passage ends with %q, want %q", last[len(last)-1], words[24])
	}
}

func TestSplit_EmptyAndWhitespaceDocs(t *testing.T) {
	s, err := NewWordSplitter(5, 1)
	if err != nil {
		t.Fatalf("NewWordSplitter() error = %v", err)
	}

	docs := []*schema.Document{
		{Source: "empty", Text: ""},
		{Source: "spaces", Text: "   \n\t  "},
	}
	passages, err := s.Split(context.Background(), docs)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(passages) != 0 {
		t.Errorf("expected no passages from whitespace-only docs, got %d", len(passages))
	}
}

func TestSplit_ShortDocumentSinglePassage(t *testing.T) {
	s, err := NewWordSplitter(100, 10)
	if err != nil {
		t.Fatalf("NewWordSplitter() error = %v", err)
	}

	docs := []*schema.Document{{Source: "short", Text: "just a few words here"}}
	passages, err := s.Split(context.Background(), docs)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(passages) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(passages))
	}
	if passages[0].Text != "just a few words here" {
		t.Errorf("passage text = %q", passages[0].Text)
	}
}

func TestSplit_NoOverlapCoversAllWords(t *testing.T) {
	s, err := NewWordSplitter(4, 0)
	if err != nil {
		t.Fatalf("NewWordSplitter() error = %v", err)
	}

	docs := []*schema.Document{{Source: "b", Text: "one two three four five six seven eight nine"}}
	passages, err := s.Split(context.Background(), docs)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(passages) != 3 {
		t.Fatalf("expected 3 passages, got %d", len(passages))
	}

	var rejoined []string
	for _, p := range passages {
		rejoined = append(rejoined, strings.Fields(p.Text)...)
	}
	if strings.Join(rejoined, " ") != "one two three four five six seven eight nine" {
		t.Errorf("rejoined passages lost words: %q", strings.Join(rejoined, " "))
	}
}
