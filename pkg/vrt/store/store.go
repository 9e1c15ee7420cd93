package store

import (
	"context"
)

// AnnotationStore is the read side of an external annotation database:
// for a document key it returns that document's sentences in input order.
type AnnotationStore interface {
	Close() error

	// SentenceParses returns the sentences stored for key. An unknown key
	// yields an empty list, not an error.
	SentenceParses(ctx context.Context, key string) ([]Sentence, error)
}

// Sentence is one externally annotated sentence.
type Sentence struct {
	Tokens [][]string // one field list per token, accessed by position
	Status string     // sentence-level status tag, e.g. parse state
}

// Document groups the sentences of one input document for loading.
type Document struct {
	Key       string
	Sentences []Sentence
}

// Token field positions in an external token tuple.
const (
	FieldIndex = 0 // token number within the sentence
	FieldForm  = 1 // original word form, compared against the input token
)
