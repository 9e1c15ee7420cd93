package memstore

import (
	"context"
	"sync"

	"github.com/cognicore/vrttools/pkg/vrt/store"
)

// Store is an in-memory implementation of store.AnnotationStore for tests
// and small corpora.
type Store struct {
	mu   sync.RWMutex
	docs map[string][]store.Sentence
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{docs: make(map[string][]store.Sentence)}
}

// Close implements store.AnnotationStore.
func (s *Store) Close() error { return nil }

// AddDocument stores (or replaces) the sentences of one document.
func (s *Store) AddDocument(ctx context.Context, d store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.Key == "" {
		return nil
	}
	s.docs[d.Key] = copySentences(d.Sentences)
	return nil
}

// SentenceParses implements store.AnnotationStore.
func (s *Store) SentenceParses(ctx context.Context, key string) ([]store.Sentence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return copySentences(s.docs[key]), nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func copySentences(in []store.Sentence) []store.Sentence {
	if in == nil {
		return nil
	}
	out := make([]store.Sentence, len(in))
	for i, sent := range in {
		tokens := make([][]string, len(sent.Tokens))
		for j, fields := range sent.Tokens {
			tokens[j] = append([]string(nil), fields...)
		}
		out[i] = store.Sentence{Tokens: tokens, Status: sent.Status}
	}
	return out
}
