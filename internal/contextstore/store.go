package contextstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aryasetiadi/cv-evaluator/internal/model"
)

// Retriever is the retrieval contract the pipeline depends on. The default
// implementation scores by keyword overlap; a semantic implementation can
// be swapped in behind the same interface.
type Retriever interface {
	Retrieve(ctx context.Context, query, docType string, limit int) ([]model.ContextDocument, error)
}

// Store is an in-memory corpus with lexical retrieval. The corpus is seeded
// once at startup and read-only afterwards, so concurrent retrieval is
// cheap; Add stays available for callers that want runtime documents.
type Store struct {
	mu    sync.RWMutex
	docs  []model.ContextDocument
	index map[string]int
}

func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Add inserts the document, overwriting any existing document with the
// same id.
func (s *Store) Add(doc model.ContextDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos, ok := s.index[doc.ID]; ok {
		s.docs[pos] = doc
		return
	}
	s.index[doc.ID] = len(s.docs)
	s.docs = append(s.docs, doc)
}

// Retrieve returns up to limit documents of the given type (empty matches
// all), ordered by descending term overlap with the query. The score of a
// document is the count of query terms occurring as substrings of its
// content, case-insensitive; zero-score documents are excluded and ties
// keep insertion order.
func (s *Store) Retrieve(_ context.Context, query, docType string, limit int) ([]model.ContextDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(query))

	type scored struct {
		doc   model.ContextDocument
		score int
	}
	var matches []scored

	for _, doc := range s.docs {
		if docType != "" && doc.Type != docType {
			continue
		}

		content := strings.ToLower(doc.Content)
		score := 0
		for _, term := range terms {
			if strings.Contains(content, term) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{doc: doc, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})
	if limit >= 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	docs := make([]model.ContextDocument, len(matches))
	for i, m := range matches {
		docs[i] = m.doc
	}
	return docs, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
