package contextstore

import (
	"context"
	"fmt"

	"github.com/aryasetiadi/cv-evaluator/internal/model"
	"github.com/aryasetiadi/cv-evaluator/internal/repository"
	"github.com/pgvector/pgvector-go"
)

// Embedder produces an embedding vector for a piece of text.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// SemanticStore is the embedding-backed Retriever variant. It satisfies the
// same contract as the keyword Store, with relevance coming from pgvector
// nearest-neighbour distance instead of term overlap.
type SemanticStore struct {
	repo     *repository.ContextDocumentRepository
	embedder Embedder
}

func NewSemanticStore(repo *repository.ContextDocumentRepository, embedder Embedder) *SemanticStore {
	return &SemanticStore{repo: repo, embedder: embedder}
}

// Index embeds and upserts the given documents. Called once at startup with
// the default corpus.
func (s *SemanticStore) Index(ctx context.Context, docs []model.ContextDocument) error {
	for i := range docs {
		doc := docs[i]
		embedding, err := s.embedder.GenerateEmbedding(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("embed document %s: %w", doc.ID, err)
		}
		doc.Embedding = pgvector.NewVector(embedding)
		if err := s.repo.UpsertDocument(&doc); err != nil {
			return fmt.Errorf("upsert document %s: %w", doc.ID, err)
		}
	}
	return nil
}

func (s *SemanticStore) Retrieve(ctx context.Context, query, docType string, limit int) ([]model.ContextDocument, error) {
	embedding, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.repo.SearchByEmbedding(pgvector.NewVector(embedding), docType, limit)
}
