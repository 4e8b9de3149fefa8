package repository

import (
	"github.com/aryasetiadi/cv-evaluator/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContextDocumentRepository struct {
	db *gorm.DB
}

func NewContextDocumentRepository(db *gorm.DB) *ContextDocumentRepository {
	return &ContextDocumentRepository{db}
}

func (r *ContextDocumentRepository) UpsertDocument(doc *model.ContextDocument) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(doc).Error
}

// SearchByEmbedding returns the documents nearest to the query embedding,
// optionally restricted to one document type.
func (r *ContextDocumentRepository) SearchByEmbedding(embedding pgvector.Vector, docType string, limit int) ([]model.ContextDocument, error) {
	var docs []model.ContextDocument

	query := `
        SELECT *, embedding <-> ? AS distance
        FROM context_documents
        ORDER BY embedding <-> ?
        LIMIT ?
    `
	args := []any{embedding, embedding, limit}
	if docType != "" {
		query = `
        SELECT *, embedding <-> ? AS distance
        FROM context_documents
        WHERE type = ?
        ORDER BY embedding <-> ?
        LIMIT ?
    `
		args = []any{embedding, docType, embedding, limit}
	}

	err := r.db.Raw(query, args...).Scan(&docs).Error
	return docs, err
}
