package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

const (
	DocTypeJobDescription = "job_description"
	DocTypeScoringRubric  = "scoring_rubric"
)

// ContextDocument is one reference document of the evaluation corpus
// (job descriptions, scoring rubrics). The Embedding column is only
// populated when the semantic retriever is enabled.
type ContextDocument struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	Content   string          `gorm:"type:text" json:"content"`
	Type      string          `gorm:"type:varchar(50);index" json:"type"`
	Category  string          `gorm:"type:varchar(50)" json:"category"`
	Embedding pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (d *ContextDocument) TableName() string {
	return "context_documents"
}
