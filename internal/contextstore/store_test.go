package contextstore

import (
	"context"
	"strings"
	"testing"

	"github.com/aryasetiadi/cv-evaluator/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	Seed(s)
	return s
}

func TestRetrieveRubricQuery(t *testing.T) {
	s := seededStore(t)

	docs, err := s.Retrieve(context.Background(), "project evaluation rubric code quality", model.DocTypeScoringRubric, 2)
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	assert.LessOrEqual(t, len(docs), 2)

	terms := strings.Fields("project evaluation rubric code quality")
	prevScore := -1
	for _, doc := range docs {
		assert.Equal(t, model.DocTypeScoringRubric, doc.Type)

		content := strings.ToLower(doc.Content)
		score := 0
		for _, term := range terms {
			if strings.Contains(content, term) {
				score++
			}
		}
		assert.Greater(t, score, 0, "retrieved document must match at least one query term")
		if prevScore >= 0 {
			assert.LessOrEqual(t, score, prevScore, "documents must be ordered by descending overlap")
		}
		prevScore = score
	}

	// The project rubric names every query term, so it must come first.
	assert.Equal(t, "scoring_rubric_project", docs[0].ID)
}

func TestRetrieveExcludesZeroScore(t *testing.T) {
	s := seededStore(t)

	docs, err := s.Retrieve(context.Background(), "zzzznonexistentterm", "", 10)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRetrieveTypeFilter(t *testing.T) {
	s := seededStore(t)

	docs, err := s.Retrieve(context.Background(), "backend developer requirements", model.DocTypeJobDescription, 5)
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	for _, doc := range docs {
		assert.Equal(t, model.DocTypeJobDescription, doc.Type)
	}
}

func TestRetrieveLimit(t *testing.T) {
	s := seededStore(t)

	// Both rubric documents contain "evaluation"; only one may come back.
	docs, err := s.Retrieve(context.Background(), "evaluation", "", 1)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestRetrieveTieBreakInsertionOrder(t *testing.T) {
	s := NewStore()
	s.Add(model.ContextDocument{ID: "a", Content: "golang service", Type: "note"})
	s.Add(model.ContextDocument{ID: "b", Content: "golang worker", Type: "note"})

	docs, err := s.Retrieve(context.Background(), "golang", "", 10)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "b", docs[1].ID)
}

func TestAddOverwritesByID(t *testing.T) {
	s := NewStore()
	s.Add(model.ContextDocument{ID: "doc", Content: "first version", Type: "note"})
	s.Add(model.ContextDocument{ID: "doc", Content: "second version", Type: "note"})

	require.Equal(t, 1, s.Len())

	docs, err := s.Retrieve(context.Background(), "version", "", 1)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "second version", docs[0].Content)
}
