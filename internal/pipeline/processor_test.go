package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"genom-go/internal/config"
	"genom-go/internal/model"
	"genom-go/pkg/log"
	"genom-go/pkg/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditRepo struct {
	entries []model.AuditLog
	err     error
}

func (f *fakeAuditRepo) Create(_ context.Context, e *model.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeAuditRepo) FindWithPagination(context.Context, *uint, int, int) ([]model.AuditLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

func uintPtr(u uint) *uint { return &u }

func newTestProcessor(repo *fakeAuditRepo) (*Processor, *[]model.NodeDocument) {
	log.InitNop()
	var indexed []model.NodeDocument
	p := NewProcessor(config.ElasticsearchConfig{IndexName: "taxonomy_nodes"}, repo)
	p.indexNode = func(_ context.Context, index string, doc model.NodeDocument) error {
		if index != "taxonomy_nodes" {
			return errors.New("wrong index")
		}
		indexed = append(indexed, doc)
		return nil
	}
	return p, &indexed
}

func TestProcessor_CommittedEventIsAudited(t *testing.T) {
	repo := &fakeAuditRepo{}
	p, indexed := newTestProcessor(repo)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	ev := tasks.TaxonomyEvent{
		EventID:    "ev-1",
		Action:     tasks.ActionTaxonomyCommitted,
		Editor:     "curator",
		RowID:      uintPtr(42),
		OrderID:    uintPtr(1),
		FamilyID:   uintPtr(2),
		OccurredAt: at,
	}
	require.NoError(t, p.Process(context.Background(), ev))

	require.Len(t, repo.entries, 1)
	e := repo.entries[0]
	assert.Equal(t, "ev-1", e.EventID)
	assert.Equal(t, uint(42), *e.RowID)
	assert.Equal(t, at, e.CreatedAt)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(e.Payload), &payload))
	assert.NotContains(t, payload, "kind_id")
	assert.Equal(t, float64(2), payload["family_id"])

	assert.Empty(t, *indexed)
}

func TestProcessor_CreatedNodeIsIndexed(t *testing.T) {
	repo := &fakeAuditRepo{}
	p, indexed := newTestProcessor(repo)

	ev := tasks.TaxonomyEvent{
		EventID:  "ev-2",
		Action:   tasks.ActionNodeCreated,
		Editor:   "curator",
		Rank:     "family",
		NodeID:   uintPtr(1001),
		NodeName: "Hominidae",
		ParentID: uintPtr(7),
	}
	require.NoError(t, p.Process(context.Background(), ev))

	require.Len(t, *indexed, 1)
	doc := (*indexed)[0]
	assert.Equal(t, "family-1001", doc.DocID)
	assert.Equal(t, "Hominidae", doc.Name)
	assert.Equal(t, uint(7), *doc.ParentID)
	assert.Len(t, repo.entries, 1)
}

func TestProcessor_AuditFailureIsReturned(t *testing.T) {
	repo := &fakeAuditRepo{err: errors.New("db down")}
	p, indexed := newTestProcessor(repo)

	err := p.Process(context.Background(), tasks.TaxonomyEvent{EventID: "ev-3", Action: tasks.ActionNodeCreated, NodeID: uintPtr(1)})
	assert.Error(t, err)
	assert.Empty(t, *indexed)
}

func TestProcessor_IndexFailureIsReturned(t *testing.T) {
	repo := &fakeAuditRepo{}
	p, _ := newTestProcessor(repo)
	p.indexNode = func(context.Context, string, model.NodeDocument) error { return errors.New("es down") }

	err := p.Process(context.Background(), tasks.TaxonomyEvent{EventID: "ev-4", Action: tasks.ActionNodeCreated, Rank: "kind", NodeID: uintPtr(5)})
	assert.Error(t, err)
}

func TestProcessor_RejectsEventWithoutID(t *testing.T) {
	p, _ := newTestProcessor(&fakeAuditRepo{})
	assert.Error(t, p.Process(context.Background(), tasks.TaxonomyEvent{Action: tasks.ActionTaxonomyCommitted}))
}
