package repository

import (
	"context"
	"testing"

	"genom-go/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func names(nodes []model.TopologyNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.DisplayName())
	}
	return out
}

func TestTaxonomyRepository_ListOrdersSkipsUnnamed(t *testing.T) {
	db := openTestDB(t)
	seedTree(t, db)
	repo := NewTaxonomyRepository(db)

	nodes, err := repo.ListNodes(context.Background(), model.RankOrder, uintPtr(3))
	require.NoError(t, err)
	assert.Equal(t, []string{"Carnivora", "Primates"}, names(nodes), "order ignores the parent filter and skips null names")
}

func TestTaxonomyRepository_ListScopedToParent(t *testing.T) {
	db := openTestDB(t)
	seedTree(t, db)
	repo := NewTaxonomyRepository(db)
	ctx := context.Background()

	families, err := repo.ListNodes(ctx, model.RankFamily, uintPtr(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"Canidae", "Felidae"}, names(families))

	genera, err := repo.ListNodes(ctx, model.RankGenus, uintPtr(5))
	require.NoError(t, err)
	require.Len(t, genera, 1)
	assert.Equal(t, uint(6), genera[0].ID)

	none, err := repo.ListNodes(ctx, model.RankFamily, uintPtr(7))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = repo.ListNodes(ctx, model.Rank(9), nil)
	assert.Error(t, err)
}

func TestTaxonomyRepository_CreateNodeUnderParent(t *testing.T) {
	db := openTestDB(t)
	seedTree(t, db)
	repo := NewTaxonomyRepository(db)
	ctx := context.Background()

	node, err := repo.CreateNode(ctx, model.NewNode{Rank: model.RankGenus, Name: "Panthera", ParentID: uintPtr(2)})
	require.NoError(t, err)
	assert.NotZero(t, node.ID)
	assert.Equal(t, "Panthera", node.DisplayName())

	var stored model.Genus
	require.NoError(t, db.First(&stored, node.ID).Error)
	require.NotNil(t, stored.FamilyID)
	assert.Equal(t, uint(2), *stored.FamilyID)

	order, err := repo.CreateNode(ctx, model.NewNode{Rank: model.RankOrder, Name: "Rodentia"})
	require.NoError(t, err)
	nodes, err := repo.ListNodes(ctx, model.RankOrder, nil)
	require.NoError(t, err)
	assert.Contains(t, names(nodes), "Rodentia")
	assert.NotZero(t, order.ID)
}

func TestTaxonomyRepository_CreateNodeMissingParent(t *testing.T) {
	db := openTestDB(t)
	seedTree(t, db)
	repo := NewTaxonomyRepository(db)
	ctx := context.Background()

	_, err := repo.CreateNode(ctx, model.NewNode{Rank: model.RankKind, Name: "leo", ParentID: uintPtr(999)})
	assert.ErrorIs(t, err, ErrParentNotFound)

	_, err = repo.CreateNode(ctx, model.NewNode{Rank: model.RankFamily, Name: "Hominidae"})
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestTaxonomyRepository_CreateNodeDuplicateUnderSameParent(t *testing.T) {
	db := openTestDB(t)
	seedTree(t, db)
	repo := NewTaxonomyRepository(db)
	ctx := context.Background()

	_, err := repo.CreateNode(ctx, model.NewNode{Rank: model.RankFamily, Name: "Felidae", ParentID: uintPtr(1)})
	assert.ErrorIs(t, err, model.ErrDuplicateName)

	// the same name under another parent is allowed
	_, err = repo.CreateNode(ctx, model.NewNode{Rank: model.RankFamily, Name: "Felidae", ParentID: uintPtr(7)})
	assert.NoError(t, err)
}

func TestTaxonomyRepository_FindSpecimenPreloadsPath(t *testing.T) {
	db := openTestDB(t)
	seedTree(t, db)
	repo := NewTaxonomyRepository(db)

	s, err := repo.FindSpecimen(context.Background(), 42)
	require.NoError(t, err)
	row := s.GenomRow()
	assert.Equal(t, "Carnivora", row.Order.DisplayName())
	assert.Equal(t, "Felidae", row.Family.DisplayName())
	assert.Equal(t, "Felis", row.Genus.DisplayName())
	assert.Equal(t, "catus", row.Kind.DisplayName())

	_, err = repo.FindSpecimen(context.Background(), 404)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTaxonomyRepository_CommitWritesAllFourColumns(t *testing.T) {
	db := openTestDB(t)
	seedTree(t, db)
	repo := NewTaxonomyRepository(db)
	ctx := context.Background()

	// family changed to Canidae: genus and kind are unset and must become NULL
	err := repo.CommitTaxonomy(ctx, model.TaxonomyCommit{RowID: 42, OrderID: uintPtr(1), FamilyID: uintPtr(5)})
	require.NoError(t, err)

	var s model.Specimen
	require.NoError(t, db.First(&s, 42).Error)
	require.NotNil(t, s.OrderID)
	require.NotNil(t, s.FamilyID)
	assert.Equal(t, uint(1), *s.OrderID)
	assert.Equal(t, uint(5), *s.FamilyID)
	assert.Nil(t, s.GenusID)
	assert.Nil(t, s.KindID)
}

func TestTaxonomyRepository_CommitUnknownRow(t *testing.T) {
	db := openTestDB(t)
	repo := NewTaxonomyRepository(db)

	err := repo.CommitTaxonomy(context.Background(), model.TaxonomyCommit{RowID: 404, OrderID: uintPtr(1)})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
