package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id uint, name string) *TopologyNode {
	return &TopologyNode{ID: id, Name: &name}
}

func fullRow() GenomRow {
	return GenomRow{
		RowID:  42,
		Order:  node(1, "Carnivora"),
		Family: node(2, "Felidae"),
		Genus:  node(3, "Felis"),
		Kind:   node(4, "catus"),
	}
}

func TestApplyChange_TruncatesDescendants(t *testing.T) {
	got := ApplyChange(fullRow(), RankFamily, node(5, "Canidae"))

	assert.Equal(t, uint(42), got.RowID)
	assert.Equal(t, node(1, "Carnivora"), got.Order)
	assert.Equal(t, node(5, "Canidae"), got.Family)
	assert.Nil(t, got.Genus)
	assert.Nil(t, got.Kind)
}

func TestApplyChange_ClearingOrderClearsEverything(t *testing.T) {
	got := ApplyChange(fullRow(), RankOrder, nil)

	for _, r := range Ranks {
		assert.Nil(t, got.Get(r), "rank %s", r)
	}
	assert.Equal(t, uint(42), got.RowID)
}

func TestApplyChange_KindOnlyChangesKind(t *testing.T) {
	got := ApplyChange(fullRow(), RankKind, node(9, "leo"))

	assert.Equal(t, node(1, "Carnivora"), got.Order)
	assert.Equal(t, node(2, "Felidae"), got.Family)
	assert.Equal(t, node(3, "Felis"), got.Genus)
	assert.Equal(t, node(9, "leo"), got.Kind)
}

func TestApplyChange_EveryRankClearsStrictlyLowerRanks(t *testing.T) {
	for _, level := range Ranks {
		for _, value := range []*TopologyNode{nil, node(100, "x")} {
			got := ApplyChange(fullRow(), level, value)
			want := fullRow()
			for _, r := range Ranks {
				switch {
				case r < level:
					assert.Equal(t, want.Get(r), got.Get(r), "level %s keeps %s", level, r)
				case r == level:
					assert.Equal(t, value, got.Get(r))
				default:
					assert.Nil(t, got.Get(r), "level %s clears %s", level, r)
				}
			}
		}
	}
}

func TestApplyChange_DoesNotMutateInput(t *testing.T) {
	row := fullRow()
	_ = ApplyChange(row, RankOrder, nil)
	assert.Equal(t, fullRow(), row)
}

func TestRank_ParentAndColumns(t *testing.T) {
	_, ok := RankOrder.Parent()
	assert.False(t, ok)
	assert.Equal(t, "", RankOrder.ParentColumn())

	p, ok := RankKind.Parent()
	require.True(t, ok)
	assert.Equal(t, RankGenus, p)
	assert.Equal(t, "order_id", RankFamily.ParentColumn())
	assert.Equal(t, "family_id", RankGenus.ParentColumn())
	assert.Equal(t, "genus_id", RankKind.ParentColumn())
	assert.Equal(t, "genera", RankGenus.Table())
}

func TestParseRank(t *testing.T) {
	for _, r := range Ranks {
		got, err := ParseRank(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseRank("species")
	assert.Error(t, err)
}

func TestRank_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		R Rank `json:"r"`
	}{RankGenus})
	require.NoError(t, err)
	assert.JSONEq(t, `{"r":"genus"}`, string(b))

	var out struct {
		R Rank `json:"r"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"r":"family"}`), &out))
	assert.Equal(t, RankFamily, out.R)
}

func TestNewTaxonomyCommit_OmitsUnsetRanks(t *testing.T) {
	row := fullRow()
	row.Kind = nil
	c := NewTaxonomyCommit(row)

	require.NotNil(t, c.OrderID)
	assert.Equal(t, uint(1), *c.OrderID)
	assert.Equal(t, uint(3), *c.GenusID)
	assert.Nil(t, c.KindID)

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "kindId")
}

func TestGenomRow_ParentID(t *testing.T) {
	row := fullRow()
	assert.Nil(t, row.ParentID(RankOrder))
	require.NotNil(t, row.ParentID(RankFamily))
	assert.Equal(t, uint(1), *row.ParentID(RankFamily))

	row.Genus = nil
	assert.Nil(t, row.ParentID(RankKind))
}

func TestSpecimen_GenomRow(t *testing.T) {
	name := "Carnivora"
	s := Specimen{ID: 7, Order: &Order{ID: 1, Name: &name}}
	row := s.GenomRow()
	assert.Equal(t, uint(7), row.RowID)
	assert.Equal(t, "Carnivora", row.Order.DisplayName())
	assert.Nil(t, row.Family)
}
