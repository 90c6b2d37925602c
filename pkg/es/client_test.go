package es

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildNodeQuery_WithRankFilter(t *testing.T) {
	q := BuildNodeQuery("fel", "family", 5)

	assert.Equal(t, 5, q["size"])
	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	mm := boolQuery["must"].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "fel", mm["query"])
	assert.Equal(t, "bool_prefix", mm["type"])

	filter := boolQuery["filter"].([]map[string]interface{})
	assert.Len(t, filter, 1)
	assert.Equal(t, "family", filter[0]["term"].(map[string]interface{})["rank"])
}

func TestBuildNodeQuery_NoRank(t *testing.T) {
	q := BuildNodeQuery("fel", "", 10)
	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
	_, hasFilter := boolQuery["filter"]
	assert.False(t, hasFilter)
}

func TestNodeDocID(t *testing.T) {
	assert.Equal(t, "genus-12", NodeDocID("genus", 12))
}
