package model

// NodeDocument 定义了存储在 Elasticsearch 中的分类节点文档结构。
type NodeDocument struct {
	DocID    string `json:"doc_id"` // 唯一标识，rank + nodeId
	NodeID   uint   `json:"node_id"`
	Rank     string `json:"rank"`
	Name     string `json:"name"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// NodeSearchResult 定义了返回给前端的节点搜索结果。
type NodeSearchResult struct {
	NodeID   uint    `json:"nodeId"`
	Rank     string  `json:"rank"`
	Name     string  `json:"name"`
	ParentID *uint   `json:"parentId,omitempty"`
	Score    float64 `json:"score"`
}
