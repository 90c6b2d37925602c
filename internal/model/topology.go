// Package model 定义了与数据库表对应的 Go 结构体以及分类编辑的领域类型。
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Rank 是四个固定分类等级之一，顺序为 order < family < genus < kind。
type Rank int

const (
	RankOrder Rank = iota
	RankFamily
	RankGenus
	RankKind
)

// Ranks 按级联截断顺序列出所有等级。
var Ranks = []Rank{RankOrder, RankFamily, RankGenus, RankKind}

// String 返回等级在 API 中使用的名称。
func (r Rank) String() string {
	switch r {
	case RankOrder:
		return "order"
	case RankFamily:
		return "family"
	case RankGenus:
		return "genus"
	case RankKind:
		return "kind"
	}
	return fmt.Sprintf("rank(%d)", int(r))
}

// Valid 报告 r 是否是已知等级。
func (r Rank) Valid() bool {
	return r >= RankOrder && r <= RankKind
}

// Parent 返回上一级等级；order 没有父级。
func (r Rank) Parent() (Rank, bool) {
	if r <= RankOrder || !r.Valid() {
		return 0, false
	}
	return r - 1, true
}

// Child 返回下一级等级；kind 没有子级。
func (r Rank) Child() (Rank, bool) {
	if r >= RankKind || !r.Valid() {
		return 0, false
	}
	return r + 1, true
}

// Table 返回存放该等级节点的表名。
func (r Rank) Table() string {
	switch r {
	case RankOrder:
		return "orders"
	case RankFamily:
		return "families"
	case RankGenus:
		return "genera"
	case RankKind:
		return "kinds"
	}
	return ""
}

// ParentColumn 返回指向父级节点的外键列名，order 返回空字符串。
func (r Rank) ParentColumn() string {
	p, ok := r.Parent()
	if !ok {
		return ""
	}
	return p.String() + "_id"
}

// ParseRank 将 "order"、"family"、"genus"、"kind" 解析为 Rank。
func ParseRank(s string) (Rank, error) {
	for _, r := range Ranks {
		if strings.EqualFold(s, r.String()) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rank %q", s)
}

// MarshalJSON 以名称而非数字编码等级。
func (r Rank) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON 实现 json.Unmarshaler。
func (r *Rank) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRank(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// TopologyNode 是某一等级上的单个分类节点，创建后不可变。
type TopologyNode struct {
	ID   uint    `json:"id"`
	Name *string `json:"name"`
}

// DisplayName 返回节点名称，名称为空时返回空字符串。
func (n TopologyNode) DisplayName() string {
	if n.Name == nil {
		return ""
	}
	return *n.Name
}

// GenomRow 是一条馆藏记录的分类路径编辑缓冲区。
// 不变量：Family 从 Order 限定的选项中选出，Genus 受 Family 限定，Kind 受 Genus 限定。
type GenomRow struct {
	RowID  uint          `json:"rowId"`
	Order  *TopologyNode `json:"order,omitempty"`
	Family *TopologyNode `json:"family,omitempty"`
	Genus  *TopologyNode `json:"genus,omitempty"`
	Kind   *TopologyNode `json:"kind,omitempty"`
}

// Get 返回指定等级当前选中的节点。
func (g *GenomRow) Get(r Rank) *TopologyNode {
	switch r {
	case RankOrder:
		return g.Order
	case RankFamily:
		return g.Family
	case RankGenus:
		return g.Genus
	case RankKind:
		return g.Kind
	}
	return nil
}

// Set 设置指定等级的节点，不做级联。
func (g *GenomRow) Set(r Rank, n *TopologyNode) {
	switch r {
	case RankOrder:
		g.Order = n
	case RankFamily:
		g.Family = n
	case RankGenus:
		g.Genus = n
	case RankKind:
		g.Kind = n
	}
}

// ParentID 返回等级 r 的父级节点 ID；父级未选中或 r 为 order 时返回 nil。
func (g *GenomRow) ParentID(r Rank) *uint {
	p, ok := r.Parent()
	if !ok {
		return nil
	}
	n := g.Get(p)
	if n == nil {
		return nil
	}
	id := n.ID
	return &id
}

// Clone 深拷贝编辑缓冲区，节点本身不可变因此按值复制即可。
func (g GenomRow) Clone() GenomRow {
	out := GenomRow{RowID: g.RowID}
	for _, r := range Ranks {
		if n := g.Get(r); n != nil {
			cp := *n
			out.Set(r, &cp)
		}
	}
	return out
}

// ApplyChange 将等级 level 设为 node，并无条件清空所有更低的等级。
// node 为 nil 表示清除该等级，同样会级联清空。
func ApplyChange(row GenomRow, level Rank, node *TopologyNode) GenomRow {
	out := row.Clone()
	if node != nil {
		cp := *node
		node = &cp
	}
	out.Set(level, node)
	for _, r := range Ranks {
		if r > level {
			out.Set(r, nil)
		}
	}
	return out
}
