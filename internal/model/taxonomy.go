package model

import "time"

// Order 对应于数据库中的 'orders' 表，是分类树的最高等级。
type Order struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      *string   `gorm:"type:varchar(255);uniqueIndex:idx_order_name" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Order) TableName() string { return RankOrder.Table() }

// Node 返回节点视图。
func (o Order) Node() TopologyNode { return TopologyNode{ID: o.ID, Name: o.Name} }

// Family 对应于 'families' 表，隶属于某个 Order。
type Family struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      *string   `gorm:"type:varchar(255);uniqueIndex:idx_family_order_name,priority:2" json:"name"`
	OrderID   *uint     `gorm:"index;uniqueIndex:idx_family_order_name,priority:1" json:"orderId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Family) TableName() string { return RankFamily.Table() }

// Node 返回节点视图。
func (f Family) Node() TopologyNode { return TopologyNode{ID: f.ID, Name: f.Name} }

// Genus 对应于 'genera' 表，隶属于某个 Family。
type Genus struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      *string   `gorm:"type:varchar(255);uniqueIndex:idx_genus_family_name,priority:2" json:"name"`
	FamilyID  *uint     `gorm:"index;uniqueIndex:idx_genus_family_name,priority:1" json:"familyId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Genus) TableName() string { return RankGenus.Table() }

// Node 返回节点视图。
func (g Genus) Node() TopologyNode { return TopologyNode{ID: g.ID, Name: g.Name} }

// Kind 对应于 'kinds' 表，隶属于某个 Genus。
type Kind struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      *string   `gorm:"type:varchar(255);uniqueIndex:idx_kind_genus_name,priority:2" json:"name"`
	GenusID   *uint     `gorm:"index;uniqueIndex:idx_kind_genus_name,priority:1" json:"genusId"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Kind) TableName() string { return RankKind.Table() }

// Node 返回节点视图。
func (k Kind) Node() TopologyNode { return TopologyNode{ID: k.ID, Name: k.Name} }

// Specimen 对应于 'collection' 表，即一条馆藏标本记录。
// 四个分类外键都可以为空，由 commit_taxonomy 一次性整体更新。
type Specimen struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   *uint     `gorm:"index" json:"orderId"`
	FamilyID  *uint     `gorm:"index" json:"familyId"`
	GenusID   *uint     `gorm:"index" json:"genusId"`
	KindID    *uint     `gorm:"index" json:"kindId"`
	Order     *Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Family    *Family   `gorm:"foreignKey:FamilyID" json:"family,omitempty"`
	Genus     *Genus    `gorm:"foreignKey:GenusID" json:"genus,omitempty"`
	Kind      *Kind     `gorm:"foreignKey:KindID" json:"kind,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Specimen) TableName() string {
	return "collection"
}

// GenomRow 将标本当前的分类路径复制为一个新的编辑缓冲区。
func (s Specimen) GenomRow() GenomRow {
	row := GenomRow{RowID: s.ID}
	if s.Order != nil {
		n := s.Order.Node()
		row.Order = &n
	}
	if s.Family != nil {
		n := s.Family.Node()
		row.Family = &n
	}
	if s.Genus != nil {
		n := s.Genus.Node()
		row.Genus = &n
	}
	if s.Kind != nil {
		n := s.Kind.Node()
		row.Kind = &n
	}
	return row
}

// TaxonomyCommit 是 commit_taxonomy 的参数；nil 表示该等级未设置，调用时省略。
type TaxonomyCommit struct {
	RowID    uint  `json:"rowId"`
	OrderID  *uint `json:"orderId,omitempty"`
	FamilyID *uint `json:"familyId,omitempty"`
	GenusID  *uint `json:"genusId,omitempty"`
	KindID   *uint `json:"kindId,omitempty"`
}

// NewTaxonomyCommit 从编辑缓冲区构造提交参数，只携带已设置的等级。
func NewTaxonomyCommit(row GenomRow) TaxonomyCommit {
	c := TaxonomyCommit{RowID: row.RowID}
	ids := []**uint{&c.OrderID, &c.FamilyID, &c.GenusID, &c.KindID}
	for i, r := range Ranks {
		if n := row.Get(r); n != nil {
			id := n.ID
			*ids[i] = &id
		}
	}
	return c
}

// NewNode 是创建分类节点的参数。ParentID 对 order 恒为 nil。
type NewNode struct {
	Rank     Rank   `json:"rank"`
	Name     string `json:"name"`
	ParentID *uint  `json:"parentId,omitempty"`
}
