package model

import "time"

// EditSession 是某个编辑者的分类编辑状态，序列化后保存在 Redis 中。
// Row 为 nil 表示当前没有正在编辑的行；同一时刻最多一行。
type EditSession struct {
	Editor    string      `json:"editor"`
	Row       *GenomRow   `json:"row"`
	Create    *CreateFlow `json:"create,omitempty"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// AuditLog 对应于 'audit_log' 表，记录已提交的分类变更和新建的节点。
type AuditLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   string    `gorm:"type:varchar(64);uniqueIndex" json:"eventId"`
	Editor    string    `gorm:"type:varchar(255);not null;index" json:"editor"`
	Action    string    `gorm:"type:varchar(32);not null" json:"action"`
	RowID     *uint     `gorm:"index" json:"rowId"`
	Rank      string    `gorm:"type:varchar(16)" json:"rank"`
	NodeID    *uint     `json:"nodeId"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (AuditLog) TableName() string {
	return "audit_log"
}
