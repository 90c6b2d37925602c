package repository

import (
	"context"
	"genom-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuditRepository 接口定义了审计历史的持久化操作。
type AuditRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	FindWithPagination(ctx context.Context, rowID *uint, offset, limit int) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository 创建一个新的 AuditRepository 实例。
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Create 写入一条审计记录。EventID 重复时静默忽略，Kafka 重投不会产生重复记录。
func (r *auditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(entry).Error
}

// FindWithPagination 按时间倒序分页检索审计记录，rowID 不为 nil 时只返回该标本的记录。
func (r *auditRepository) FindWithPagination(ctx context.Context, rowID *uint, offset, limit int) ([]model.AuditLog, int64, error) {
	var entries []model.AuditLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if rowID != nil {
		db = db.Where("row_id = ?", *rowID)
	}

	// 首先计算总记录数
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
