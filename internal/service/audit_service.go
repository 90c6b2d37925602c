package service

import (
	"context"
	"genom-go/internal/model"
	"genom-go/internal/repository"
)

// AuditListResponse 定义了审计历史 API 的分页响应结构。
type AuditListResponse struct {
	Content       []AuditEntryResponse `json:"content"`
	TotalElements int64                `json:"totalElements"`
	TotalPages    int                  `json:"totalPages"`
	Size          int                  `json:"size"`
	Number        int                  `json:"number"`
}

// AuditEntryResponse 定义了审计历史中的一条记录。
type AuditEntryResponse struct {
	ID        uint            `json:"id"`
	Editor    string          `json:"editor"`
	Action    string          `json:"action"`
	RowID     *uint           `json:"rowId"`
	Rank      string          `json:"rank,omitempty"`
	NodeID    *uint           `json:"nodeId,omitempty"`
	Payload   string          `json:"payload"`
	CreatedAt model.LocalTime `json:"createdAt"`
}

// AuditService 接口定义了审计历史查看器的查询操作。
type AuditService interface {
	List(ctx context.Context, rowID *uint, page, size int) (*AuditListResponse, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

// NewAuditService 创建一个新的 AuditService 实例。
func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

// List 以分页的形式返回审计历史，page 从 1 开始。
func (s *auditService) List(ctx context.Context, rowID *uint, page, size int) (*AuditListResponse, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 20
	}
	offset := (page - 1) * size
	entries, total, err := s.auditRepo.FindWithPagination(ctx, rowID, offset, size)
	if err != nil {
		return nil, err
	}

	content := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		content = append(content, AuditEntryResponse{
			ID:        e.ID,
			Editor:    e.Editor,
			Action:    e.Action,
			RowID:     e.RowID,
			Rank:      e.Rank,
			NodeID:    e.NodeID,
			Payload:   e.Payload,
			CreatedAt: model.LocalTime(e.CreatedAt),
		})
	}

	totalPages := 0
	if total > 0 {
		totalPages = (int(total) + size - 1) / size
	}
	return &AuditListResponse{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
	}, nil
}
