package handler

import (
	"genom-go/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AuditHandler 负责审计历史查看器的 API。
type AuditHandler struct {
	auditService service.AuditService
}

// NewAuditHandler 创建一个新的 AuditHandler 实例。
func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List 分页返回审计历史，可按 rowId 过滤。
func (h *AuditHandler) List(c *gin.Context) {
	rowID, err := optionalUint(c.Query("rowId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "无效的 rowId")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	resp, err := h.auditService.List(c.Request.Context(), rowID, page, size)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	ok(c, resp)
}
