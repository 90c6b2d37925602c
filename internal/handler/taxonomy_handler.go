package handler

import (
	"genom-go/internal/model"
	"genom-go/internal/service"
	"genom-go/pkg/log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// TaxonomyHandler 负责分类编辑器的全部 API：编辑缓冲区、级联修改、提交/放弃以及行内新建。
type TaxonomyHandler struct {
	editorService service.EditorService
	createService service.CreateService
	optionService service.OptionService
}

// NewTaxonomyHandler 创建一个新的 TaxonomyHandler 实例。
func NewTaxonomyHandler(editorService service.EditorService, createService service.CreateService, optionService service.OptionService) *TaxonomyHandler {
	return &TaxonomyHandler{
		editorService: editorService,
		createService: createService,
		optionService: optionService,
	}
}

// StartEditingRequest 定义了开始编辑 API 的请求体结构。
type StartEditingRequest struct {
	RowID  uint `json:"rowId" binding:"required"`
	Strict bool `json:"strict"`
}

// EditStateResponse 是当前编辑状态：缓冲区、四个等级的选项以及新建流程。
type EditStateResponse struct {
	Row     *model.GenomRow      `json:"row"`
	Options []service.OptionList `json:"options"`
	Create  *model.CreateFlow    `json:"create,omitempty"`
}

// StartEditing 处理开始编辑某一行的请求。
func (h *TaxonomyHandler) StartEditing(c *gin.Context) {
	editor, exists := editorOf(c)
	if !exists {
		return
	}
	var req StartEditingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求负载：rowId 不能为空")
		return
	}

	result, err := h.editorService.StartEditing(c.Request.Context(), editor, req.RowID, req.Strict)
	if err != nil {
		log.Warnf("[TaxonomyHandler] 开始编辑失败, editor: %s, row: %d, error: %v", editor, req.RowID, err)
		respondError(c, err, nil)
		return
	}
	ok(c, gin.H{
		"row":           result.Row,
		"replacedRowId": result.ReplacedRowID,
		"options":       h.optionService.LoadAll(c.Request.Context(), &result.Row),
	})
}

// GetEditState 返回编辑者的当前缓冲区与选项。
func (h *TaxonomyHandler) GetEditState(c *gin.Context) {
	editor, exists := editorOf(c)
	if !exists {
		return
	}
	sess, err := h.editorService.Current(c.Request.Context(), editor)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	ok(c, EditStateResponse{
		Row:     sess.Row,
		Options: h.optionService.LoadAll(c.Request.Context(), sess.Row),
		Create:  sess.Create,
	})
}

// ChangeRequest 定义了级联修改的请求体，nodeId 为 null 表示清除该等级。
type ChangeRequest struct {
	NodeID *uint `json:"nodeId"`
}

// Change 处理某一等级上的选择变化。
func (h *TaxonomyHandler) Change(c *gin.Context) {
	editor, exists := editorOf(c)
	if !exists {
		return
	}
	rank, err := model.ParseRank(c.Param("rank"))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	var req ChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求负载")
		return
	}

	row, err := h.editorService.Change(c.Request.Context(), editor, rank, req.NodeID)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	ok(c, EditStateResponse{
		Row:     row,
		Options: h.optionService.LoadAll(c.Request.Context(), row),
	})
}

// Commit 持久化编辑后的分类路径。失败时缓冲区保留，响应带 retryable 标记。
func (h *TaxonomyHandler) Commit(c *gin.Context) {
	editor, exists := editorOf(c)
	if !exists {
		return
	}
	row, err := h.editorService.Commit(c.Request.Context(), editor)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	ok(c, row)
}

// Discard 放弃当前编辑。
func (h *TaxonomyHandler) Discard(c *gin.Context) {
	editor, exists := editorOf(c)
	if !exists {
		return
	}
	if err := h.editorService.Discard(c.Request.Context(), editor); err != nil {
		respondError(c, err, nil)
		return
	}
	ok(c, nil)
}

// BeginCreateRequest 定义了打开新建流程的请求体，search 是用户当前输入的搜索文本。
type BeginCreateRequest struct {
	Rank   *model.Rank `json:"rank" binding:"required"`
	Search string      `json:"search"`
}

// BeginCreate 在某一等级上打开新建流程。
func (h *TaxonomyHandler) BeginCreate(c *gin.Context) {
	editor, exists := editorOf(c)
	if !exists {
		return
	}
	var req BeginCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Rank.Valid() {
		fail(c, http.StatusBadRequest, "无效的请求负载：rank 不合法")
		return
	}
	flow, err := h.createService.Begin(c.Request.Context(), editor, *req.Rank, req.Search)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	ok(c, flow)
}

// SubmitCreateRequest 定义了提交新名称的请求体。
type SubmitCreateRequest struct {
	Name string `json:"name"`
}

// SubmitCreate 校验候选名称；校验失败时返回 422 与仍处于 collecting 的流程。
func (h *TaxonomyHandler) SubmitCreate(c *gin.Context) {
	editor, exists := editorOf(c)
	if !exists {
		return
	}
	var req SubmitCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求负载")
		return
	}
	flow, err := h.createService.Submit(c.Request.Context(), editor, req.Name)
	if err != nil {
		respondError(c, err, flowData(flow))
		return
	}
	ok(c, flow)
}

// ConfirmCreate 确认并写入新节点，成功后新节点被自动选中。
func (h *TaxonomyHandler) ConfirmCreate(c *gin.Context) {
	editor, exists := editorOf(c)
	if !exists {
		return
	}
	result, flow, err := h.createService.Confirm(c.Request.Context(), editor)
	if err != nil {
		respondError(c, err, flowData(flow))
		return
	}
	ok(c, gin.H{"node": result.Node, "row": result.Row, "create": flow})
}

// CancelCreate 关闭新建流程。
func (h *TaxonomyHandler) CancelCreate(c *gin.Context) {
	editor, exists := editorOf(c)
	if !exists {
		return
	}
	if err := h.createService.Cancel(c.Request.Context(), editor); err != nil {
		respondError(c, err, nil)
		return
	}
	ok(c, nil)
}

// ListOptions 直接返回某一等级在 parentId 下的选项。
func (h *TaxonomyHandler) ListOptions(c *gin.Context) {
	rank, err := model.ParseRank(c.Param("rank"))
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	parentID, err := optionalUint(c.Query("parentId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "无效的 parentId")
		return
	}
	if rank != model.RankOrder && parentID == nil {
		// 父级未选中时该等级不可用
		ok(c, service.OptionList{Rank: rank, Nodes: []model.TopologyNode{}})
		return
	}
	ok(c, h.optionService.Load(c.Request.Context(), rank, parentID))
}

func flowData(flow *model.CreateFlow) interface{} {
	if flow == nil {
		return nil
	}
	return flow
}
