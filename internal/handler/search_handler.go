package handler

import (
	"genom-go/internal/model"
	"genom-go/internal/service"
	"genom-go/pkg/log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SearchHandler 结构体定义了节点搜索相关的处理器。
type SearchHandler struct {
	searchService service.SearchService
}

// NewSearchHandler 创建一个新的 SearchHandler 实例。
func NewSearchHandler(searchService service.SearchService) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
	}
}

// SearchNodes 按名称前缀搜索分类节点，rank 为空时搜索全部等级。
func (h *SearchHandler) SearchNodes(c *gin.Context) {
	query := c.Query("q")
	log.Infof("[SearchHandler] 收到节点搜索请求, q: %s", query)

	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "无效的查询参数"})
		return
	}

	var rank *model.Rank
	if raw := c.Query("rank"); raw != "" {
		r, err := model.ParseRank(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": err.Error()})
			return
		}
		rank = &r
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size <= 0 {
		size = 10
	}

	results, err := h.searchService.SearchNodes(c.Request.Context(), query, rank, size)
	if err != nil {
		log.Errorf("[SearchHandler] 节点搜索失败, error: %v", err)
		respondError(c, err, nil)
		return
	}

	log.Infof("[SearchHandler] 节点搜索成功, q: '%s', 返回 %d 条结果", query, len(results))
	c.JSON(http.StatusOK, gin.H{"code": 200, "data": results, "message": "success"})
}
