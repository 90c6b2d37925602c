// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"genom-go/internal/middleware"
	"genom-go/internal/model"
	"genom-go/internal/repository"
	"genom-go/internal/service"
	"genom-go/pkg/log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"code": status, "message": message})
}

// statusFor 将业务错误映射为 HTTP 状态码。retryable 表示缓冲区仍在，客户端可以直接重试。
func statusFor(err error) (status int, retryable bool) {
	switch {
	case errors.Is(err, service.ErrRowNotFound):
		return http.StatusNotFound, false
	case errors.Is(err, service.ErrNoEditInProgress),
		errors.Is(err, service.ErrNoCreateInProgress),
		errors.Is(err, service.ErrEditInProgress),
		errors.Is(err, model.ErrCreatePending),
		errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict, false
	case errors.Is(err, model.ErrEmptyName),
		errors.Is(err, model.ErrDuplicateName),
		errors.Is(err, service.ErrNodeNotInScope),
		errors.Is(err, service.ErrParentNotSelected),
		errors.Is(err, repository.ErrParentNotFound),
		errors.Is(err, service.ErrEmptyQuery):
		return http.StatusUnprocessableEntity, false
	case errors.Is(err, service.ErrCommitFailed),
		errors.Is(err, service.ErrCreateFailed):
		return http.StatusBadGateway, true
	}
	return http.StatusInternalServerError, false
}

// respondError 写出错误响应；data 不为 nil 时一并返回（例如校验失败后的新建流程）。
func respondError(c *gin.Context, err error, data interface{}) {
	status, retryable := statusFor(err)
	body := gin.H{"code": status, "message": err.Error()}
	if status == http.StatusInternalServerError {
		log.Errorf("[Handler] %s %s 内部错误: %v", c.Request.Method, c.FullPath(), err)
		body["message"] = "内部错误"
	}
	if retryable {
		body["retryable"] = true
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// editorOf 返回当前编辑者；缺失时直接写出 401。
func editorOf(c *gin.Context) (string, bool) {
	editor, exists := middleware.Editor(c)
	if !exists {
		fail(c, http.StatusUnauthorized, "无法获取编辑者身份")
		return "", false
	}
	return editor, true
}

// optionalUint 解析可选的无符号整数查询参数，空字符串返回 nil。
func optionalUint(raw string) (*uint, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	u := uint(v)
	return &u, nil
}
