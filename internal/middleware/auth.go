// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"genom-go/pkg/log"
	"genom-go/pkg/token"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	claimsKey = "claims"
	editorKey = "editor"
)

// AuthMiddleware 创建一个 Gin 中间件，用于 JWT 认证。
// 令牌由外部认证服务签发；校验通过后，claims 中的用户名作为编辑者身份存入上下文。
func AuthMiddleware(jwtManager *token.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "请求未包含授权头"})
			return
		}

		// Token 以 "Bearer <token>" 的形式提供
		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的授权头格式"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			log.Warnf("[AuthMiddleware] token 校验失败: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效或已过期的 token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Set(editorKey, claims.Username)
		c.Next()
	}
}

// Editor 返回当前请求的编辑者身份，未经过 AuthMiddleware 时返回 false。
func Editor(c *gin.Context) (string, bool) {
	v, ok := c.Get(editorKey)
	if !ok {
		return "", false
	}
	editor, ok := v.(string)
	return editor, ok && editor != ""
}

// Claims 返回当前请求的 JWT claims。
func Claims(c *gin.Context) (*token.CustomClaims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*token.CustomClaims)
	return claims, ok
}
