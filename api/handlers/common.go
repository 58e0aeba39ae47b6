// Package handlers 把 HTTP 请求转换为服务调用
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/BinLe1988/cofounder-match/api/middleware"
	"github.com/BinLe1988/cofounder-match/pkg/errs"

	"github.com/gin-gonic/gin"
)

// currentUser 认证中间件写入的用户ID
func currentUser(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}

// statusFor 把错误哨兵映射为 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrInvalidArgument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError 输出错误，内部错误不暴露细节
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON 解析请求体，失败时直接返回 400
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// queryInt 读取整数查询参数
func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return n
}
