package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-discovery/internal/pkg/common"
)

// BodySizeLimit 請求體上限
//
// 宣告的 Content-Length 超過上限時直接回 413；未宣告長度 (chunked) 的請求
// 以 MaxBytesReader 包裝，讀取時超過上限由 AbortBodyReadError 回報。
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxSize {
			abortTooLarge(c, c.Request.ContentLength, maxSize)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// AbortBodyReadError 讀取請求體失敗：超過上限回 413，其他錯誤回 400
func AbortBodyReadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		abortTooLarge(c, c.Request.ContentLength, tooLarge.Limit)
		return
	}
	common.LogWarn("Failed to read request body",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(common.HTTPStatus(common.KindInvalidInput), common.ErrorResponse{
		Code:      string(common.KindInvalidInput),
		Message:   "Request body could not be read",
		RequestID: common.RequestID(c),
	})
}

func abortTooLarge(c *gin.Context, size, limit int64) {
	common.LogWarn("Request body too large",
		zap.Int64("content_length", size),
		zap.Int64("limit", limit),
		zap.String("client_ip", clientIP(c)),
		zap.String("path", c.Request.URL.Path),
	)
	c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
		Code:      string(common.KindInvalidInput),
		Message:   "Request body too large",
		RequestID: common.RequestID(c),
	})
}
