package common

import (
	"errors"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultUserID 未帶 X-User-ID 時使用
const DefaultUserID = "guest"

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// RequestID 取得請求 ID
func RequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return GenerateUUID()
}

// UserID 取得呼叫者 ID
func UserID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return DefaultUserID
}

// WriteError 依錯誤分類寫入錯誤響應
func WriteError(c *gin.Context, err error, debug bool) {
	kind := KindOf(err)
	resp := ErrorResponse{
		Code:      string(kind),
		Message:   UserMessage(kind),
		RequestID: RequestID(c),
	}
	// 本地驗證錯誤的訊息直接回給使用者
	var ce *CustomError
	if errors.As(err, &ce) && ce.Provider == "" && ce.Message != "" &&
		(kind == KindInvalidInput || kind == KindNotFound) {
		resp.Message = ce.Message
	}
	if debug {
		resp.Details = err.Error()
	}

	status := HTTPStatus(kind)
	if status >= 500 {
		LogError("Request failed",
			zap.String("request_id", resp.RequestID),
			zap.String("path", c.Request.URL.Path),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, resp)
}
