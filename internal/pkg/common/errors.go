package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind 錯誤分類
type ErrorKind string

// 錯誤分類
const (
	KindConfiguration     ErrorKind = "CONFIGURATION_ERROR" // 缺少憑證或設定
	KindAuth              ErrorKind = "AUTH_ERROR"          // 供應商拒絕金鑰
	KindNotFound          ErrorKind = "NOT_FOUND"           // 模型或食譜不存在
	KindInvalidInput      ErrorKind = "INVALID_INPUT"       // 請求或圖片格式錯誤
	KindRateLimit         ErrorKind = "RATE_LIMITED"
	KindNetwork           ErrorKind = "NETWORK_ERROR"      // 無回應、逾時或取消
	KindParse             ErrorKind = "PARSE_ERROR"        // 回應不是預期的 JSON
	KindExhaustedFallback ErrorKind = "EXHAUSTED_FALLBACK" // 所有候選模型都失敗
	KindInternal          ErrorKind = "INTERNAL_ERROR"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Details   string `json:"details,omitempty"` // 僅在 debug 模式顯示
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Kind     ErrorKind
	Message  string // 可呈現給使用者的訊息
	Provider string // 外部供應商名稱（若有）
	Status   int    // 供應商回傳的 HTTP 狀態碼（若有）
	Err      error  // 原始錯誤
}

func (e *CustomError) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤分類比對，讓 errors.Is(err, ErrRateLimited) 成立
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError 創建新的自定義錯誤
func NewError(kind ErrorKind, message string, err error) *CustomError {
	return &CustomError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// WithProvider 標記錯誤來源供應商
func (e *CustomError) WithProvider(provider string) *CustomError {
	e.Provider = provider
	return e
}

// ConfigurationError 缺少設定
func ConfigurationError(message string) *CustomError {
	return NewError(KindConfiguration, message, nil)
}

// InvalidInputError 輸入錯誤
func InvalidInputError(message string, err error) *CustomError {
	return NewError(KindInvalidInput, message, err)
}

// NetworkError 網路錯誤
func NetworkError(message string, err error) *CustomError {
	return NewError(KindNetwork, message, err)
}

// ParseError 解析錯誤
func ParseError(message string, err error) *CustomError {
	return NewError(KindParse, message, err)
}

// NotFoundError 資源不存在
func NotFoundError(message string) *CustomError {
	return NewError(KindNotFound, message, nil)
}

// InternalError 內部錯誤
func InternalError(message string, err error) *CustomError {
	return NewError(KindInternal, message, err)
}

// FromHTTPStatus 將供應商的 HTTP 狀態碼轉為錯誤分類
func FromHTTPStatus(provider string, status int, body string) *CustomError {
	var kind ErrorKind
	var message string
	switch {
	case status == http.StatusBadRequest:
		kind, message = KindInvalidInput, "provider rejected the request payload"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind, message = KindAuth, "provider rejected the API key"
	case status == http.StatusNotFound:
		kind, message = KindNotFound, "provider resource or model not found"
	case status == http.StatusTooManyRequests:
		kind, message = KindRateLimit, "provider rate limit reached"
	case status >= 500:
		kind, message = KindNetwork, "provider unavailable"
	default:
		kind, message = KindInvalidInput, "provider rejected the request"
	}

	var cause error
	if body = strings.TrimSpace(body); body != "" {
		if len(body) > 256 {
			body = body[:256]
		}
		cause = fmt.Errorf("status %d: %s", status, body)
	} else {
		cause = fmt.Errorf("status %d", status)
	}

	return &CustomError{
		Kind:     kind,
		Message:  message,
		Provider: provider,
		Status:   status,
		Err:      cause,
	}
}

// KindOf 取得錯誤鏈中最外層的錯誤分類
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}

// IsKind 檢查錯誤鏈是否屬於指定分類
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// HTTPStatus 錯誤分類對應的 API 狀態碼
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindConfiguration:
		return http.StatusServiceUnavailable
	case KindAuth, KindParse, KindExhaustedFallback:
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindNetwork:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage 錯誤分類對應的使用者提示
func UserMessage(kind ErrorKind) string {
	switch kind {
	case KindConfiguration:
		return "Service is not configured for this feature, check your API key"
	case KindAuth:
		return "The provider rejected the API key, check your API key"
	case KindNotFound:
		return "The requested model or recipe was not found"
	case KindInvalidInput:
		return "The request or image could not be processed"
	case KindRateLimit:
		return "Too many requests, please try again later"
	case KindNetwork:
		return "The provider could not be reached, check your connection"
	case KindParse:
		return "The provider returned an unexpected response"
	case KindExhaustedFallback:
		return "None of the available models could analyze this image"
	default:
		return "Internal server error"
	}
}

// 預定義錯誤，用於 errors.Is 比對分類
var (
	ErrConfiguration     = NewError(KindConfiguration, "missing configuration", nil)
	ErrAuth              = NewError(KindAuth, "unauthorized", nil)
	ErrNotFound          = NewError(KindNotFound, "not found", nil)
	ErrInvalidInput      = NewError(KindInvalidInput, "invalid input", nil)
	ErrRateLimited       = NewError(KindRateLimit, "rate limited", nil)
	ErrNetwork           = NewError(KindNetwork, "network error", nil)
	ErrParse             = NewError(KindParse, "parse error", nil)
	ErrExhaustedFallback = NewError(KindExhaustedFallback, "all fallbacks exhausted", nil)
	ErrInternal          = NewError(KindInternal, "internal error", nil)
)

// 快取錯誤
var (
	ErrCacheMiss     = errors.New("cache miss")
	ErrCacheFull     = errors.New("cache full")
	ErrCacheDisabled = errors.New("cache disabled")
)
