package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "local validation message is shown",
			err:         InvalidInputError("recipe title is required", nil),
			wantStatus:  http.StatusBadRequest,
			wantCode:    string(KindInvalidInput),
			wantMessage: "recipe title is required",
		},
		{
			name:        "provider error uses kind message",
			err:         FromHTTPStatus("gemini", http.StatusUnauthorized, "bad key"),
			wantStatus:  http.StatusBadGateway,
			wantCode:    string(KindAuth),
			wantMessage: UserMessage(KindAuth),
		},
		{
			name:        "missing credentials",
			err:         ConfigurationError("recipe search API key is not configured"),
			wantStatus:  http.StatusServiceUnavailable,
			wantCode:    string(KindConfiguration),
			wantMessage: UserMessage(KindConfiguration),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.Header.Set("X-Request-ID", "req-1")

			WriteError(c, tc.err, false)

			if w.Code != tc.wantStatus {
				t.Errorf("status = %d; want %d", w.Code, tc.wantStatus)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Code != tc.wantCode {
				t.Errorf("code = %q; want %q", resp.Code, tc.wantCode)
			}
			if resp.Message != tc.wantMessage {
				t.Errorf("message = %q; want %q", resp.Message, tc.wantMessage)
			}
			if resp.RequestID != "req-1" {
				t.Errorf("request_id = %q; want req-1", resp.RequestID)
			}
			if resp.Details != "" {
				t.Errorf("details = %q; want empty outside debug", resp.Details)
			}
		})
	}
}

func TestUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if got := UserID(c); got != DefaultUserID {
		t.Errorf("UserID() = %q; want %q", got, DefaultUserID)
	}
	c.Request.Header.Set("X-User-ID", "alice")
	if got := UserID(c); got != "alice" {
		t.Errorf("UserID() = %q; want alice", got)
	}
}
