package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthCheck(t *testing.T) {
	h := NewHandler("1.2.3", map[string]bool{"gemini": true, "roboflow": false}, nil)
	w := serve(h, "/health")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "1.2.3" || !resp.Providers["gemini"] || resp.Providers["roboflow"] {
		t.Errorf("resp = %+v", resp)
	}
}

func TestReadinessCheck(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus int
		wantState  string
	}{
		{"no dependencies", nil, http.StatusOK, "ready"},
		{"all healthy", map[string]CheckFunc{"redis": ok, "sqlite": ok}, http.StatusOK, "ready"},
		{"one down", map[string]CheckFunc{"redis": ok, "mongodb": down}, http.StatusServiceUnavailable, "not_ready"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(NewHandler("v", nil, tc.checks), "/ready")
			if w.Code != tc.wantStatus {
				t.Errorf("status = %d; want %d", w.Code, tc.wantStatus)
			}
			var resp struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.Status != tc.wantState {
				t.Errorf("status field = %q; want %q", resp.Status, tc.wantState)
			}
			if len(resp.Checks) != len(tc.checks) {
				t.Errorf("checks = %v", resp.Checks)
			}
			if tc.name == "one down" && resp.Checks["mongodb"] != "unavailable" {
				t.Errorf("mongodb = %q; want unavailable", resp.Checks["mongodb"])
			}
		})
	}
}

func TestLivenessCheck(t *testing.T) {
	if w := serve(NewHandler("v", nil, nil), "/live"); w.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", w.Code)
	}
}
