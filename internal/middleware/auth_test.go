package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xelth-com/receiptdesk/internal/utils"
)

const testSecret = "test-secret"

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(UserIDFromContext(r.Context())))
	})
}

func TestAuth(t *testing.T) {
	valid, err := utils.GenerateToken("user-1", "kho@example.com", "user", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	expired, _ := utils.GenerateToken("user-1", "kho@example.com", "user", testSecret, -time.Hour)
	foreign, _ := utils.GenerateToken("user-1", "kho@example.com", "user", "other", time.Hour)

	tests := []struct {
		name    string
		header  string
		query   string
		upgrade bool
		status  int
		body    string
	}{
		{"no header", "", "", false, http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + valid, "", false, http.StatusUnauthorized, ""},
		{"expired", "Bearer " + expired, "", false, http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + foreign, "", false, http.StatusUnauthorized, ""},
		{"valid", "Bearer " + valid, "", false, http.StatusOK, "user-1"},
		{"query token on upgrade", "", valid, true, http.StatusOK, "user-1"},
		{"query token without upgrade", "", valid, false, http.StatusUnauthorized, ""},
	}

	handler := Auth(testSecret)(echoUser())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/api/documents"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.upgrade {
				req.Header.Set("Upgrade", "websocket")
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
			if tt.status == http.StatusOK && rec.Body.String() != tt.body {
				t.Errorf("expected user %q, got %q", tt.body, rec.Body.String())
			}
			if tt.status != http.StatusOK && rec.Header().Get("Content-Type") != "application/json" {
				t.Errorf("errors should be JSON")
			}
		})
	}
}
