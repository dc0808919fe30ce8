package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlers(t *testing.T) {
	tests := []struct {
		name       string
		secret     bool
		path       string
		wantCode   int
		wantInBody string
	}{
		{"liveness", false, "/healthz", http.StatusOK, "OK"},
		{"ready with secret", true, "/readyz", http.StatusOK, "OK"},
		{"ready degraded without secret", false, "/readyz", http.StatusOK, "DEGRADED"},
		{"detailed degraded", false, "/health", http.StatusOK, `"status":"degraded"`},
		{"detailed healthy", true, "/health", http.StatusOK, `"status":"healthy"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator()
			agg.Register("secret", NewSecretChecker(fakeSource(tt.secret), ""))
			mux := http.NewServeMux()
			RegisterHandlers(mux, agg)

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.wantInBody) {
				t.Errorf("GET %s body = %q, want to contain %q", tt.path, rec.Body.String(), tt.wantInBody)
			}
		})
	}
}

func TestReadinessHandler_Unhealthy(t *testing.T) {
	agg := NewAggregator()
	agg.Register("upstream", static("upstream", StatusUnhealthy))

	rec := httptest.NewRecorder()
	ReadinessHandler(agg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestCheckHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("secret", NewSecretChecker(fakeSource(false), "TOKENGATE_SECRET"))
	mux := http.NewServeMux()
	RegisterHandlers(mux, agg)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/secret", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp CheckResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "degraded" || resp.Error == "" {
		t.Errorf("response = %+v, want degraded with error", resp)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing checker status = %d, want 404", rec.Code)
	}
}
