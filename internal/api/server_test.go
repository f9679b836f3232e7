// internal/api/server_test.go
package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mkarlsen/pulse/internal/analytics"
	"github.com/mkarlsen/pulse/internal/metrics"
)

func newTestServer(cfg Config, deps Deps) *Server {
	if deps.PeriodsPerYear == 0 {
		deps.PeriodsPerYear = 252
	}
	return NewServer(cfg, deps, zap.NewNop())
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(Config{Host: "localhost", Port: 0}, Deps{
		Engine: analytics.NewEngine(zap.NewNop()),
	})

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestServer_Summary(t *testing.T) {
	srv := newTestServer(Config{Host: "localhost", Port: 0}, Deps{
		Engine: analytics.NewEngine(zap.NewNop()),
	})

	body := `{"equity": [100, 120, 90, 130]}`
	req := httptest.NewRequest("POST", "/api/summary", strings.NewReader(body))
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestServer_Summary_WrongMethod(t *testing.T) {
	srv := newTestServer(Config{Host: "localhost", Port: 0}, Deps{
		Engine: analytics.NewEngine(zap.NewNop()),
	})

	req := httptest.NewRequest("GET", "/api/summary", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestServer_APIAuth_Required(t *testing.T) {
	srv := newTestServer(Config{Host: "localhost", Port: 0, APIKey: "test-key"}, Deps{
		Engine: analytics.NewEngine(zap.NewNop()),
	})

	// Without API key
	req := httptest.NewRequest("POST", "/api/summary", strings.NewReader(`{"equity":[100,110]}`))
	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without key, got %d", w.Code)
	}

	// Health stays open
	req = httptest.NewRequest("GET", "/api/health", nil)
	w = httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for health without key, got %d", w.Code)
	}
}

func TestServer_APIAuth_ValidKey(t *testing.T) {
	srv := newTestServer(Config{Host: "localhost", Port: 0, APIKey: "test-key"}, Deps{
		Engine: analytics.NewEngine(zap.NewNop()),
	})

	req := httptest.NewRequest("POST", "/api/summary", strings.NewReader(`{"equity":[100,110]}`))
	req.Header.Set("X-API-Key", "test-key")
	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with key, got %d", w.Code)
	}
}

func TestServer_MetricsEndpoint(t *testing.T) {
	srv := newTestServer(Config{Host: "localhost", Port: 0}, Deps{
		Engine:   analytics.NewEngine(zap.NewNop()),
		Registry: metrics.NewRegistry(),
	})

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected runtime metrics in exposition")
	}
}
