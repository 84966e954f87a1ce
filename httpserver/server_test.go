package httpserver

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/share-engine/api"
	"github.com/ruteri/share-engine/api/sharehandler"
	"github.com/ruteri/share-engine/engine"
	"github.com/ruteri/share-engine/metrics"
	"github.com/ruteri/share-engine/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})
}

func testConfig() *api.HTTPServerConfig {
	return &api.HTTPServerConfig{
		ListenAddr: "127.0.0.1:0",
		Log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(w.Result().Body)
	require.NoError(t, err)
	return w.Code, string(body)
}

func TestServer_Lifecycle(t *testing.T) {
	srv, err := New(testConfig(), pingHandler{}, nil)
	require.NoError(t, err)
	h := srv.Handler()

	code, body := get(t, h, "/api/ping")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pong", body)

	code, body = get(t, h, "/livez")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"alive"}`, body)

	code, _ = get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)

	code, body = get(t, h, "/drain")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"draining"}`, body)

	code, _ = get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code, "drained server is not ready")

	_, body = get(t, h, "/drain")
	assert.JSONEq(t, `{"status":"already draining"}`, body)

	_, body = get(t, h, "/undrain")
	assert.JSONEq(t, `{"status":"ready"}`, body)
	_, body = get(t, h, "/undrain")
	assert.JSONEq(t, `{"status":"already ready"}`, body)

	code, _ = get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)
}

func TestServer_Pprof(t *testing.T) {
	cfg := testConfig()
	srv, err := New(cfg, pingHandler{}, nil)
	require.NoError(t, err)
	code, _ := get(t, srv.Handler(), "/debug/pprof/")
	assert.Equal(t, http.StatusNotFound, code)

	cfg.EnablePprof = true
	srv, err = New(cfg, pingHandler{}, nil)
	require.NoError(t, err)
	code, _ = get(t, srv.Handler(), "/debug/pprof/")
	assert.Equal(t, http.StatusOK, code)
}

func TestServer_MaxRequestBodySize(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRequestBodySize = 64
	eng, err := engine.New(engine.Config{Log: cfg.Log})
	require.NoError(t, err)

	srv, err := New(cfg, sharehandler.NewHandler(eng, nil, cfg.Log), nil)
	require.NoError(t, err)

	post := func(body string) int {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/shares/encode", strings.NewReader(body)))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, post(`{"value":42,"fieldName":"age"}`))
	assert.Equal(t, http.StatusBadRequest, post(`{"value":"`+strings.Repeat("x", 128)+`","fieldName":"name"}`))
}

func TestServer_ShareHandlerWithMetrics(t *testing.T) {
	cfg := testConfig()
	metricsSrv, err := metrics.New("test", "")
	require.NoError(t, err)

	eng, err := engine.New(engine.Config{Metrics: metricsSrv.Engine(), Log: cfg.Log})
	require.NoError(t, err)

	srv, err := New(cfg, sharehandler.NewHandler(eng, storage.NewMemoryBackend(cfg.Log), cfg.Log), metricsSrv)
	require.NoError(t, err)
	assert.Same(t, metricsSrv, srv.Metrics())

	code, _ := get(t, srv.Handler(), "/api/shares/0b5f3c4e-8d1a-4c6e-9f2b-7a3d5e1c9b80")
	assert.Equal(t, http.StatusNotFound, code)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/shares/and",
		strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	code, body := get(t, metricsSrv.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `test_engine_operations_total{op="and"} 1`)
	assert.Contains(t, body, `test_engine_errors_total{kind="invalid_argument",op="and"} 1`)
}
