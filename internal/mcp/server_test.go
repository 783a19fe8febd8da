package mcp

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kfreiman/docloader/internal/loader"
	"github.com/kfreiman/docloader/internal/parser"
	"github.com/kfreiman/docloader/internal/storage"
)

func TestNewServerWithDisk(t *testing.T) {
	t.Run("registers default patterns", func(t *testing.T) {
		s := newTestServer(t, nil)
		assert.Equal(t, []string{"**/*.md", "**/*.txt", "**/*.pdf", "**/*.html", "**/*.htm"}, s.loader.Patterns())
		assert.Equal(t, loader.DefaultMaxConcurrency, s.loader.MaxConcurrency())
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		cfg := DefaultConfig().WithPatterns("**/*.doc=word")
		_, err := NewServerWithDisk(cfg, storage.NewMemMapDisk(), discardLogger)
		var unknown *parser.UnknownFormatError
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("rejects invalid concurrency", func(t *testing.T) {
		cfg := DefaultConfig().WithMaxConcurrency(0)
		_, err := NewServerWithDisk(cfg, storage.NewMemMapDisk(), discardLogger)
		var configErr *loader.ConfigError
		assert.ErrorAs(t, err, &configErr)
	})

	t.Run("applies retry policy", func(t *testing.T) {
		cfg := DefaultConfig().WithRetryPolicy(fastRetry)
		s, err := NewServerWithDisk(cfg, storage.NewMemMapDisk(), discardLogger)
		require.NoError(t, err)
		assert.Equal(t, fastRetry, s.retry)
	})

	t.Run("rejects unknown backoff", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RetryBackoff = "random"
		_, err := NewServerWithDisk(cfg, storage.NewMemMapDisk(), discardLogger)
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		config Config
	}{
		{"zero concurrency", DefaultConfig().WithMaxConcurrency(0)},
		{"negative concurrency", DefaultConfig().WithMaxConcurrency(-1)},
		{"zero attempts", DefaultConfig().WithRetryPolicy(RetryPolicy{Backoff: BackoffFixed})},
		{"negative delay", DefaultConfig().WithRetryPolicy(RetryPolicy{Attempts: 1, Backoff: BackoffFixed, BaseDelay: -time.Second})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.config.Validate())
		})
	}
}

func TestServer_Handler(t *testing.T) {
	s := newTestServer(t, nil)
	handler := s.Handler()

	t.Run("liveness", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/health/live", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"healthy"`)
		assert.Contains(t, w.Body.String(), `"service":"docloader-mcp"`)
		assert.Contains(t, w.Body.String(), `"timestamp"`)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	})

	t.Run("readiness", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/health/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"storage":"accessible"`)
	})

	t.Run("index", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "docloader MCP Server")
	})

	t.Run("unknown route", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/nope", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_ReadinessHandler_StorageInaccessible(t *testing.T) {
	disk := storage.NewAferoDisk(afero.NewMemMapFs(), "/missing/root")
	s, err := NewServerWithDisk(DefaultConfig(), disk, discardLogger)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	s.ReadinessHandler(w, httptest.NewRequest("GET", "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"unhealthy"`)
	assert.Contains(t, w.Body.String(), `"storage":"inaccessible"`)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("DOCLOADER_ROOT", "/srv/docs")
	t.Setenv("DOCLOADER_MAX_CONCURRENCY", "3")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/srv/docs", cfg.Root)
	assert.Equal(t, 3, cfg.MaxConcurrency)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, parser.DefaultPatterns, cfg.Patterns)

	policy, err := cfg.RetryPolicy()
	require.NoError(t, err)
	assert.Equal(t, DefaultRetryPolicy, policy)
}

func TestLoadConfig_RetryPolicy(t *testing.T) {
	t.Setenv("DOCLOADER_RETRY_ATTEMPTS", "5")
	t.Setenv("DOCLOADER_RETRY_BACKOFF", "linear")
	t.Setenv("DOCLOADER_RETRY_BASE_DELAY", "20ms")
	t.Setenv("DOCLOADER_RETRY_MAX_DELAY", "1s")
	t.Setenv("DOCLOADER_RETRY_JITTER", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	policy, err := cfg.RetryPolicy()
	require.NoError(t, err)
	assert.Equal(t, RetryPolicy{
		Attempts:  5,
		Backoff:   BackoffLinear,
		BaseDelay: 20 * time.Millisecond,
		MaxDelay:  time.Second,
	}, policy)
}
