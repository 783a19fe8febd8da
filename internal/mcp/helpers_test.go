package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/kfreiman/docloader/internal/storage"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var fastRetry = RetryPolicy{
	Attempts:  3,
	Backoff:   BackoffFixed,
	BaseDelay: time.Millisecond,
	MaxDelay:  5 * time.Millisecond,
}

func memDisk(t *testing.T, files map[string]string) *storage.AferoDisk {
	t.Helper()
	d := storage.NewMemMapDisk()
	for name, content := range files {
		require.NoError(t, d.Fs().MkdirAll(filepath.Dir(name), 0755))
		require.NoError(t, afero.WriteFile(d.Fs(), name, []byte(content), 0644))
	}
	return d
}

func newTestServer(t *testing.T, files map[string]string) *Server {
	t.Helper()
	s, err := NewServerWithDisk(DefaultConfig(), memDisk(t, files), discardLogger)
	require.NoError(t, err)
	return s
}

func callRequest(t *testing.T, args map[string]any) *mcp.CallToolRequest {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Arguments: raw,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

var errTransient = errors.New("i/o timeout")

// flakyDisk fails the first failures root lookups with a transient error
type flakyDisk struct {
	storage.Disk
	failures int32
	calls    atomic.Int32
}

func (d *flakyDisk) Exists(ctx context.Context, path string) (bool, error) {
	if d.calls.Add(1) <= d.failures {
		return false, &storage.StorageError{Operation: "stat", Path: path, Err: errTransient}
	}
	return d.Disk.Exists(ctx, path)
}
