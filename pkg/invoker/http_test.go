package invoker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInvoke_Success(t *testing.T) {
	var (
		gotPath   string
		gotBody   map[string]any
		gotHeader string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeader = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "12345", "status": "created"}`))
	}))
	defer server.Close()

	inv := NewHTTPInvoker(server.URL, RetryConfig{}, testLogger())

	result, err := inv.Invoke(context.Background(), "hubspot-create-object",
		map[string]any{"object_type": "contact"})

	require.NoError(t, err)
	assert.Equal(t, "12345", result["id"])
	assert.Equal(t, "/hubspot-create-object", gotPath)
	assert.Equal(t, "application/json", gotHeader)
	assert.Equal(t, "contact", gotBody["object_type"])
}

func TestInvoke_TrimsTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ping", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	inv := NewHTTPInvoker(server.URL+"/", RetryConfig{}, testLogger())

	_, err := inv.Invoke(context.Background(), "ping", nil)
	require.NoError(t, err)
}

func TestInvoke_RemoteErrorPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": "contact already exists"}`))
	}))
	defer server.Close()

	inv := NewHTTPInvoker(server.URL, RetryConfig{}, testLogger())

	_, err := inv.Invoke(context.Background(), "hubspot-create-object", nil)
	require.ErrorIs(t, err, ErrCallableFailed)
	assert.Contains(t, err.Error(), "contact already exists")
}

func TestInvoke_ClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++

		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`missing object_type`))
	}))
	defer server.Close()

	inv := NewHTTPInvoker(server.URL, RetryConfig{Attempts: 3}, testLogger())

	_, err := inv.Invoke(context.Background(), "hubspot-create-object", nil)
	require.ErrorIs(t, err, ErrCallableFailed)
	assert.Contains(t, err.Error(), "status 422")
	assert.Equal(t, 1, calls)
}

func TestInvoke_ServerErrorRetriesUntilSuccess(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)

			return
		}

		_, _ = w.Write([]byte(`{"status": "ok"}`))
	}))
	defer server.Close()

	inv := NewHTTPInvoker(server.URL, RetryConfig{Attempts: 3}, testLogger())

	result, err := inv.Invoke(context.Background(), "flaky", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, 3, calls)
}

func TestInvoke_ServerErrorExhaustsRetries(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++

		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	inv := NewHTTPInvoker(server.URL, RetryConfig{Attempts: 2}, testLogger())

	_, err := inv.Invoke(context.Background(), "down", nil)
	require.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestInvoke_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	inv := NewHTTPInvoker(server.URL, RetryConfig{Attempts: 2}, testLogger())

	_, err := inv.Invoke(context.Background(), "gone", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all attempts")
}

func TestInvoke_InvalidJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	inv := NewHTTPInvoker(server.URL, RetryConfig{}, testLogger())

	_, err := inv.Invoke(context.Background(), "broken", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestInvoke_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	inv := NewHTTPInvoker(server.URL, RetryConfig{}, testLogger())

	result, err := inv.Invoke(context.Background(), "fire-and-forget", nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}
