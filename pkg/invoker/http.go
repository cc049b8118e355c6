// Package invoker implements the remote callable contract over HTTP: every
// integration operation is a POST of a JSON body to a named callable under a
// common base URL.
package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

var (
	// ErrCallableFailed is returned when the callable responded with a
	// structured error payload.
	ErrCallableFailed = errors.New("remote callable returned an error")

	// ErrServerError is returned for 5xx responses that exhausted retries.
	ErrServerError = errors.New("server error from remote callable")
)

// RetryConfig controls how many times a failed call is retried and the pause
// between attempts.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// HTTPInvoker posts JSON bodies to named callables. Callable names map to
// URL paths under the base URL.
type HTTPInvoker struct {
	baseURL string
	client  *http.Client
	retry   RetryConfig
	logger  *slog.Logger
}

// NewHTTPInvoker creates an invoker for a callable endpoint.
func NewHTTPInvoker(baseURL string, retry RetryConfig, logger *slog.Logger) *HTTPInvoker {
	if retry.Attempts < 1 {
		retry.Attempts = 1
	}

	return &HTTPInvoker{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
		retry:   retry,
		logger:  logger.With("module", "http_invoker"),
	}
}

// Invoke posts the payload to the named callable, retrying transport
// failures and 5xx responses. A 2xx response with {"error": ...} in the body
// is surfaced as ErrCallableFailed carrying the remote message.
func (h *HTTPInvoker) Invoke(ctx context.Context, callable string, payload map[string]any) (map[string]any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload for %s: %w", callable, err)
	}

	var (
		lastErr error
		resp    *http.Response
	)

	for attempt := 1; attempt <= h.retry.Attempts; attempt++ {
		if attempt > 1 {
			h.logger.InfoContext(ctx, "Retrying remote callable",
				"callable", callable, "attempt", attempt, "max_attempts", h.retry.Attempts)
			time.Sleep(h.retry.Delay)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			h.baseURL+"/"+callable, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request for %s: %w", callable, err)
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err = h.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("call to %s failed: %w", callable, err)

			continue
		}

		if resp.StatusCode >= 500 && attempt < h.retry.Attempts {
			if closeErr := resp.Body.Close(); closeErr != nil {
				h.logger.ErrorContext(ctx, "failed to close response body", "error", closeErr)
			}

			lastErr = fmt.Errorf("%w: status %d from %s", ErrServerError, resp.StatusCode, callable)

			continue
		}

		break
	}

	if resp == nil {
		return nil, fmt.Errorf("all attempts against %s failed: %w", callable, lastErr)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			h.logger.ErrorContext(ctx, "failed to close response body", "error", closeErr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", callable, err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: %s returned status %d: %s",
			ErrCallableFailed, callable, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	result := make(map[string]any)

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("invalid JSON response from %s: %w", callable, err)
		}
	}

	if remoteErr, ok := result["error"].(string); ok && remoteErr != "" {
		return nil, fmt.Errorf("%w: %s: %s", ErrCallableFailed, callable, remoteErr)
	}

	return result, nil
}
