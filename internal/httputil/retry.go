// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP primitives shared by the backends:
// bounded retries with backoff, and small GET helpers for text, JSON, and
// binary payloads.
package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/pdiddy/scipaper/internal/logging"
)

// RetryBaseDelay controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 500 * time.Millisecond

const defaultMaxRetries = 1

// retryable reports whether a response status warrants another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// DoWithRetry executes an HTTP request, retrying on transport failure and
// on HTTP 429/5xx with jittered exponential backoff. The delay starts at
// RetryBaseDelay and doubles each attempt, with up to 50% random jitter
// added. Each retry logs a warning. When maxRetries is <= 0 the default
// (1) is used. If the context is cancelled during a backoff wait the
// function returns ctx.Err(). After exhausting retries the last transport
// error is returned, or the last response when the server kept answering.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err == nil && !retryable(resp.StatusCode) {
			return resp, nil
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("HTTP %d from %s", resp.StatusCode, req.URL)
			if attempt >= maxRetries {
				// Exhausted retries with the server still answering:
				// hand the response back so the caller can inspect it.
				return resp, nil
			}
			// Drain and close the body before retrying.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if attempt >= maxRetries {
			return nil, lastErr
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		backoff += time.Duration(rand.Int63n(int64(backoff)/2 + 1))
		logging.L().Warn("request failed, retrying",
			"url", req.URL.String(), "attempt", attempt+1, "max", maxRetries,
			"backoff", backoff, "err", lastErr)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// Get fetches url and returns the response body. userAgent, when
// non-empty, is sent as the User-Agent header.
func Get(ctx context.Context, client *http.Client, url, userAgent string, maxRetries int) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := DoWithRetry(ctx, client, req, maxRetries)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// GetJSON fetches url and decodes the response body into out.
func GetJSON(ctx context.Context, client *http.Client, url, userAgent string, maxRetries int, out any) error {
	body, err := Get(ctx, client, url, userAgent, maxRetries)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response from %s: %w", url, err)
	}
	return nil
}
