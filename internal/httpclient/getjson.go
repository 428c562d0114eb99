package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// retryDelay is the fixed wait before the single retry of a failed GET.
const retryDelay = 10 * time.Second

// maxAttempts bounds the retry loop; transient failures get exactly one retry.
const maxAttempts = 2

// GetJSON performs an HTTP GET for rawURL with the supplied headers and
// decodes the JSON response body into v. A failed attempt (transport error,
// non-2xx status or undecodable body) is retried once after a fixed delay;
// the second failure is returned to the caller.
func GetJSON(ctx context.Context, client *http.Client, rawURL string, header http.Header, v any) error {
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			log.Debug().
				Err(lastErr).
				Dur("retry_in", retryDelay).
				Msg("GET failed, retrying")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		if lastErr = getJSONOnce(ctx, client, rawURL, header, v); lastErr == nil {
			return nil
		}
	}

	return lastErr
}

func getJSONOnce(ctx context.Context, client *http.Client, rawURL string, header http.Header, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	if v == nil {
		return nil
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}
