// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fieldreport/sentinel

package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/fieldreport/sentinel/internal/errkind"
)

// fetchURL performs an HTTP GET with exponential backoff retry (§4.C):
// baseDelay·2^attempt, up to retryAttempts attempts, only on network
// errors and 5xx responses; a 4xx response or a DNS not-found error is
// terminal. Grounded on
// internal/sync/api_helpers.go's executeRequest for the request/response
// shape and internal/wal/retry.go's calculateBackoff for the delay
// formula.
func fetchURL(ctx context.Context, client *http.Client, url string, retryAttempts int, baseDelay time.Duration) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= retryAttempts; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(baseDelay, attempt)
			select {
			case <-ctx.Done():
				return nil, errkind.New(errkind.Cancellation, "collector", ctx.Err())
			case <-time.After(delay):
			}
		}

		body, err := doGet(ctx, client, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !errkind.Retryable(errkind.KindOf(err)) {
			return nil, err
		}
	}

	return nil, lastErr
}

func doGet(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, errkind.New(errkind.PermanentFetch, "collector", err)
	}
	req.Header.Set("User-Agent", "sentinel-conflict-event-pipeline/1.0")

	resp, err := client.Do(req)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, errkind.New(errkind.PermanentFetch, "collector", err)
		}
		return nil, errkind.New(errkind.TransientFetch, "collector", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errkind.New(errkind.TransientFetch, "collector", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode >= 500:
		return nil, errkind.New(errkind.TransientFetch, "collector", fmt.Errorf("status %d", resp.StatusCode))
	default:
		return nil, errkind.New(errkind.PermanentFetch, "collector", fmt.Errorf("status %d", resp.StatusCode))
	}
}

// maxBackoff caps runaway exponential growth the same way
// internal/wal/retry.go's calculateBackoff does.
const maxBackoff = 5 * time.Minute

// backoffDelay mirrors internal/wal/retry.go's calculateBackoff formula
// (baseDelay · 2^attempt, capped).
func backoffDelay(baseDelay time.Duration, attempt int) time.Duration {
	if attempt > 50 {
		return maxBackoff
	}
	multiplier := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(baseDelay) * multiplier)
	if delay < 0 || delay > maxBackoff {
		return maxBackoff
	}
	return delay
}
