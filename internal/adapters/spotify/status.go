package spotify

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
)

const maxErrorBodyBytes = 1 << 10

// StatusError reports a non-2xx reply. RetryAfter is parsed for the caller's
// information only; requests are never retried.
type StatusError struct {
	Endpoint   string
	StatusCode int
	RetryAfter time.Duration
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("spotify adapter: %s status %d", e.Endpoint, e.StatusCode)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is makes every StatusError match domain.ErrFetchFailed.
func (e *StatusError) Is(target error) bool {
	return target == domain.ErrFetchFailed
}

// do executes req exactly once. Transport failures and non-2xx replies come
// back as errors matching domain.ErrFetchFailed; on success the caller owns
// the response body.
func do(client *http.Client, endpoint string, req *http.Request) (*http.Response, error) {
	// #nosec G107 -- URL constructed from the configured Spotify API baseURL
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: %s request: %w: %w", endpoint, domain.ErrFetchFailed, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp),
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return resp, nil
}

func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(retryAfter); err == nil {
		until := time.Until(when)
		if until > 0 {
			return until
		}
	}

	return 0
}
