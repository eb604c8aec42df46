package github

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// throttleThreshold is the remaining request count below which we throttle.
const throttleThreshold = 100

// RateLimitInfo holds parsed rate limit information from GitHub API response headers.
type RateLimitInfo struct {
	Remaining int
	Reset     time.Time
	Observed  time.Time
}

// ParseRateLimit extracts rate limit information from a GitHub API HTTP response.
// Returns nil if the relevant headers are not present.
func ParseRateLimit(resp *http.Response) *RateLimitInfo {
	if resp == nil {
		return nil
	}

	remainingStr := resp.Header.Get("X-RateLimit-Remaining")
	resetStr := resp.Header.Get("X-RateLimit-Reset")

	if remainingStr == "" && resetStr == "" {
		return nil
	}

	info := &RateLimitInfo{
		Observed: time.Now(),
	}

	if remaining, err := strconv.Atoi(remainingStr); err == nil {
		info.Remaining = remaining
	}
	if resetUnix, err := strconv.ParseInt(resetStr, 10, 64); err == nil {
		info.Reset = time.Unix(resetUnix, 0)
	}

	return info
}

// ShouldThrottle returns true when the remaining rate limit is below the
// safety threshold, indicating we should slow down requests.
func (r *RateLimitInfo) ShouldThrottle() bool {
	if r == nil {
		return false
	}
	return r.Remaining < throttleThreshold
}

// WaitDuration returns how long to wait before the rate limit resets.
// Returns zero if the reset time is in the past.
func (r *RateLimitInfo) WaitDuration() time.Duration {
	if r == nil {
		return 0
	}
	d := time.Until(r.Reset)
	if d < 0 {
		return 0
	}
	return d
}

// RetryDelay parses a 403 or 429 response to determine how long to wait
// before retrying, preferring the reset headers over Retry-After.
func RetryDelay(resp *http.Response) (time.Duration, error) {
	if resp == nil {
		return 0, fmt.Errorf("nil response")
	}

	if !IsRateLimited(resp) {
		return 0, fmt.Errorf("not a rate limit error: status %d", resp.StatusCode)
	}

	info := ParseRateLimit(resp)
	if info != nil && !info.Reset.IsZero() {
		if wait := info.WaitDuration(); wait > 0 {
			return wait, nil
		}
	}

	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			return time.Duration(seconds) * time.Second, nil
		}
	}

	// Default fallback: wait 60 seconds
	return 60 * time.Second, nil
}

// IsRateLimited returns true if the response indicates a rate limit error
// (403 or 429).
func IsRateLimited(resp *http.Response) bool {
	return resp != nil && (resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests)
}

// IsServerError returns true if the response has a 5xx status code.
func IsServerError(resp *http.Response) bool {
	return resp != nil && resp.StatusCode >= 500 && resp.StatusCode < 600
}
