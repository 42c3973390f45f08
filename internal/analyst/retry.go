package analyst

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// maxAttempts caps the rate-limit retry loop. The fifth rate-limited
// failure is terminal.
const maxAttempts = 5

// retryState is the outcome of classifying one attempt's error.
type retryState int

const (
	stateSuccess retryState = iota
	stateBackoff
	stateExhausted
	stateNonRetryable
)

// rateLimitMarkers are matched against the lowercased, separator-stripped
// error text and type name. Providers differ in how they phrase throttling
// ("rate limit", "rate_limit", a RateLimitError type), so the haystack is
// condensed before the substring check rather than enumerating spellings.
var rateLimitMarkers = []string{
	"429",
	"ratelimit",
	"quota",
	"toomanyrequests",
}

var markerCondenser = strings.NewReplacer(" ", "", "_", "", "-", "")

// IsRateLimit reports whether err looks like a provider throttle rejection,
// judging by its message or its concrete type name.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	text := markerCondenser.Replace(strings.ToLower(err.Error() + " " + fmt.Sprintf("%T", err)))
	for _, marker := range rateLimitMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// retrier decides, after each attempt, whether to back off and for how
// long. Keeping this separate from the HTTP call makes the retry contract
// testable without real provider errors.
type retrier struct {
	bo backoff.BackOff
}

func newRetrier() *retrier {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Second
	bo.Multiplier = 2
	bo.MaxInterval = 60 * time.Second
	bo.RandomizationFactor = 0 // deterministic 10, 20, 40, 60 schedule
	bo.MaxElapsedTime = 0
	bo.Reset()
	return &retrier{bo: bo}
}

// next classifies the error of the given zero-based attempt and returns the
// resulting state plus the backoff wait when state is stateBackoff. A
// provider-supplied retry hint overrides the exponential schedule, +2s of
// slack.
func (r *retrier) next(attempt int, err error) (retryState, time.Duration) {
	if err == nil {
		return stateSuccess, 0
	}
	if !IsRateLimit(err) {
		return stateNonRetryable, 0
	}
	if attempt >= maxAttempts-1 {
		return stateExhausted, 0
	}

	wait := r.bo.NextBackOff()
	var hinted RetryAfterer
	if errors.As(err, &hinted) {
		if secs, ok := hinted.RetryAfter(); ok {
			wait = time.Duration(secs+2) * time.Second
		}
	}
	return stateBackoff, wait
}
