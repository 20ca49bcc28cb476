package analyze

import (
	"fmt"
	"time"

	"github.com/relicworks/itemgate/pkg/ratelimit"
)

// ClientQuotaError signals that the caller exhausted its hourly window.
type ClientQuotaError struct {
	Decision   ratelimit.Decision
	RetryAfter int
}

func (e *ClientQuotaError) Error() string {
	return fmt.Sprintf("client rate limit exceeded, retry after %ds", e.RetryAfter)
}

// DailyQuotaError signals that the shared daily budget is spent.
type DailyQuotaError struct {
	Decision ratelimit.DailyDecision
}

func (e *DailyQuotaError) Error() string {
	return fmt.Sprintf("daily usage limit reached (%d/%d)", e.Decision.Used, e.Decision.Limit)
}

// ValidationError signals malformed caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConfigurationError signals a missing operator-side prerequisite, such as the
// model credential.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// UpstreamError wraps a failed model call together with when it failed.
type UpstreamError struct {
	Err       error
	Timestamp time.Time
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("model call failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
