package lpp

import (
	"fmt"
	"net/http"
	"time"
)

// TransportError reports a network or IO failure before any HTTP status was
// received.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx HTTP status. RetryAfter carries the parsed
// Retry-After header on rate-limited responses, zero when absent.
type StatusError struct {
	URL        string
	StatusCode int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// RateLimited reports whether the remote answered 429 Too Many Requests.
func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// ClientError reports a 4xx status.
func (e *StatusError) ClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// ServerError reports a 5xx status.
func (e *StatusError) ServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// SchemaError reports a response that did not match the expected shape:
// JSON that fails to decode, a missing field, or an out-of-range value.
// Retrying will not fix a contract mismatch.
type SchemaError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("malformed response from %s (did the schema change?)", e.Endpoint)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ResponseError reports an envelope with success set to false.
type ResponseError struct {
	Endpoint string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s reported an unsuccessful response (success field is false)", e.Endpoint)
}
