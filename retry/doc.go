// Package retry turns an unreliable operation into a bounded, policy-driven
// retry sequence.
//
// The caller supplies two function values: an operation that produces a raw
// result, and a classifier that turns one raw result into a verdict:
// success, permanent failure, or transient failure with an optional explicit
// retry-after hint. Transient failures are retried with exponential backoff
// until the elapsed-time budget is spent; attempts are never bounded by
// count. Waits between attempts select on the context, so cancellation
// interrupts a sleeping retry.
package retry
