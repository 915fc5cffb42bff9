// Package httputil provides the HTTP plumbing shared by remote clients.
//
// # Overview
//
//   - [Client]: JSON-over-HTTP requests with default headers and retry
//   - [Retry]: Automatic retry with exponential backoff
//
// # Retry
//
// [Retry] re-runs an operation only when it fails with a [RetryableError].
// [Client] wraps transient failures that way:
//
//   - Network errors
//   - 5xx server errors
//
// Everything else (4xx, decode failures) returns at once. The delay doubles
// after every failed attempt:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return callService(ctx)
//	})
//
// # Errors
//
// [Client] reports failures as structured errors from pkg/errors, so
// callers can branch on codes such as RATE_LIMITED or UNAUTHORIZED
// without inspecting status codes.
package httputil
