// Package lpp is a typed client for the LPP (Ljubljana public transport)
// open-data API.
//
// Every endpoint returns an envelope {success, data}; a false success flag,
// a non-2xx status and a schema mismatch are surfaced as distinct error
// kinds so callers can classify them for retrying. Responses are validated
// against the expected shape before being handed out. Requests are paced
// client-side with a rate limiter, since the remote API rate-limits
// aggressive polling with 429 responses.
package lpp
