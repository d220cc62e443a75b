package lpp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/time/rate"
)

// ClientOptions configures a Client.
type ClientOptions struct {
	// BaseURL is the API root, e.g. "https://data.lpp.si/api/".
	BaseURL string

	// UserAgent is sent with every request. The open-data API asks
	// consumers to identify themselves.
	UserAgent string

	// RequestsPerSecond paces outgoing requests client-side. Zero selects
	// the default of 2.
	RequestsPerSecond float64

	// Timeout bounds a single HTTP request. Zero selects 30 seconds.
	Timeout time.Duration
}

// Client fetches and decodes LPP API responses. It is safe for sequential
// use by one snapshot cycle at a time; requests are paced by a shared rate
// limiter.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	userAgent  string
	limiter    *rate.Limiter
	validate   *validator.Validate
}

// NewClient builds a Client from options.
func NewClient(opts ClientOptions) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base API URL %q: %w", opts.BaseURL, err)
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Transport: gzhttp.Transport(http.DefaultTransport),
			Timeout:   timeout,
		},
		baseURL:   base,
		userAgent: opts.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
		validate:  validator.New(),
	}, nil
}

// getJSON performs one GET against endpoint with the given query, decodes
// the body into out and validates it. Errors are classified: transport
// failures, non-2xx statuses (with the Retry-After hint on 429) and decode
// or validation failures each get their own kind.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL.JoinPath(endpoint)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", endpoint, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{URL: u.Redacted(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{
			URL:        u.Redacted(),
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &SchemaError{Endpoint: endpoint, Err: err}
	}

	if err := c.validate.Struct(out); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return fmt.Errorf("validating %s response: %w", endpoint, err)
		}
		return &SchemaError{Endpoint: endpoint, Reason: "response validation failed", Err: err}
	}

	return nil
}

// parseRetryAfter reads a delay-seconds Retry-After header. The HTTP-date
// form is not used by this API and is ignored.
func parseRetryAfter(header http.Header) time.Duration {
	value := header.Get("Retry-After")
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
