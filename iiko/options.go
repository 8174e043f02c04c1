package iiko

import (
	"net/http"
	"time"
)

// DefaultTimeout bounds every HTTP exchange when Config.Timeout is zero
const DefaultTimeout = 30 * time.Second

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout    time.Duration
	httpClient Doer
	userAgent  string
	metrics    *Metrics
}

// WithTimeout overrides Config.Timeout for the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHTTPClient sets the transport used for every request.
// The timeout options are ignored when a custom transport is supplied.
func WithHTTPClient(doer Doer) Option {
	return func(o *clientOptions) {
		o.httpClient = doer
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(o *clientOptions) {
		o.metrics = m
	}
}
