package iiko

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// ContentType describes the body encoding of a request
type ContentType string

const (
	ContentTypeNone ContentType = ""
	ContentTypeXML  ContentType = "application/xml"
	ContentTypeJSON ContentType = "application/json"
	ContentTypeForm ContentType = "application/x-www-form-urlencoded"
)

// Config holds the connection settings of a Client.
// Password is the already hashed credential, see HashPassword.
type Config struct {
	BaseURL  string
	Login    string
	Password string
	Timeout  time.Duration
}

// Client talks to a single iiko server.
//
// The server revokes license slots when requests overlap on one session, so
// a Client runs at most one HTTP exchange at a time, including the implicit
// login that precedes the first call. Share one *Client between goroutines;
// separate Clients are fully independent.
type Client struct {
	config     Config
	httpClient Doer
	userAgent  string
	logger     zerolog.Logger
	metrics    *Metrics

	// permit serializes every exchange with the server
	permit *semaphore.Weighted

	sessionMu sync.RWMutex
	session   string
}

// NewClient creates a new iiko client. No request is made until the first call.
func NewClient(cfg Config, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, &Error{Kind: KindConfiguration, Message: "iiko base URL is required"}
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, &Error{Kind: KindConfiguration, Message: "invalid iiko base URL", Err: err}
	}
	if cfg.Login == "" {
		return nil, &Error{Kind: KindConfiguration, Message: "iiko login is required"}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	options := clientOptions{timeout: cfg.Timeout}
	for _, opt := range opts {
		opt(&options)
	}
	if options.timeout <= 0 {
		options.timeout = DefaultTimeout
	}
	cfg.Timeout = options.timeout

	httpClient := options.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.timeout}
	}

	return &Client{
		config:     cfg,
		httpClient: httpClient,
		userAgent:  options.userAgent,
		logger:     logger,
		metrics:    options.metrics,
		permit:     semaphore.NewWeighted(1),
	}, nil
}

// BaseURL returns the server address the client was created with
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Get performs an authenticated GET request and returns the raw response body
func (c *Client) Get(ctx context.Context, path string, query Params) (string, error) {
	return c.do(ctx, http.MethodGet, path, query, "", ContentTypeNone, isSuccess)
}

// Post performs an authenticated POST request
func (c *Client) Post(ctx context.Context, path, body string, contentType ContentType, query Params) (string, error) {
	return c.do(ctx, http.MethodPost, path, query, body, contentType, isWriteSuccess)
}

// PostForm performs an authenticated POST with a form-encoded body
func (c *Client) PostForm(ctx context.Context, path string, form Params) (string, error) {
	return c.Post(ctx, path, form.Encode(), ContentTypeForm, nil)
}

// Put performs an authenticated PUT request
func (c *Client) Put(ctx context.Context, path, body string, contentType ContentType, query Params) (string, error) {
	return c.do(ctx, http.MethodPut, path, query, body, contentType, isWriteSuccess)
}

// Delete performs an authenticated DELETE request
func (c *Client) Delete(ctx context.Context, path string, query Params) (string, error) {
	return c.do(ctx, http.MethodDelete, path, query, "", ContentTypeNone, isSuccess)
}

// Authenticate returns the cached session token, logging in first if there is none
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	release, err := c.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	return c.authenticateLocked(ctx)
}

// Logout ends the server session and frees its license slot.
//
// The cached token is cleared on success, and also when the server answers
// 401 or 403 since the token is then known to be dead. Any other failure
// leaves the token in place so the logout can be retried.
func (c *Client) Logout(ctx context.Context) (string, error) {
	release, err := c.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	token, err := c.authenticateLocked(ctx)
	if err != nil {
		return "", err
	}

	form := NewParams().Add("key", token)
	status, body, err := c.send(ctx, http.MethodPost, "logout", nil, form.Encode(), ContentTypeForm)
	if err != nil {
		return "", err
	}

	if !isSuccess(status) {
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			c.clearSession()
		}
		return "", statusError(status, body)
	}

	c.clearSession()
	c.logger.Debug().Msg("Logged out of iiko server")

	return strings.TrimSpace(body), nil
}

// InvalidateSession drops the cached token without contacting the server
func (c *Client) InvalidateSession() {
	c.clearSession()
}

// HasSession reports whether a session token is cached
func (c *Client) HasSession() bool {
	c.sessionMu.RLock()
	defer c.sessionMu.RUnlock()
	return c.session != ""
}

// do runs one business call under the permit
func (c *Client) do(ctx context.Context, method, path string, query Params, body string, contentType ContentType, accept func(int) bool) (string, error) {
	release, err := c.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	token, err := c.authenticateLocked(ctx)
	if err != nil {
		return "", err
	}

	params := make(Params, 0, len(query)+1)
	params = append(params, Param{Key: "key", Value: token})
	params = append(params, query...)

	status, respBody, err := c.send(ctx, method, path, params, body, contentType)
	if err != nil {
		return "", err
	}

	if !accept(status) {
		return "", statusError(status, respBody)
	}

	return respBody, nil
}

// authenticateLocked must only be called while holding the permit
func (c *Client) authenticateLocked(ctx context.Context) (string, error) {
	c.sessionMu.RLock()
	token := c.session
	c.sessionMu.RUnlock()
	if token != "" {
		return token, nil
	}

	form := NewParams().
		Add("login", c.config.Login).
		Add("pass", c.config.Password)

	status, body, err := c.send(ctx, http.MethodPost, "auth", nil, form.Encode(), ContentTypeForm)
	if err != nil {
		c.metrics.observeAuthentication(false)
		return "", err
	}

	if !isSuccess(status) {
		c.metrics.observeAuthentication(false)
		c.logger.Warn().Int("status", status).Str("login", c.config.Login).Msg("iiko authentication rejected")
		return "", &Error{Kind: KindAuthentication, StatusCode: status, Message: strings.TrimSpace(body)}
	}

	token = strings.TrimSpace(body)
	if token == "" {
		c.metrics.observeAuthentication(false)
		return "", &Error{Kind: KindAuthentication, StatusCode: status, Message: "empty token in response"}
	}

	c.sessionMu.Lock()
	c.session = token
	c.sessionMu.Unlock()

	c.metrics.observeAuthentication(true)
	c.logger.Debug().Str("login", c.config.Login).Msg("Authenticated with iiko server")

	return token, nil
}

// send performs a single HTTP exchange. It does not touch the permit.
func (c *Client) send(ctx context.Context, method, path string, query Params, body string, contentType ContentType) (int, string, error) {
	endpoint := c.config.BaseURL + "/" + strings.TrimLeft(path, "/")
	requestURL := endpoint
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != "" || contentType != ContentTypeNone {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return 0, "", &Error{Kind: KindTransport, Message: "failed to create request", Err: err}
	}
	if contentType != ContentTypeNone {
		req.Header.Set("Content-Type", string(contentType))
	}
	if contentType == ContentTypeXML || contentType == ContentTypeJSON {
		req.Header.Set("Accept", string(contentType))
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observeRequest(method, 0, time.Since(start))
		// the query string carries the session key
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = endpoint
		}
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("iiko request failed")
		return 0, "", transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.observeRequest(method, 0, time.Since(start))
		return 0, "", &Error{Kind: KindTransport, Message: "failed to read response body", Err: err}
	}

	elapsed := time.Since(start)
	c.metrics.observeRequest(method, resp.StatusCode, elapsed)
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("iiko request completed")

	return resp.StatusCode, string(data), nil
}

func (c *Client) acquire(ctx context.Context) (func(), error) {
	start := time.Now()
	if err := c.permit.Acquire(ctx, 1); err != nil {
		return nil, &Error{Kind: KindTransport, Message: fmt.Sprintf("waiting for request permit: %v", err), Err: err}
	}
	c.metrics.observePermitWait(time.Since(start))

	return func() { c.permit.Release(1) }, nil
}

func (c *Client) clearSession() {
	c.sessionMu.Lock()
	c.session = ""
	c.sessionMu.Unlock()
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// isWriteSuccess is used for POST and PUT, where 200 means updated and 201 created
func isWriteSuccess(status int) bool {
	return status == http.StatusOK || status == http.StatusCreated || isSuccess(status)
}
