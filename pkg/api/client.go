package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultAPIPrefix = "/api/v1"

// ErrRequestFailed is matched by every error returned from Client.Do, both
// for transport failures and non-2xx responses.
var ErrRequestFailed = errors.New("api request failed")

// RequestError describes a failed call. StatusCode is 0 when the request
// never got a response. It is kept for logging, callers treat all failures
// alike.
type RequestError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: HTTP error! status: %d", e.Method, e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: request failed", e.Method, e.URL)
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

// Client is the single gateway to the booking service. It carries the
// session identifier for its whole lifetime.
type Client struct {
	baseURL    *url.URL
	apiPrefix  string
	httpClient *http.Client
	sessionID  string
	headers    http.Header
	now        func() time.Time
}

type ClientOption func(*Client) error

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("nil http client")
		}
		c.httpClient = hc
		return nil
	}
}

// WithAPIPrefix sets the path prefix for all endpoints except the health
// check, which lives at the service root.
func WithAPIPrefix(prefix string) ClientOption {
	return func(c *Client) error {
		c.apiPrefix = "/" + strings.Trim(prefix, "/")
		if c.apiPrefix == "/" {
			c.apiPrefix = ""
		}
		return nil
	}
}

// WithSessionID pins the session identifier instead of generating one.
func WithSessionID(id string) ClientOption {
	return func(c *Client) error {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil
		}
		c.sessionID = id
		return nil
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) error {
		c.headers.Set(key, value)
		return nil
	}
}

func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) error {
		if now != nil {
			c.now = now
		}
		return nil
	}
}

func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("empty base URL")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base URL %q", baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("unsupported scheme %q in base URL", u.Scheme)
	}

	c := &Client{
		baseURL:    u,
		apiPrefix:  DefaultAPIPrefix,
		httpClient: http.DefaultClient,
		headers:    http.Header{},
		now:        time.Now,
	}
	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, errors.Wrap(err, "failed to apply client option")
		}
	}
	if c.sessionID == "" {
		c.sessionID = NewSessionID(c.now())
	}
	return c, nil
}

// NewSessionID builds an opaque identifier from a timestamp and a random
// suffix.
func NewSessionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), suffix)
}

func (c *Client) SessionID() string {
	return c.sessionID
}

// endpoint joins the base URL with path. Callers escape path segments.
func (c *Client) endpoint(path string, withPrefix bool) string {
	p := "/" + strings.TrimLeft(path, "/")
	if withPrefix {
		p = c.apiPrefix + p
	}
	return strings.TrimRight(c.baseURL.String(), "/") + p
}

// Do calls an endpoint below the API prefix. A non-nil body is sent as JSON,
// caller headers override the defaults, and a non-nil out receives the
// decoded response. Any transport failure or non-2xx status is returned as
// a *RequestError.
func (c *Client) Do(ctx context.Context, method, path string, body any, headers http.Header, out any) error {
	return c.do(ctx, method, c.endpoint(path, true), body, headers, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, headers http.Header, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request body")
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, vs := range c.headers {
		req.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range headers {
		req.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}

	log.Debug().Str("method", method).Str("url", endpoint).Msg("api request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Str("method", method).Str("url", endpoint).Msg("API request failed")
		return &RequestError{Method: method, URL: endpoint, Err: err}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Error().
			Str("method", method).
			Str("url", endpoint).
			Int("status", resp.StatusCode).
			Msg("API request failed")
		return &RequestError{Method: method, URL: endpoint, StatusCode: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error().Err(err).Str("method", method).Str("url", endpoint).Msg("failed to decode API response")
		return &RequestError{Method: method, URL: endpoint, Err: errors.Wrap(err, "failed to decode response")}
	}
	return nil
}
