// Package fetch downloads quiz attachments and calls the APIs quiz pages
// point at.
package fetch

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
	// maxBodyBytes caps any single download.
	maxBodyBytes = 20 << 20
	userAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// ErrHTTPStatus matches every *StatusError.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: http %d: %s", e.URL, e.Status, e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrHTTPStatus }

// ErrTooLarge is returned when a body exceeds the download cap.
var ErrTooLarge = errors.New("response body too large")

// Client performs downloads and API calls.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A timeout set with
// WithTimeout applies to a copy; c itself is never modified.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.timeout = d }
}

// New creates a Client with a 30 second timeout.
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	switch {
	case c.http == nil:
		c.http = &http.Client{Timeout: cmp.Or(c.timeout, defaultTimeout)}
	case c.timeout > 0:
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// Download GETs rawURL and returns the body.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, errors.New("download url is empty")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, trimmed, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// APIRequest describes an API call. Method defaults to GET; only GET and
// POST are supported. Body is sent as JSON on POST.
type APIRequest struct {
	URL     string
	Method  string
	Headers map[string]string
	Params  map[string]string
	Body    any
}

// APIResult holds the decoded JSON payload, or the raw text when the
// response is not JSON.
type APIResult struct {
	JSON   any
	Text   string
	IsJSON bool
}

// String renders the result for a model prompt: indented JSON or the text.
func (r APIResult) String() string {
	if !r.IsJSON {
		return r.Text
	}
	b, err := json.MarshalIndent(r.JSON, "", "  ")
	if err != nil {
		return r.Text
	}
	return string(b)
}

// FetchAPI performs the call and prefers a JSON reading of the response.
func (c *Client) FetchAPI(ctx context.Context, ar APIRequest) (APIResult, error) {
	method := strings.ToUpper(ar.Method)
	if method == "" {
		method = http.MethodGet
	}

	u, err := url.Parse(strings.TrimSpace(ar.URL))
	if err != nil {
		return APIResult{}, fmt.Errorf("parse api url: %w", err)
	}
	if len(ar.Params) > 0 {
		q := u.Query()
		for k, v := range ar.Params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	switch method {
	case http.MethodGet:
	case http.MethodPost:
		if ar.Body != nil {
			b, err := json.Marshal(ar.Body)
			if err != nil {
				return APIResult{}, fmt.Errorf("encode api body: %w", err)
			}
			body = bytes.NewReader(b)
		}
	default:
		return APIResult{}, fmt.Errorf("unsupported method: %s", ar.Method)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return APIResult{}, err
	}
	req.Header.Set("Accept", "application/json, text/plain;q=0.9, */*;q=0.8")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range ar.Headers {
		req.Header.Set(k, v)
	}

	raw, err := c.do(req)
	if err != nil {
		return APIResult{}, err
	}

	res := APIResult{Text: string(raw)}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err == nil && !dec.More() {
		res.JSON = v
		res.IsJSON = true
	}
	return res, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", req.URL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: req.URL.String(), Status: resp.StatusCode, Body: snippet(body)}
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%s: %w", req.URL, ErrTooLarge)
	}
	return body, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
