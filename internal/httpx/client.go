package httpx

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

	"github.com/pkg/errors"
)

const DefaultTimeout = 10 * time.Second

// ErrStatus matches every StatusError via errors.Is.
var ErrStatus = errors.New("unexpected status")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// Client issues JSON requests against one upstream base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient swaps the underlying client, e.g. for httptest servers.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// Request describes one call. Path segments are joined onto the base URL.
type Request struct {
	Method string
	Path   []string
	Query  url.Values
	Header http.Header
	Body   any
}

// Do sends r and decodes a JSON response into out when out is non-nil.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	endpoint, err := url.JoinPath(c.baseURL, r.Path...)
	if err != nil {
		return errors.Wrap(err, "build url")
	}
	if len(r.Query) > 0 {
		endpoint += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return errors.Wrap(err, "encode body")
		}
		body = bytes.NewReader(payload)
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if tok := BearerFrom(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, req.URL.Path)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &StatusError{Method: method, Path: req.URL.Path, Code: res.StatusCode, Body: drainError(res.Body)}
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrapf(err, "decode %s", req.URL.Path)
	}
	return nil
}

func drainError(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}

type bearerKey struct{}

// WithBearer attaches an access token that Do forwards as a Bearer Authorization header.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, strings.TrimSpace(token))
}

// BearerFrom returns the token attached by WithBearer.
func BearerFrom(ctx context.Context) string {
	tok, _ := ctx.Value(bearerKey{}).(string)
	return tok
}
