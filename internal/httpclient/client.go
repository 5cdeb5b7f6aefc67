// Package httpclient is the small GET-only HTTP client shared by the catalog loader
// and the HLS engine.
package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// DefaultUserAgent identifies the application to upstream servers
const DefaultUserAgent = "idcable/1.0 (+https://github.com/Taichi-iskw/idcable)"

const maxRedirects = 5

// Client fetches resources over HTTP
type Client interface {
	// Get returns the body of url; headers are added to the request verbatim
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

// StatusError is returned when the server answers with a non-2xx status
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
}

// fastClient implements Client with fasthttp
type fastClient struct {
	client    *fasthttp.Client
	userAgent string
}

// New creates a Client. An empty userAgent selects DefaultUserAgent.
func New(userAgent string) Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &fastClient{
		client: &fasthttp.Client{
			Name:                userAgent,
			MaxIdleConnDuration: 30 * time.Second,
			// Catalog resources are several megabytes
			MaxResponseBodySize: 256 << 20,
		},
		userAgent: userAgent,
	}
}

// Get performs a GET request following up to maxRedirects redirects.
// The context deadline, when present, bounds the whole exchange.
func (c *fastClient) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(c.userAgent)
	for k, v := range headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}
	if deadline, ok := ctx.Deadline(); ok {
		timeout := time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
		req.SetTimeout(timeout)
	}

	if err := c.client.DoRedirects(req, resp, maxRedirects); err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return nil, &StatusError{URL: url, Code: status}
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}
