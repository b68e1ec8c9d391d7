package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/probelabs/apiprobe/transport"
)

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	// Client is the underlying HTTP client. If nil, a default client
	// is used; the call budget is enforced by the lifecycle engine,
	// not here.
	Client *http.Client
}

// HTTPTransport sends calls over HTTP.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates an HTTP transport.
func NewHTTPTransport(config HTTPConfig) *HTTPTransport {
	// Apply defaults
	if config.Client == nil {
		config.Client = &http.Client{}
	}

	return &HTTPTransport{client: config.Client}
}

// Send performs one HTTP exchange and normalizes the response.
// Network failures come back wrapped in transport.ErrTransport, and
// deadline expiry in transport.ErrTimeout, so the retry classifier
// sees uniform errors.
func (t *HTTPTransport) Send(ctx context.Context, call *transport.Call) (*transport.Result, error) {
	var body io.Reader
	if len(call.Body) > 0 {
		body = bytes.NewReader(call.Body)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, call.Target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", transport.ErrTransport, err)
	}
	for k, v := range call.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", transport.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", transport.ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", transport.ErrTransport, err)
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &transport.Result{
		Status:  resp.StatusCode,
		Headers: headers,
		Body:    data,
		Elapsed: time.Since(start),
		Time:    time.Now(),
	}, nil
}

var _ transport.Transport = (*HTTPTransport)(nil)
