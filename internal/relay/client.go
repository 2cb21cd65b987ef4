package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Request describes one outbound call. Exactly one of JSONBody and RawBody
// may be set; JSONBody is marshalled and sent as application/json.
type Request struct {
	URL      string
	Method   string
	Header   http.Header
	JSONBody any
	RawBody  []byte
	Timeout  time.Duration
}

// Result is the classified outcome of one outbound call.
type Result struct {
	StatusCode int
	Succeeded  bool
	Payload    Payload
}

// Client issues single outbound HTTP calls with per-call timeouts.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a relay client. The underlying http.Client carries no
// global timeout; every call is bounded by its own Request.Timeout.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Do issues the request and classifies the outcome. An empty URL fails with a
// configuration error before any network attempt. The timeout context is
// released on every completion path, and at most one network call is made.
func (c *Client) Do(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, NewError(KindConfiguration, "upstream endpoint is not configured")
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.JSONBody != nil:
		encoded, err := json.Marshal(req.JSONBody)
		if err != nil {
			return nil, NewError(KindValidation, "could not encode outbound payload").WithDetail(err.Error())
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	case req.RawBody != nil:
		body = bytes.NewReader(req.RawBody)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, NewError(KindConfiguration, "invalid upstream endpoint").WithDetail(err.Error())
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.classifyTransport(ctx, req.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.classifyTransport(ctx, req.URL, fmt.Errorf("reading response body: %w", err))
	}

	result := &Result{
		StatusCode: resp.StatusCode,
		Succeeded:  resp.StatusCode >= 200 && resp.StatusCode < 300,
		Payload:    Normalize(resp.Header.Get("Content-Type"), raw),
	}

	c.logger.Debug("upstream call completed",
		"url", req.URL,
		"method", method,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

func (c *Client) classifyTransport(ctx context.Context, rawURL string, err error) *Error {
	host := rawURL
	if parsed, parseErr := url.Parse(rawURL); parseErr == nil && parsed.Host != "" {
		host = parsed.Host
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		c.logger.Warn("upstream call timed out", "host", host)
		return NewError(KindTimeout, "upstream %s did not respond in time", host)
	}
	c.logger.Warn("upstream call failed", "host", host, "error", err)
	return NewError(KindTransport, "upstream %s is unreachable", host).WithDetail(err.Error())
}
