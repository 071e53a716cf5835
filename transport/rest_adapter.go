package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-searchcore/core"
)

const KindREST = "rest"

const (
	defaultRESTClientTimeout          = 30 * time.Second
	defaultRESTResponseBodyLimit int64 = 10 << 20 // 10 MiB
)

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type RESTOption func(*RESTAdapter)

// WithDefaultHeader sets a header sent on every request. Request headers win.
func WithDefaultHeader(key string, value string) RESTOption {
	return func(a *RESTAdapter) {
		key = http.CanonicalHeaderKey(strings.TrimSpace(key))
		if key == "" {
			return
		}
		a.DefaultHeaders[key] = strings.TrimSpace(value)
	}
}

// WithJSONHeaders sets Accept and Content-Type to application/json.
func WithJSONHeaders() RESTOption {
	return func(a *RESTAdapter) {
		a.DefaultHeaders["Accept"] = "application/json"
		a.DefaultHeaders["Content-Type"] = "application/json"
	}
}

func WithResponseBodyLimit(limit int64) RESTOption {
	return func(a *RESTAdapter) {
		if limit > 0 {
			a.MaxResponseBodyBytes = limit
		}
	}
}

type RESTAdapter struct {
	Client               HTTPDoer
	DefaultHeaders       map[string]string
	MaxResponseBodyBytes int64
}

func NewRESTAdapter(client HTTPDoer, opts ...RESTOption) *RESTAdapter {
	if client == nil {
		client = &http.Client{Timeout: defaultRESTClientTimeout}
	}
	adapter := &RESTAdapter{
		Client:               client,
		DefaultHeaders:       map[string]string{},
		MaxResponseBodyBytes: defaultRESTResponseBodyLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	return adapter
}

func (*RESTAdapter) Kind() string {
	return KindREST
}

// Do issues one request. Non-2xx statuses are returned as responses, not
// errors; callers decide what a failed status means for them.
func (a *RESTAdapter) Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil || a.Client == nil {
		return core.TransportResponse{}, misconfigured.fail(nil, "transport: rest adapter requires an http client", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := a.buildRequest(ctx, req)
	if err != nil {
		return core.TransportResponse{}, err
	}

	startedAt := time.Now().UTC()
	httpRes, err := a.Client.Do(httpReq)
	if err != nil {
		message := "transport: execute http request"
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			message = "transport: http request timed out"
		}
		return core.TransportResponse{}, upstream.fail(err, message, map[string]any{
			"method": httpReq.Method,
			"url":    redactURL(httpReq.URL),
		})
	}
	defer httpRes.Body.Close()

	body, err := a.readBody(httpRes, req.MaxResponseBodyBytes)
	if err != nil {
		return core.TransportResponse{}, err
	}

	return core.TransportResponse{
		StatusCode: httpRes.StatusCode,
		Headers:    flattenHeaders(httpRes.Header),
		Body:       body,
		Metadata: map[string]any{
			"duration_ms": time.Since(startedAt).Milliseconds(),
			"kind":        KindREST,
		},
	}, nil
}

func (a *RESTAdapter) buildRequest(ctx context.Context, req core.TransportRequest) (*http.Request, error) {
	method := strings.TrimSpace(strings.ToUpper(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return nil, badRequest.fail(nil, "transport: request url is required", nil)
	}
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, badRequest.fail(err, "transport: invalid request url", nil)
	}
	if len(req.Query) > 0 {
		query := parsedURL.Query()
		for key, value := range req.Query {
			if key = strings.TrimSpace(key); key != "" {
				query.Set(key, strings.TrimSpace(value))
			}
		}
		parsedURL.RawQuery = query.Encode()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, parsedURL.String(), body)
	if err != nil {
		return nil, badRequest.fail(err, "transport: create http request", map[string]any{"method": method})
	}
	applyHeaders(httpReq.Header, a.DefaultHeaders)
	applyHeaders(httpReq.Header, req.Headers)
	return httpReq, nil
}

func (a *RESTAdapter) readBody(res *http.Response, requestLimit int64) ([]byte, error) {
	limit := resolveResponseBodyLimit(requestLimit, a.MaxResponseBodyBytes)
	body, err := io.ReadAll(io.LimitReader(res.Body, limit+1))
	if err != nil {
		return nil, upstream.fail(err, "transport: read response body", map[string]any{"status_code": res.StatusCode})
	}
	if int64(len(body)) > limit {
		return nil, upstream.fail(nil, fmt.Sprintf("transport: response body exceeds limit of %d bytes", limit), map[string]any{
			"status_code":      res.StatusCode,
			"response_limit_b": limit,
		})
	}
	return body, nil
}

func applyHeaders(target http.Header, headers map[string]string) {
	for key, value := range headers {
		if key = strings.TrimSpace(key); key != "" {
			target.Set(key, strings.TrimSpace(value))
		}
	}
}

// redactURL drops the query string, which may carry subscription ids.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	clean := *u
	clean.RawQuery = ""
	clean.User = nil
	return clean.String()
}

func flattenHeaders(headers http.Header) map[string]string {
	flat := make(map[string]string, len(headers))
	for key, values := range headers {
		flat[key] = strings.Join(values, ",")
	}
	return flat
}

func resolveResponseBodyLimit(requestLimit int64, adapterLimit int64) int64 {
	switch {
	case requestLimit > 0:
		return requestLimit
	case adapterLimit > 0:
		return adapterLimit
	default:
		return defaultRESTResponseBodyLimit
	}
}

var _ core.TransportAdapter = (*RESTAdapter)(nil)
