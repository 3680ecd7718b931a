package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-kucoinpay/core"
	glog "github.com/goliatone/go-logger/glog"
)

const KindHTTP = "http"

const defaultClientTimeout = 30 * time.Second
const defaultResponseBodyLimit int64 = 4 << 20

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPAdapter posts signed provider requests. The per-request timeout from
// core.TransportRequest bounds each call on top of the client timeout.
type HTTPAdapter struct {
	Client               HTTPDoer
	DefaultHeaders       map[string]string
	MaxResponseBodyBytes int64
	Logger               core.Logger
}

type Option func(*HTTPAdapter)

func WithDefaultHeader(key string, value string) Option {
	return func(a *HTTPAdapter) {
		if strings.TrimSpace(key) != "" {
			a.DefaultHeaders[strings.TrimSpace(key)] = value
		}
	}
}

func WithMaxResponseBodyBytes(limit int64) Option {
	return func(a *HTTPAdapter) {
		if limit > 0 {
			a.MaxResponseBodyBytes = limit
		}
	}
}

func WithLogger(logger core.Logger) Option {
	return func(a *HTTPAdapter) {
		if logger != nil {
			a.Logger = logger
		}
	}
}

func NewHTTPAdapter(client HTTPDoer, opts ...Option) *HTTPAdapter {
	if client == nil {
		client = &http.Client{Timeout: defaultClientTimeout}
	}
	adapter := &HTTPAdapter{
		Client:               client,
		DefaultHeaders:       map[string]string{},
		MaxResponseBodyBytes: defaultResponseBodyLimit,
		Logger:               glog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(adapter)
		}
	}
	return adapter
}

func (*HTTPAdapter) Kind() string {
	return KindHTTP
}

func (a *HTTPAdapter) Do(ctx context.Context, req core.TransportRequest) (core.TransportResponse, error) {
	if a == nil || a.Client == nil {
		return core.TransportResponse{}, transportError(
			"transport: http adapter requires an http client",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"adapter": KindHTTP},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.TrimSpace(strings.ToUpper(req.Method))
	if method == "" {
		method = http.MethodPost
	}
	target := strings.TrimSpace(req.URL)
	parsedURL, err := url.Parse(target)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: invalid request url",
			http.StatusBadRequest,
			map[string]any{"adapter": KindHTTP, "url": target},
		)
	}

	requestCtx := ctx
	cancel := func() {}
	if req.Timeout > 0 {
		requestCtx, cancel = context.WithTimeout(ctx, req.Timeout)
	}
	defer cancel()

	httpReq, err := http.NewRequestWithContext(requestCtx, method, parsedURL.String(), bytes.NewReader(req.Body))
	if err != nil {
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: create http request",
			http.StatusBadRequest,
			map[string]any{"adapter": KindHTTP, "method": method, "url": parsedURL.String()},
		)
	}
	for key, value := range a.DefaultHeaders {
		httpReq.Header.Set(key, strings.TrimSpace(value))
	}
	for key, value := range req.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		httpReq.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}

	operation, _ := req.Metadata["operation"].(string)
	logger := glog.Ensure(a.Logger)
	startedAt := time.Now().UTC()
	httpRes, err := a.Client.Do(httpReq)
	if err != nil {
		logger.Warn("provider request failed",
			"operation", operation,
			"url", parsedURL.Path,
			"error", err.Error(),
		)
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: execute http request",
			http.StatusBadGateway,
			map[string]any{"adapter": KindHTTP, "method": method, "url": parsedURL.String()},
		)
	}
	defer httpRes.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpRes.Body, a.bodyLimit()+1))
	if err != nil {
		return core.TransportResponse{}, transportWrapError(
			err,
			goerrors.CategoryExternal,
			"transport: read response body",
			http.StatusBadGateway,
			map[string]any{"adapter": KindHTTP, "status_code": httpRes.StatusCode},
		)
	}
	if int64(len(body)) > a.bodyLimit() {
		return core.TransportResponse{}, transportError(
			fmt.Sprintf("transport: response body exceeds limit of %d bytes", a.bodyLimit()),
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			map[string]any{
				"adapter":          KindHTTP,
				"status_code":      httpRes.StatusCode,
				"response_limit_b": a.bodyLimit(),
			},
		)
	}

	duration := time.Since(startedAt)
	logger.Debug("provider request completed",
		"operation", operation,
		"url", parsedURL.Path,
		"status_code", httpRes.StatusCode,
		"signature", signaturePrefix(req.Headers[core.HeaderSign]),
		"duration_ms", duration.Milliseconds(),
	)
	return core.TransportResponse{
		StatusCode: httpRes.StatusCode,
		Headers:    flattenHeaders(httpRes.Header),
		Body:       body,
		Metadata: map[string]any{
			"duration_ms": duration.Milliseconds(),
			"kind":        KindHTTP,
		},
	}, nil
}

func (a *HTTPAdapter) bodyLimit() int64 {
	if a.MaxResponseBodyBytes > 0 {
		return a.MaxResponseBodyBytes
	}
	return defaultResponseBodyLimit
}

// signaturePrefix keeps enough of a signature to correlate log lines.
func signaturePrefix(signature string) string {
	const keep = 8
	signature = strings.TrimSpace(signature)
	if len(signature) <= keep {
		return signature
	}
	return signature[:keep] + "..."
}

func flattenHeaders(headers http.Header) map[string]string {
	if len(headers) == 0 {
		return map[string]string{}
	}
	flat := make(map[string]string, len(headers))
	for key, values := range headers {
		flat[key] = strings.Join(values, ",")
	}
	return flat
}

var _ core.TransportAdapter = (*HTTPAdapter)(nil)
