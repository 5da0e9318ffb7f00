// Package httptool provides an HTTP request tool whose failures map onto the toolcall
// error taxonomy.
package httptool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/skosovsky/toolcall"
)

// Name is the registered name of the HTTP tool.
const Name = "http_request"

const defaultMaxBody = 1 << 20

// Option configures the HTTP tool.
type Option func(*httpTool)

// WithClient sets the HTTP client. Default is a client with a 30s timeout.
func WithClient(c *http.Client) Option {
	return func(h *httpTool) { h.client = c }
}

// WithAllowedHosts restricts requests to the given hosts (exact match on host[:port]).
// Requests to other hosts are PermissionDenied.
func WithAllowedHosts(hosts ...string) Option {
	return func(h *httpTool) { h.allowedHosts = hosts }
}

// WithMaxBodyBytes caps how much of the response body is returned. Default 1 MiB.
func WithMaxBodyBytes(n int64) Option {
	return func(h *httpTool) { h.maxBody = n }
}

// WithToolOptions passes options (timeout, tags) to the underlying tool.
func WithToolOptions(opts ...toolcall.ToolOption) Option {
	return func(h *httpTool) { h.toolOpts = append(h.toolOpts, opts...) }
}

type httpTool struct {
	client       *http.Client
	allowedHosts []string
	maxBody      int64
	toolOpts     []toolcall.ToolOption
}

// New returns the "http_request" tool. It answers {"status", "headers", "body", "truncated"}.
// Transport failures are retryable Network errors; 401 is Authentication, 403 PermissionDenied,
// 404 NotFound, 429 retryable RateLimit and 5xx retryable ExternalService. Other 4xx statuses
// are InvalidInput.
func New(opts ...Option) toolcall.Tool {
	h := &httpTool{
		client:  &http.Client{Timeout: 30 * time.Second},
		maxBody: defaultMaxBody,
	}
	for _, opt := range opts {
		opt(h)
	}
	def := toolcall.NewDefinition(Name, "Perform an HTTP request and return the response").
		WithParameter(toolcall.NewParameter("url", toolcall.TypeString).
			WithDescription("Absolute http or https URL").
			WithMinLength(1).
			AsRequired()).
		WithParameter(toolcall.NewParameter("method", toolcall.TypeString).
			WithDescription("HTTP method").
			WithEnum(http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodHead).
			WithDefault(http.MethodGet)).
		WithParameter(toolcall.NewParameter("headers", toolcall.TypeObject).
			WithDescription("Request headers")).
		WithParameter(toolcall.NewParameter("body", toolcall.TypeString).
			WithDescription("Request body"))
	return toolcall.NewToolFunc(def, h.execute, h.toolOpts...)
}

func (h *httpTool) execute(ctx context.Context, args toolcall.Arguments) (*toolcall.Result, error) {
	rawURL, _ := args.String("url")
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return failure(toolcall.ErrorInvalidInput, "invalid url: "+rawURL, false), nil
	}
	if len(h.allowedHosts) > 0 && !slices.Contains(h.allowedHosts, u.Host) {
		return failure(toolcall.ErrorPermissionDenied, fmt.Sprintf("host '%s' is not allowed", u.Host), false), nil
	}
	method, ok := args.String("method")
	if !ok {
		method = http.MethodGet
	}
	var body io.Reader
	if b, ok := args.String("body"); ok {
		body = strings.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return failure(toolcall.ErrorInvalidInput, "build request: "+err.Error(), false), nil
	}
	if headers, ok := args["headers"].(map[string]any); ok {
		for k, v := range headers {
			req.Header.Set(k, fmt.Sprint(v))
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return failure(toolcall.ErrorTimeout, "request timed out", true).WithMetadata("url", u.String()), nil
		}
		res := failure(toolcall.ErrorNetwork, "request failed", true)
		res.ErrorDetails.WithCause(err.Error())
		return res, nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBody+1))
	if err != nil {
		return failure(toolcall.ErrorNetwork, "read response body: "+err.Error(), true), nil
	}
	truncated := int64(len(data)) > h.maxBody
	if truncated {
		data = data[:h.maxBody]
	}

	if typ, retryable, failed := classifyStatus(resp.StatusCode); failed {
		res := failure(typ, fmt.Sprintf("%s %s returned %s", method, u.String(), resp.Status), retryable)
		res.ErrorDetails.WithContext("status", resp.StatusCode)
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			res.ErrorDetails.WithContext("retry_after", ra)
		}
		return res, nil
	}

	headers := make(map[string]any, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return toolcall.NewSuccess(map[string]any{
		"status":    resp.StatusCode,
		"headers":   headers,
		"body":      string(data),
		"truncated": truncated,
	}), nil
}

// classifyStatus maps an HTTP status onto an error type. failed is false for 1xx-3xx.
func classifyStatus(code int) (typ toolcall.ErrorType, retryable, failed bool) {
	switch {
	case code < 400:
		return 0, false, false
	case code == http.StatusUnauthorized:
		return toolcall.ErrorAuthentication, false, true
	case code == http.StatusForbidden:
		return toolcall.ErrorPermissionDenied, false, true
	case code == http.StatusNotFound:
		return toolcall.ErrorNotFound, false, true
	case code == http.StatusRequestTimeout:
		return toolcall.ErrorTimeout, true, true
	case code == http.StatusTooManyRequests:
		return toolcall.ErrorRateLimit, true, true
	case code >= 500:
		return toolcall.ErrorExternalService, true, true
	default:
		return toolcall.ErrorInvalidInput, false, true
	}
}

func failure(typ toolcall.ErrorType, msg string, retryable bool) *toolcall.Result {
	te := toolcall.NewToolError(typ, msg)
	if retryable {
		te.AsRetryable()
	}
	return toolcall.NewErrorWithDetails(msg, te)
}
