package httptool

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/skosovsky/toolcall"
	"github.com/skosovsky/toolcall/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Method", r.Method)
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write([]byte("hello " + r.Header.Get("X-Name") + string(body)))
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	})
	mux.HandleFunc("/status/", func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/status/") {
		case "401":
			w.WriteHeader(http.StatusUnauthorized)
		case "403":
			w.WriteHeader(http.StatusForbidden)
		case "404":
			w.WriteHeader(http.StatusNotFound)
		case "429":
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
		case "400":
			w.WriteHeader(http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPRequest_Success(t *testing.T) {
	srv := newServer(t)
	exec := testutil.NewTestExecutor(t, []toolcall.Tool{New(WithClient(srv.Client()))})

	res, err := exec.Execute(context.Background(), Name, toolcall.Arguments{
		"url":     srv.URL + "/ok",
		"method":  http.MethodPost,
		"headers": map[string]any{"X-Name": "ada"},
		"body":    "!",
	})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), res.String())
	data := res.Data.(map[string]any)
	assert.Equal(t, http.StatusOK, data["status"])
	assert.Equal(t, "hello ada!", data["body"])
	assert.Equal(t, false, data["truncated"])
	assert.Equal(t, http.MethodPost, data["headers"].(map[string]any)["X-Method"])
}

func TestHTTPRequest_Truncates(t *testing.T) {
	srv := newServer(t)
	tool := New(WithClient(srv.Client()), WithMaxBodyBytes(10))
	res, err := tool.Execute(context.Background(), toolcall.Arguments{"url": srv.URL + "/big"})
	require.NoError(t, err)
	data := res.Data.(map[string]any)
	assert.Equal(t, strings.Repeat("x", 10), data["body"])
	assert.Equal(t, true, data["truncated"])
}

func TestHTTPRequest_StatusMapping(t *testing.T) {
	srv := newServer(t)
	tool := New(WithClient(srv.Client()))
	tests := []struct {
		status    string
		want      toolcall.ErrorType
		retryable bool
	}{
		{"401", toolcall.ErrorAuthentication, false},
		{"403", toolcall.ErrorPermissionDenied, false},
		{"404", toolcall.ErrorNotFound, false},
		{"429", toolcall.ErrorRateLimit, true},
		{"400", toolcall.ErrorInvalidInput, false},
		{"502", toolcall.ErrorExternalService, true},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			res, err := tool.Execute(context.Background(), toolcall.Arguments{"url": srv.URL + "/status/" + tt.status})
			require.NoError(t, err)
			require.True(t, res.IsError())
			assert.Equal(t, tt.want, res.ErrorDetails.Type)
			assert.Equal(t, tt.retryable, res.ErrorDetails.Retryable)
			assert.NotNil(t, res.ErrorDetails.Context["status"])
		})
	}
}

func TestHTTPRequest_RetryAfter(t *testing.T) {
	srv := newServer(t)
	res, err := New(WithClient(srv.Client())).Execute(context.Background(), toolcall.Arguments{"url": srv.URL + "/status/429"})
	require.NoError(t, err)
	assert.Equal(t, "3", res.ErrorDetails.Context["retry_after"])
}

func TestHTTPRequest_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res, err := New().Execute(context.Background(), toolcall.Arguments{"url": url})
	require.NoError(t, err)
	require.True(t, res.IsError())
	assert.Equal(t, toolcall.ErrorNetwork, res.ErrorDetails.Type)
	assert.True(t, res.ErrorDetails.Retryable)
	assert.NotEmpty(t, res.ErrorDetails.Cause)
}

func TestHTTPRequest_InvalidURL(t *testing.T) {
	for _, u := range []string{"ftp://example.com", "not a url", "/relative"} {
		res, err := New().Execute(context.Background(), toolcall.Arguments{"url": u})
		require.NoError(t, err)
		require.True(t, res.IsError(), u)
		assert.Equal(t, toolcall.ErrorInvalidInput, res.ErrorDetails.Type)
	}
}

func TestHTTPRequest_AllowedHosts(t *testing.T) {
	srv := newServer(t)
	tool := New(WithClient(srv.Client()), WithAllowedHosts("api.example.com"))
	res, err := tool.Execute(context.Background(), toolcall.Arguments{"url": srv.URL + "/ok"})
	require.NoError(t, err)
	require.True(t, res.IsError())
	assert.Equal(t, toolcall.ErrorPermissionDenied, res.ErrorDetails.Type)
}

func TestHTTPRequest_Validation(t *testing.T) {
	exec := testutil.NewTestExecutor(t, []toolcall.Tool{New()})
	res, err := exec.Execute(context.Background(), Name, toolcall.Arguments{"url": "http://x", "method": "TRACE"})
	require.NoError(t, err)
	require.True(t, res.IsError())
	assert.Equal(t, toolcall.ErrorInvalidInput, res.ErrorDetails.Type)
}
