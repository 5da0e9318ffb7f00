package toolcall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSuccess(t *testing.T) {
	res := NewSuccess(map[string]any{"v": 1})
	assert.True(t, res.IsSuccess())
	assert.Empty(t, res.Error)
	assert.Nil(t, res.ErrorDetails)
	require.NotNil(t, res.CompletedAt)
	ms, ok := res.DurationMs()
	require.True(t, ok)
	assert.Zero(t, ms)
	assert.NotNil(t, res.Metadata)

	empty := NewSuccess(nil)
	assert.Equal(t, map[string]any{}, empty.Data)
}

func TestNewError(t *testing.T) {
	res := NewError("boom")
	assert.True(t, res.IsError())
	assert.Equal(t, "boom", res.Error)
	assert.Equal(t, "unknown error", NewError("").Error)

	details := NewToolError(ErrorRateLimit, "slow down").AsRetryable()
	withDetails := NewErrorWithDetails("limited", details)
	require.NotNil(t, withDetails.ErrorDetails)
	assert.Equal(t, ErrorRateLimit, withDetails.ErrorDetails.Type)
	assert.True(t, withDetails.ErrorDetails.Retryable)
}

func TestPartial_Complete(t *testing.T) {
	res := NewPartial(map[string]any{"progress": 50})
	assert.True(t, res.IsPartial())
	assert.Nil(t, res.CompletedAt)
	_, ok := res.DurationMs()
	assert.False(t, ok)

	res.Complete()
	assert.True(t, res.IsSuccess())
	require.NotNil(t, res.CompletedAt)
	require.NotNil(t, res.Duration)
	assert.GreaterOrEqual(t, *res.Duration, time.Duration(0))
	assert.False(t, res.CompletedAt.Before(res.StartedAt))
}

func TestResult_WithMetadata(t *testing.T) {
	res := NewError("x").WithMetadata("attempt", 2)
	assert.True(t, res.IsError())
	assert.Equal(t, 2, res.Metadata["attempt"])

	var zero Result
	zero.WithMetadata("k", "v")
	assert.Equal(t, "v", zero.Metadata["k"])
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, `Success: {"a":1}`, NewSuccess(map[string]int{"a": 1}).String())
	assert.Equal(t, "Error: boom", NewError("boom").String())
	assert.Equal(t, "Partial result", NewPartial(nil).String())
	assert.Equal(t, `Partial: [1]`, NewPartial([]int{1}).String())
}

func TestErrorType_Names(t *testing.T) {
	tests := []struct {
		typ   ErrorType
		wire  string
		human string
	}{
		{ErrorInvalidInput, "invalid_input", "Invalid Input"},
		{ErrorAuthentication, "authentication", "Authentication Error"},
		{ErrorNetwork, "network", "Network Error"},
		{ErrorExternalService, "external_service", "External Service Error"},
		{ErrorInternal, "internal", "Internal Error"},
		{ErrorTimeout, "timeout", "Timeout"},
		{ErrorRateLimit, "rate_limit", "Rate Limit"},
		{ErrorNotFound, "not_found", "Not Found"},
		{ErrorPermissionDenied, "permission_denied", "Permission Denied"},
		{ErrorUnknown, "unknown", "Unknown Error"},
	}
	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			assert.Equal(t, tt.human, tt.typ.String())
			b, err := tt.typ.MarshalText()
			require.NoError(t, err)
			assert.Equal(t, tt.wire, string(b))
			var back ErrorType
			require.NoError(t, back.UnmarshalText(b))
			assert.Equal(t, tt.typ, back)
		})
	}
	var bad ErrorType
	require.Error(t, bad.UnmarshalText([]byte("nope")))
}

func TestToolError_Builders(t *testing.T) {
	te := NewToolError(ErrorNetwork, "connection refused").
		WithContext("host", "example.com").
		WithCause("dial tcp: refused").
		AsRetryable()
	assert.Equal(t, "example.com", te.Context["host"])
	assert.True(t, te.Retryable)
	assert.Equal(t, "Network Error: connection refused (dial tcp: refused)", te.Error())
	assert.False(t, NewToolError(ErrorNetwork, "x").Retryable)
}

func TestResultFromError(t *testing.T) {
	t.Run("tool error kept", func(t *testing.T) {
		te := NewToolError(ErrorNotFound, "no such city")
		res := ResultFromError(fmt.Errorf("lookup: %w", te))
		require.True(t, res.IsError())
		assert.Equal(t, "no such city", res.Error)
		assert.Equal(t, ErrorNotFound, res.ErrorDetails.Type)
	})
	t.Run("deadline", func(t *testing.T) {
		res := ResultFromError(context.DeadlineExceeded)
		assert.Equal(t, ErrorTimeout, res.ErrorDetails.Type)
		assert.True(t, res.ErrorDetails.Retryable)
	})
	t.Run("canceled", func(t *testing.T) {
		res := ResultFromError(context.Canceled)
		assert.Equal(t, ErrorUnknown, res.ErrorDetails.Type)
	})
	t.Run("plain", func(t *testing.T) {
		res := ResultFromError(errors.New("disk full"))
		assert.Equal(t, "disk full", res.Error)
		assert.Equal(t, ErrorInternal, res.ErrorDetails.Type)
		assert.Equal(t, "disk full", res.ErrorDetails.Cause)
	})
	t.Run("nil", func(t *testing.T) {
		res := ResultFromError(nil)
		assert.True(t, res.IsError())
		assert.Equal(t, ErrorInternal, res.ErrorDetails.Type)
	})
}

func TestResult_JSONDocument(t *testing.T) {
	res := NewErrorWithDetails("limited",
		NewToolError(ErrorRateLimit, "slow down").WithContext("retry_after", 5).AsRetryable()).
		WithMetadata(MetadataExecutionTime, 12)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "error", doc["status"])
	assert.Equal(t, "limited", doc["error"])
	assert.NotContains(t, doc, "data")
	assert.Contains(t, doc, "startedAt")
	assert.Contains(t, doc, "completedAt")
	assert.InDelta(t, 0, doc["duration"], 0)
	details, ok := doc["errorDetails"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "rate_limit", details["errorType"])
	assert.Equal(t, true, details["retryable"])

	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.IsError())
	assert.Equal(t, ErrorRateLimit, back.ErrorDetails.Type)
	assert.InDelta(t, 12, back.Metadata[MetadataExecutionTime], 0)
	assert.True(t, back.StartedAt.Equal(res.StartedAt))
}

func TestResult_JSONDocument_Success(t *testing.T) {
	data, err := json.Marshal(NewSuccess(map[string]any{"answer": 42}))
	require.NoError(t, err)
	var back Result
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.IsSuccess())
	assert.Equal(t, map[string]any{"answer": float64(42)}, back.Data)
}

func TestResult_Clone(t *testing.T) {
	orig := NewErrorWithDetails("x", NewToolError(ErrorInternal, "x").WithContext("k", "v"))
	c := orig.clone()
	c.Metadata["added"] = true
	c.ErrorDetails.WithContext("k", "changed")
	assert.NotContains(t, orig.Metadata, "added")
	assert.Equal(t, "v", orig.ErrorDetails.Context["k"])
}
