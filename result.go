package toolcall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"time"
)

// Status is the outcome of one tool execution.
type Status int

const (
	StatusSuccess Status = iota
	StatusError
	StatusPartial
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusPartial:
		return "partial"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case StatusSuccess, StatusError, StatusPartial:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("unknown result status %d", int(s))
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "success":
		*s = StatusSuccess
	case "error":
		*s = StatusError
	case "partial":
		*s = StatusPartial
	default:
		return fmt.Errorf("unknown result status %q", b)
	}
	return nil
}

// ErrorType classifies a tool failure.
type ErrorType int

const (
	ErrorInvalidInput ErrorType = iota
	ErrorAuthentication
	ErrorNetwork
	ErrorExternalService
	ErrorInternal
	ErrorTimeout
	ErrorRateLimit
	ErrorNotFound
	ErrorPermissionDenied
	ErrorUnknown
)

var errorTypeNames = [...]struct{ wire, human string }{
	ErrorInvalidInput:     {"invalid_input", "Invalid Input"},
	ErrorAuthentication:   {"authentication", "Authentication Error"},
	ErrorNetwork:          {"network", "Network Error"},
	ErrorExternalService:  {"external_service", "External Service Error"},
	ErrorInternal:         {"internal", "Internal Error"},
	ErrorTimeout:          {"timeout", "Timeout"},
	ErrorRateLimit:        {"rate_limit", "Rate Limit"},
	ErrorNotFound:         {"not_found", "Not Found"},
	ErrorPermissionDenied: {"permission_denied", "Permission Denied"},
	ErrorUnknown:          {"unknown", "Unknown Error"},
}

func (t ErrorType) valid() bool { return t >= 0 && int(t) < len(errorTypeNames) }

// String returns a human-readable label, e.g. "Rate Limit".
func (t ErrorType) String() string {
	if !t.valid() {
		return errorTypeNames[ErrorUnknown].human
	}
	return errorTypeNames[t].human
}

// MarshalText encodes the type in snake_case, e.g. "rate_limit".
func (t ErrorType) MarshalText() ([]byte, error) {
	if !t.valid() {
		return nil, fmt.Errorf("unknown error type %d", int(t))
	}
	return []byte(errorTypeNames[t].wire), nil
}

func (t *ErrorType) UnmarshalText(b []byte) error {
	for i, n := range errorTypeNames {
		if n.wire == string(b) {
			*t = ErrorType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown error type %q", b)
}

// ToolError is structured failure detail attached to an Error result. It implements error,
// so handlers may return it directly; the registry converts it into an Error result.
type ToolError struct {
	Type    ErrorType      `json:"errorType"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
	Cause   string         `json:"cause,omitempty"`
	// Retryable hints that invoking the tool again with the same arguments may succeed.
	// toolcall never retries on its own.
	Retryable bool `json:"retryable"`
}

// NewToolError returns a non-retryable ToolError.
func NewToolError(typ ErrorType, message string) *ToolError {
	return &ToolError{Type: typ, Message: message}
}

func (e *ToolError) Error() string {
	if e.Cause != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// WithContext adds a context entry and returns e.
func (e *ToolError) WithContext(key string, value any) *ToolError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause records the underlying cause and returns e.
func (e *ToolError) WithCause(cause string) *ToolError {
	e.Cause = cause
	return e
}

// AsRetryable marks the error retryable and returns e.
func (e *ToolError) AsRetryable() *ToolError {
	e.Retryable = true
	return e
}

func (e *ToolError) clone() *ToolError {
	if e == nil {
		return nil
	}
	out := *e
	if e.Context != nil {
		out.Context = cloneJSON(e.Context).(map[string]any)
	}
	return &out
}

// Result is the structured outcome of one execution.
//
// A Success result always carries Data and never Error; an Error result always carries Error.
// Construct results with NewSuccess, NewError, NewErrorWithDetails, NewPartial or ResultFromError.
// Metadata may be extended afterwards without changing the status.
type Result struct {
	Status       Status
	Data         any
	Error        string
	ErrorDetails *ToolError
	StartedAt    time.Time
	CompletedAt  *time.Time
	Duration     *time.Duration
	Metadata     map[string]any
}

func completed(status Status) *Result {
	now := time.Now()
	var zero time.Duration
	return &Result{
		Status:      status,
		StartedAt:   now,
		CompletedAt: &now,
		Duration:    &zero,
		Metadata:    make(map[string]any),
	}
}

// NewSuccess returns a completed Success result. A nil data becomes an empty JSON object
// so a Success result always has data.
func NewSuccess(data any) *Result {
	if data == nil {
		data = map[string]any{}
	}
	r := completed(StatusSuccess)
	r.Data = data
	return r
}

// NewError returns a completed Error result with message msg.
func NewError(msg string) *Result {
	if msg == "" {
		msg = "unknown error"
	}
	r := completed(StatusError)
	r.Error = msg
	return r
}

// NewErrorWithDetails returns a completed Error result with structured detail.
func NewErrorWithDetails(msg string, details *ToolError) *Result {
	r := NewError(msg)
	r.ErrorDetails = details
	return r
}

// NewPartial returns an in-progress result carrying partial data. Call Complete once done.
func NewPartial(data any) *Result {
	return &Result{
		Status:    StatusPartial,
		Data:      data,
		StartedAt: time.Now(),
		Metadata:  make(map[string]any),
	}
}

// ResultFromError converts a handler error into an Error result. A *ToolError in the chain is
// kept as detail; context deadlines become retryable Timeout errors, cancellation becomes
// Unknown, and anything else is Internal.
func ResultFromError(err error) *Result {
	if err == nil {
		return NewErrorWithDetails("tool returned no result", NewToolError(ErrorInternal, "tool returned no result"))
	}
	var te *ToolError
	switch {
	case errors.As(err, &te):
		return NewErrorWithDetails(te.Message, te.clone())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, ErrTimeout):
		return NewErrorWithDetails(err.Error(),
			NewToolError(ErrorTimeout, "tool execution timed out").WithCause(err.Error()).AsRetryable())
	case errors.Is(err, context.Canceled):
		return NewErrorWithDetails(err.Error(),
			NewToolError(ErrorUnknown, "tool execution cancelled").WithCause(err.Error()))
	default:
		return NewErrorWithDetails(err.Error(),
			NewToolError(ErrorInternal, "tool execution failed").WithCause(err.Error()))
	}
}

// Complete stamps the completion time and duration. A Partial result becomes Success.
func (r *Result) Complete() *Result {
	now := time.Now()
	d := now.Sub(r.StartedAt)
	if d < 0 {
		d = 0
	}
	r.CompletedAt = &now
	r.Duration = &d
	if r.Status == StatusPartial {
		r.Status = StatusSuccess
		if r.Data == nil {
			r.Data = map[string]any{}
		}
	}
	return r
}

// WithMetadata sets a metadata entry and returns r.
func (r *Result) WithMetadata(key string, value any) *Result {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
	return r
}

func (r *Result) IsSuccess() bool { return r.Status == StatusSuccess }
func (r *Result) IsError() bool   { return r.Status == StatusError }
func (r *Result) IsPartial() bool { return r.Status == StatusPartial }

// DurationMs returns the execution duration in milliseconds, if known.
func (r *Result) DurationMs() (int64, bool) {
	if r.Duration == nil {
		return 0, false
	}
	return r.Duration.Milliseconds(), true
}

func (r *Result) String() string {
	switch r.Status {
	case StatusSuccess:
		return "Success: " + dataString(r.Data)
	case StatusPartial:
		if r.Data == nil {
			return "Partial result"
		}
		return "Partial: " + dataString(r.Data)
	default:
		if r.Error == "" {
			return "Error: Unknown error"
		}
		return "Error: " + r.Error
	}
}

func dataString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// clone copies r so metadata can be attached without touching a result the tool may reuse.
func (r *Result) clone() *Result {
	out := *r
	out.Metadata = maps.Clone(r.Metadata)
	if out.Metadata == nil {
		out.Metadata = make(map[string]any)
	}
	out.ErrorDetails = r.ErrorDetails.clone()
	return &out
}

// resultDocument is the wire form of Result.
type resultDocument struct {
	Status       Status          `json:"status"`
	Data         json.RawMessage `json:"data,omitempty"`
	Error        string          `json:"error,omitempty"`
	ErrorDetails *ToolError      `json:"errorDetails,omitempty"`
	StartedAt    time.Time       `json:"startedAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
	Duration     *int64          `json:"duration,omitempty"` // milliseconds
	Metadata     map[string]any  `json:"metadata"`
}

// MarshalJSON encodes the result document consumed by conversation layers.
func (r *Result) MarshalJSON() ([]byte, error) {
	doc := resultDocument{
		Status:       r.Status,
		Error:        r.Error,
		ErrorDetails: r.ErrorDetails,
		StartedAt:    r.StartedAt,
		CompletedAt:  r.CompletedAt,
		Metadata:     r.Metadata,
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	if r.Data != nil {
		data, err := json.Marshal(r.Data)
		if err != nil {
			return nil, fmt.Errorf("marshal result data: %w", err)
		}
		doc.Data = data
	}
	if ms, ok := r.DurationMs(); ok {
		doc.Duration = &ms
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes a result document. Data is decoded into generic JSON values.
func (r *Result) UnmarshalJSON(b []byte) error {
	var doc resultDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	out := Result{
		Status:       doc.Status,
		Error:        doc.Error,
		ErrorDetails: doc.ErrorDetails,
		StartedAt:    doc.StartedAt,
		CompletedAt:  doc.CompletedAt,
		Metadata:     doc.Metadata,
	}
	if out.Metadata == nil {
		out.Metadata = make(map[string]any)
	}
	if len(doc.Data) > 0 {
		if err := json.Unmarshal(doc.Data, &out.Data); err != nil {
			return err
		}
	}
	if doc.Duration != nil {
		d := time.Duration(*doc.Duration) * time.Millisecond
		out.Duration = &d
	}
	*r = out
	return nil
}
