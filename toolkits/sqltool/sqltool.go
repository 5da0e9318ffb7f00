// Package sqltool provides a read-only SQL query tool over database/sql.
package sqltool

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/skosovsky/toolcall"
)

// Name is the registered name of the SQL tool.
const Name = "sql_query"

const defaultMaxRows = 100

// Option configures the SQL tool.
type Option func(*sqlTool)

// WithMaxRows caps the number of returned rows. Default 100.
func WithMaxRows(n int) Option {
	return func(s *sqlTool) { s.maxRows = n }
}

// WithToolOptions passes options (timeout, tags) to the underlying tool.
func WithToolOptions(opts ...toolcall.ToolOption) Option {
	return func(s *sqlTool) { s.toolOpts = append(s.toolOpts, opts...) }
}

type sqlTool struct {
	db       *sql.DB
	maxRows  int
	toolOpts []toolcall.ToolOption
}

// New returns the "sql_query" tool. Only a single SELECT (or WITH ... SELECT) statement is
// accepted; anything else is PermissionDenied. The query runs in a transaction that is always
// rolled back. Driver failures are ExternalService errors. It answers {"columns", "rows", "truncated"}.
func New(db *sql.DB, opts ...Option) toolcall.Tool {
	s := &sqlTool{db: db, maxRows: defaultMaxRows}
	for _, opt := range opts {
		opt(s)
	}
	def := toolcall.NewDefinition(Name, "Run a read-only SQL query and return the rows").
		WithParameter(toolcall.NewParameter("query", toolcall.TypeString).
			WithDescription("A single SELECT statement; use ? placeholders for args").
			WithMinLength(1).
			AsRequired()).
		WithParameter(toolcall.NewParameter("args", toolcall.TypeArray).
			WithDescription("Positional placeholder values"))
	return toolcall.NewToolFunc(def, s.execute, s.toolOpts...)
}

func (s *sqlTool) execute(ctx context.Context, args toolcall.Arguments) (*toolcall.Result, error) {
	query, _ := args.String("query")
	if !isReadOnly(query) {
		return failure(toolcall.ErrorPermissionDenied, "only single SELECT statements are allowed", false), nil
	}
	var params []any
	if list, ok := args["args"].([]any); ok {
		params = list
	}
	return s.query(ctx, query, params)
}

func (s *sqlTool) query(ctx context.Context, query string, params []any) (*toolcall.Result, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return driverFailure(ctx, "begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, query, params...)
	if err != nil {
		return driverFailure(ctx, "query", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return driverFailure(ctx, "columns", err)
	}
	out := []map[string]any{}
	truncated := false
	for rows.Next() {
		if len(out) >= s.maxRows {
			truncated = true
			break
		}
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return driverFailure(ctx, "scan", err)
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return driverFailure(ctx, "iterate rows", err)
	}
	return toolcall.NewSuccess(map[string]any{
		"columns":   columns,
		"rows":      out,
		"truncated": truncated,
	}), nil
}

// isReadOnly accepts one SELECT or WITH statement, optionally followed by a trailing semicolon.
// Words are split on every non-identifier character, so keywords glued to punctuation
// ("AS(SELECT 1)DELETE") are still found.
func isReadOnly(query string) bool {
	q := strings.TrimSpace(query)
	q = strings.TrimSuffix(q, ";")
	if strings.Contains(q, ";") {
		return false
	}
	words := strings.FieldsFunc(q, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if len(words) == 0 {
		return false
	}
	switch strings.ToUpper(words[0]) {
	case "SELECT", "WITH":
	default:
		return false
	}
	for _, w := range words {
		switch strings.ToUpper(w) {
		case "INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE", "REPLACE", "UPSERT",
			"ATTACH", "DETACH", "PRAGMA", "VACUUM", "REINDEX", "ANALYZE", "TRUNCATE":
			return false
		}
	}
	return true
}

// driverFailure reports a context error as such so the executor classifies it; anything
// else is a retryable ExternalService error.
func driverFailure(ctx context.Context, op string, err error) (*toolcall.Result, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	msg := fmt.Sprintf("%s failed", op)
	res := failure(toolcall.ErrorExternalService, msg, true)
	res.ErrorDetails.WithCause(err.Error())
	return res, nil
}

func failure(typ toolcall.ErrorType, msg string, retryable bool) *toolcall.Result {
	te := toolcall.NewToolError(typ, msg)
	if retryable {
		te.AsRetryable()
	}
	return toolcall.NewErrorWithDetails(msg, te)
}
