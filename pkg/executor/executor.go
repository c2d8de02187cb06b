// Package executor runs guard-approved statements against the database
// inside bounded, read-only transactions.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/apperrors"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/database"
	applog "github.com/florencygajera/nl2sql-chatbot-backend/pkg/logging"
	"github.com/florencygajera/nl2sql-chatbot-backend/pkg/sqlguard"
)

// Result holds the bounded output of one statement execution.
// Truncated is true iff the underlying result set had more rows than the
// hard ceiling; extra rows are discarded, never materialized.
type Result struct {
	Columns   []string
	Rows      [][]any
	RowCount  int
	Truncated bool
}

// QueryExecutor is the execution contract the chat pipeline depends on.
type QueryExecutor interface {
	Execute(ctx context.Context, sanitizedText string, params map[string]any) (*Result, error)
}

// Config bounds the executor's resource usage.
type Config struct {
	// MaxRows is the hard ceiling on returned rows, enforced here
	// independently of any limit clause in the statement.
	MaxRows int

	// AcquireTimeout caps how long Execute waits for a pooled connection.
	AcquireTimeout time.Duration

	// StatementTimeout is applied per transaction on the backend so a
	// runaway query is terminated server-side.
	StatementTimeout time.Duration
}

// Executor executes statements through a shared bounded pool. The pool is
// its only shared mutable state; an acquired connection belongs to one
// request until released.
type Executor struct {
	db     *database.DB
	cfg    Config
	logger *zap.Logger
}

var _ QueryExecutor = (*Executor)(nil)

// New creates an Executor.
func New(db *database.DB, cfg Config, logger *zap.Logger) *Executor {
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 500
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = 5 * time.Second
	}
	return &Executor{db: db, cfg: cfg, logger: logger.Named("executor")}
}

// Execute runs a guard-accepted statement and returns bounded results.
// Parameters are bound strictly by name through the driver; values are
// never interpolated into the statement text. The connection is released
// on every exit path, and the transaction is always rolled back: the
// statement is read-only, so rollback is equivalent to commit and avoids
// accidental side effects.
//
// Pool acquisition timeout surfaces as ErrResourceExhausted; backend
// failures surface as ErrExecutionFailed. Neither is retried here.
func (e *Executor) Execute(ctx context.Context, sanitizedText string, params map[string]any) (*Result, error) {
	boundSQL, values, err := sqlguard.RewritePositional(sanitizedText, params)
	if err != nil {
		return nil, &apperrors.ExecutionFailure{Cause: err}
	}

	acquireCtx, cancel := context.WithTimeout(ctx, e.cfg.AcquireTimeout)
	defer cancel()

	conn, err := e.db.Acquire(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			e.logger.Warn("connection acquisition timed out",
				zap.Duration("timeout", e.cfg.AcquireTimeout))
			return nil, apperrors.ErrResourceExhausted
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &apperrors.ExecutionFailure{Cause: err}
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		// A backend that cannot honor read-only mode weakens the guarantee
		// but does not fail the request; the fallback is logged so the gap
		// is visible in telemetry.
		e.logger.Warn("read-only transaction unavailable, falling back",
			zap.String("error", applog.SanitizeError(err)))
		tx, err = conn.Begin(ctx)
		if err != nil {
			return nil, &apperrors.ExecutionFailure{Cause: err}
		}
	}
	defer func() {
		// Rollback on every path; a second rollback after the explicit one
		// below is a no-op error we ignore.
		_ = tx.Rollback(ctx)
	}()

	if e.cfg.StatementTimeout > 0 {
		timeoutSQL := fmt.Sprintf("SET LOCAL statement_timeout = %d", e.cfg.StatementTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, timeoutSQL); err != nil {
			e.logger.Warn("failed to set statement timeout",
				zap.String("error", applog.SanitizeError(err)))
		}
	}

	rows, err := tx.Query(ctx, boundSQL, values...)
	if err != nil {
		return nil, &apperrors.ExecutionFailure{Cause: err}
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = string(fd.Name)
	}

	result := &Result{Columns: columns, Rows: make([][]any, 0)}
	for rows.Next() {
		if len(result.Rows) >= e.cfg.MaxRows {
			result.Truncated = true
			e.logger.Warn("result set exceeded hard ceiling; truncated",
				zap.Int("max_rows", e.cfg.MaxRows))
			break
		}
		rowValues, err := rows.Values()
		if err != nil {
			return nil, &apperrors.ExecutionFailure{Cause: fmt.Errorf("read row values: %w", err)}
		}
		result.Rows = append(result.Rows, rowValues)
	}
	rows.Close()

	if err := rows.Err(); err != nil && !result.Truncated {
		return nil, &apperrors.ExecutionFailure{Cause: fmt.Errorf("iterate rows: %w", err)}
	}

	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		e.logger.Warn("rollback failed", zap.String("error", applog.SanitizeError(err)))
	}

	result.RowCount = len(result.Rows)
	return result, nil
}
