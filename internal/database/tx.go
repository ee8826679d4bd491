package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	txAttempts  = 3
	txBackoff   = 100 * time.Millisecond
	maxBackoff  = time.Second
	codeUnique  = "23505"
	codeSerial  = "40001"
	codeDeadlck = "40P01"
)

// WithTx runs fn inside a transaction. Transient connection failures and
// serialization errors roll back and retry with capped backoff; the pool
// discards the broken connection, so a retry runs on a fresh one. All other
// errors roll back and surface immediately.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	var lastErr error

	backoff := txBackoff
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err := pgx.BeginFunc(ctx, pool, fn)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !IsTransient(err) {
			return err
		}

		lastErr = err
		if attempt < txAttempts {
			slog.Warn("transient database error, retrying",
				"attempt", attempt, "backoff", backoff, "error", err)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = min(backoff*2, maxBackoff)
		}
	}

	return fmt.Errorf("transaction failed after %d attempts: %w", txAttempts, lastErr)
}

// IsTransient reports whether err looks like a failure that a retry on a
// fresh connection could fix.
func IsTransient(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerial, codeDeadlck:
			return true
		}
		// Class 08: connection exceptions.
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08"
	}
	return pgconn.SafeToRetry(err)
}

// IsUniqueViolation reports whether err is a unique-constraint violation,
// optionally on the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != codeUnique {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
