package database

import (
	"context"
	"database/sql/driver"
	"math/rand"
	"strings"
	"time"
)

const (
	sqliteBusy   = 5
	sqliteLocked = 6

	retryBaseDelay = 50 * time.Millisecond
	retryMaxDelay  = 2 * time.Second
)

// busyRetryConnector hands out connections whose statements are retried when
// SQLite reports the database as busy or locked.
type busyRetryConnector struct {
	driver.Connector
	maxRetries int
}

func (c *busyRetryConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.Connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return &busyRetryConn{Conn: conn, maxRetries: c.maxRetries}, nil
}

type busyRetryConn struct {
	driver.Conn
	maxRetries int
}

func (c *busyRetryConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	beginner, ok := c.Conn.(driver.ConnBeginTx)
	if !ok {
		return withRetry(ctx, c.maxRetries, c.Conn.Begin) //nolint:staticcheck
	}
	return withRetry(ctx, c.maxRetries, func() (driver.Tx, error) {
		return beginner.BeginTx(ctx, opts)
	})
}

func (c *busyRetryConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	execer, ok := c.Conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	return withRetry(ctx, c.maxRetries, func() (driver.Result, error) {
		return execer.ExecContext(ctx, query, args)
	})
}

func (c *busyRetryConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	queryer, ok := c.Conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	return withRetry(ctx, c.maxRetries, func() (driver.Rows, error) {
		return queryer.QueryContext(ctx, query, args)
	})
}

func (c *busyRetryConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if preparer, ok := c.Conn.(driver.ConnPrepareContext); ok {
		return preparer.PrepareContext(ctx, query)
	}
	return c.Conn.Prepare(query)
}

func (c *busyRetryConn) ResetSession(ctx context.Context) error {
	if resetter, ok := c.Conn.(driver.SessionResetter); ok {
		return resetter.ResetSession(ctx)
	}
	return nil
}

func (c *busyRetryConn) IsValid() bool {
	if validator, ok := c.Conn.(driver.Validator); ok {
		return validator.IsValid()
	}
	return true
}

// isBusyError reports whether err is SQLITE_BUSY or SQLITE_LOCKED, either
// through the driver's result code or its message.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	if coded, ok := err.(interface{ Code() int }); ok {
		primary := coded.Code() & 0xff
		return primary == sqliteBusy || primary == sqliteLocked
	}
	msg := err.Error()
	for _, pattern := range []string{"database is locked", "database table is locked", "SQLITE_BUSY", "SQLITE_LOCKED"} {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func withRetry[T any](ctx context.Context, maxRetries int, fn func() (T, error)) (T, error) {
	var result T
	err := retryWithBackoff(ctx, maxRetries, func() error {
		var err error
		result, err = fn()
		return err
	})
	return result, err
}

// retryWithBackoff calls fn until it succeeds, fails with a non-busy error,
// or maxRetries retries have been spent. Delays double from 50ms with up to
// 25% jitter and are capped at 2s.
func retryWithBackoff(ctx context.Context, maxRetries int, fn func() error) error {
	delay := retryBaseDelay
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !isBusyError(err) || attempt >= maxRetries {
			return err
		}

		wait := delay + time.Duration(rand.Int63n(int64(delay/4)+1))
		if wait > retryMaxDelay {
			wait = retryMaxDelay
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
}
