package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Session owns the connection pool of one database. Transactions travel in
// the context: WithTransaction joins the caller's transaction when there is
// one and manages its own otherwise.
type Session struct {
	db      *sql.DB
	dialect Dialect
	txOpts  *sql.TxOptions
}

func NewSession(db *sql.DB, dialect Dialect, isolation sql.IsolationLevel) *Session {
	return &Session{
		db:      db,
		dialect: dialect,
		txOpts:  &sql.TxOptions{Isolation: isolation},
	}
}

func (s *Session) DB() *sql.DB {
	return s.db
}

func (s *Session) Dialect() Dialect {
	return s.dialect
}

func (s *Session) Close() error {
	return s.db.Close()
}

type txKey struct{}

// WithTransaction runs fn inside a transaction. If ctx already carries one,
// fn runs in it and commit or rollback is left to its owner. Otherwise a new
// transaction is committed when fn returns nil and rolled back on error or panic.
func (s *Session) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) (retErr error) {
	if s.InTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := s.db.BeginTx(ctx, s.txOpts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Session) InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sql.Tx)
	return ok
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn returns the caller's transaction if ctx carries one, the pool otherwise.
func (s *Session) conn(ctx context.Context) queryer {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}

func ParseIsolation(s string) (sql.IsolationLevel, error) {
	switch strings.ToLower(strings.ReplaceAll(s, " ", "_")) {
	case "", "default":
		return sql.LevelDefault, nil
	case "read_uncommitted":
		return sql.LevelReadUncommitted, nil
	case "read_committed":
		return sql.LevelReadCommitted, nil
	case "repeatable_read":
		return sql.LevelRepeatableRead, nil
	case "serializable":
		return sql.LevelSerializable, nil
	default:
		return sql.LevelDefault, fmt.Errorf("unsupported isolation level %q", s)
	}
}
