package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithTransaction_Commits(t *testing.T) {
	s, mock := newMockSession(t, MySQL)
	mock.ExpectBegin()
	mock.ExpectCommit()

	var inside bool
	err := s.WithTransaction(context.Background(), func(ctx context.Context) error {
		inside = s.InTransaction(ctx)
		return nil
	})

	require.NoError(t, err)
	require.True(t, inside)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	s, mock := newMockSession(t, MySQL)
	mock.ExpectBegin()
	mock.ExpectRollback()
	boom := errors.New("boom")

	err := s.WithTransaction(context.Background(), func(ctx context.Context) error {
		return boom
	})

	require.ErrorIs(t, err, boom)
}

func TestWithTransaction_RollsBackOnPanic(t *testing.T) {
	s, mock := newMockSession(t, MySQL)
	mock.ExpectBegin()
	mock.ExpectRollback()

	require.PanicsWithValue(t, "boom", func() {
		_ = s.WithTransaction(context.Background(), func(ctx context.Context) error {
			panic("boom")
		})
	})
}

func TestWithTransaction_JoinsCallerTransaction(t *testing.T) {
	s, mock := newMockSession(t, MySQL)
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	err := s.WithTransaction(context.Background(), func(outer context.Context) error {
		return s.WithTransaction(outer, func(inner context.Context) error {
			calls++
			require.True(t, s.InTransaction(inner))
			return nil
		})
	})

	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestWithTransaction_InnerErrorLeavesRollbackToOwner(t *testing.T) {
	s, mock := newMockSession(t, MySQL)
	mock.ExpectBegin()
	mock.ExpectRollback()
	boom := errors.New("boom")

	err := s.WithTransaction(context.Background(), func(outer context.Context) error {
		innerErr := s.WithTransaction(outer, func(context.Context) error { return boom })
		require.ErrorIs(t, innerErr, boom)
		return innerErr
	})

	require.ErrorIs(t, err, boom)
}

func TestWithTransaction_BeginError(t *testing.T) {
	s, mock := newMockSession(t, MySQL)
	mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

	called := false
	err := s.WithTransaction(context.Background(), func(context.Context) error {
		called = true
		return nil
	})

	require.ErrorContains(t, err, "begin transaction")
	require.False(t, called)
}

func TestWithTransaction_CommitError(t *testing.T) {
	s, mock := newMockSession(t, MySQL)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := s.WithTransaction(context.Background(), func(context.Context) error { return nil })

	require.ErrorContains(t, err, "commit transaction")
}

func TestInTransaction_PlainContext(t *testing.T) {
	s, _ := newMockSession(t, MySQL)

	require.False(t, s.InTransaction(context.Background()))
}

func TestParseIsolation(t *testing.T) {
	tests := map[string]sql.IsolationLevel{
		"":                 sql.LevelDefault,
		"default":          sql.LevelDefault,
		"read_uncommitted": sql.LevelReadUncommitted,
		"READ COMMITTED":   sql.LevelReadCommitted,
		"repeatable_read":  sql.LevelRepeatableRead,
		"serializable":     sql.LevelSerializable,
	}
	for in, want := range tests {
		got, err := ParseIsolation(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseIsolation("snapshot")
	require.Error(t, err)
}
