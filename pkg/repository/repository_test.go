package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/filmpulse/arbiter/pkg/repository"
)

var (
	errNotFound  = errors.New("not found")
	errDuplicate = errors.New("duplicate")
)

func TestMapError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		if got := repository.MapError(nil, errNotFound, errDuplicate); got != nil {
			t.Errorf("MapError(nil) = %v, want nil", got)
		}
	})

	t.Run("no rows maps to not found", func(t *testing.T) {
		got := repository.MapError(sql.ErrNoRows, errNotFound, errDuplicate)
		if !errors.Is(got, errNotFound) {
			t.Errorf("MapError(ErrNoRows) = %v, want not found", got)
		}
	})

	t.Run("wrapped no rows maps to not found", func(t *testing.T) {
		wrapped := errors.Join(errors.New("query one"), sql.ErrNoRows)
		got := repository.MapError(wrapped, errNotFound, errDuplicate)
		if !errors.Is(got, errNotFound) {
			t.Errorf("MapError(wrapped ErrNoRows) = %v, want not found", got)
		}
	})

	t.Run("unique violation maps to duplicate", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505"}
		got := repository.MapError(pgErr, errNotFound, errDuplicate)
		if !errors.Is(got, errDuplicate) {
			t.Errorf("MapError(23505) = %v, want duplicate", got)
		}
	})

	t.Run("other pg errors pass through", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23503"}
		got := repository.MapError(pgErr, errNotFound, errDuplicate)
		if !errors.Is(got, pgErr) {
			t.Errorf("MapError(23503) = %v, want original error", got)
		}
	})

	t.Run("unrelated errors pass through", func(t *testing.T) {
		cause := errors.New("connection reset")
		got := repository.MapError(cause, errNotFound, errDuplicate)
		if !errors.Is(got, cause) {
			t.Errorf("MapError = %v, want original error", got)
		}
	})
}

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

type fakeExecutor struct {
	result sql.Result
	err    error
}

func (e fakeExecutor) ExecContext(_ context.Context, _ string, _ ...any) (sql.Result, error) {
	return e.result, e.err
}

func TestExecExpectOne(t *testing.T) {
	ctx := context.Background()

	t.Run("one row affected succeeds", func(t *testing.T) {
		e := fakeExecutor{result: fakeResult{rows: 1}}
		if err := repository.ExecExpectOne(ctx, e, "UPDATE t SET x = $1", 1); err != nil {
			t.Errorf("ExecExpectOne = %v, want nil", err)
		}
	})

	t.Run("zero rows returns ErrNoRows", func(t *testing.T) {
		e := fakeExecutor{result: fakeResult{rows: 0}}
		err := repository.ExecExpectOne(ctx, e, "UPDATE t SET x = $1", 1)
		if !errors.Is(err, sql.ErrNoRows) {
			t.Errorf("ExecExpectOne = %v, want ErrNoRows", err)
		}
	})

	t.Run("exec failure propagates", func(t *testing.T) {
		cause := errors.New("exec failed")
		e := fakeExecutor{err: cause}
		err := repository.ExecExpectOne(ctx, e, "UPDATE t SET x = $1", 1)
		if !errors.Is(err, cause) {
			t.Errorf("ExecExpectOne = %v, want exec error", err)
		}
	})
}
