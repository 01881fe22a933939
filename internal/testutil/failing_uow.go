package testutil

import (
	"context"
	"database/sql"
	"strings"
	"sync/atomic"

	"github.com/sahayak-edu/sahayak/internal/db"
)

// FailOnNthExecUoW behaves like db.SQLUnitOfWork but returns Err from the
// FailOn-th write (1-based). When Match is set only writes whose SQL
// contains it are counted. Reads always pass through.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Match  string
	Err    error

	execs atomic.Int32
}

// Execs reports how many counted writes were attempted across all
// transactions.
func (u *FailOnNthExecUoW) Execs() int {
	return int(u.execs.Load())
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewSQLUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &faultyTx{DBTX: tx, uow: u, seen: new(atomic.Int32)})
	})
}

type faultyTx struct {
	db.DBTX
	uow  *FailOnNthExecUoW
	seen *atomic.Int32
}

func (f *faultyTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.uow.Match == "" || strings.Contains(query, f.uow.Match) {
		f.uow.execs.Add(1)
		if f.seen.Add(1) == f.uow.FailOn {
			return nil, f.uow.Err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
