package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"log/slog"
)

// LockRepository hands out Postgres session advisory locks. A lock lives on a
// dedicated pooled connection and is held until the returned release func is
// called.
type LockRepository interface {
	TryLock(ctx context.Context, key int64) (release func(), acquired bool, err error)
}

type lockRepository struct {
	db *sql.DB
}

func NewLockRepository(db *sql.DB) LockRepository {
	return &lockRepository{db: db}
}

func (r *lockRepository) TryLock(ctx context.Context, key int64) (func(), bool, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		slog.Info(err.Error())
		return nil, false, err
	}

	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&acquired); err != nil {
		slog.Info(err.Error())
		conn.Close()
		return nil, false, err
	}

	if !acquired {
		conn.Close()
		return nil, false, nil
	}

	release := func() {
		// The caller's context may already be cancelled by now.
		if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", key); err != nil {
			slog.Info(err.Error())
			// The session may still hold the lock, so it must not go back to
			// the pool.
			_ = conn.Raw(func(any) error { return driver.ErrBadConn })
		}
		conn.Close()
	}
	return release, true, nil
}
