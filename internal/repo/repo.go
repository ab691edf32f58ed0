// Package repo persists sheetsync configurations in Postgres.
package repo

import (
	"time"

	sqlmw "github.com/rudderlabs/sheetsync/internal/sqlquerywrapper"
)

type repo struct {
	db  *sqlmw.DB
	now func() time.Time
}

type Opt func(*repo)

func WithNow(now func() time.Time) Opt {
	return func(r *repo) {
		r.now = now
	}
}

type scanFn func(dest ...any) error
