package sqlquerywrapper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/rudderlabs/rudder-go-kit/logger"

	"github.com/rudderlabs/sheetsync/internal/sqlquerywrapper"
)

type captureLogger struct {
	logger.Logger
	messages []string
}

func (c *captureLogger) Infon(msg string, _ ...logger.Field) {
	c.messages = append(c.messages, msg)
}

func TestQueryWrapper(t *testing.T) {
	testCases := []struct {
		name          string
		executionTime time.Duration
		wantLog       bool
	}{
		{name: "slow query", executionTime: 10 * time.Second, wantLog: true},
		{name: "fast query", executionTime: time.Millisecond, wantLog: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			t.Cleanup(func() { _ = db.Close() })

			log := &captureLogger{Logger: logger.NOP}
			qw := sqlquerywrapper.New(db,
				sqlquerywrapper.WithLogger(log),
				sqlquerywrapper.WithSlowQueryThreshold(5*time.Second),
				sqlquerywrapper.WithSince(func(time.Time) time.Duration { return tc.executionTime }),
			)

			mock.ExpectExec("DELETE FROM configurations").WillReturnResult(sqlmock.NewResult(0, 1))
			_, err = qw.ExecContext(context.Background(), "DELETE FROM configurations WHERE id = $1", 1)
			require.NoError(t, err)

			if tc.wantLog {
				require.Equal(t, []string{"Slow query"}, log.messages)
			} else {
				require.Empty(t, log.messages)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestWithTx(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE configurations").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		qw := sqlquerywrapper.New(db)
		err = qw.WithTx(context.Background(), func(tx *sqlquerywrapper.Tx) error {
			_, err := tx.ExecContext(context.Background(), "UPDATE configurations SET title = $1", "a")
			return err
		})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		mock.ExpectBegin()
		mock.ExpectRollback()

		qw := sqlquerywrapper.New(db)
		fnErr := errors.New("boom")
		err = qw.WithTx(context.Background(), func(*sqlquerywrapper.Tx) error {
			return fnErr
		})
		require.ErrorIs(t, err, fnErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
