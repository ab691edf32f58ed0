package joblog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rudderlabs/sheetsync/internal/joblog"
)

func TestLog(t *testing.T) {
	now := time.Date(2023, 1, 15, 9, 30, 0, 0, time.UTC)
	l := joblog.New(joblog.WithNow(func() time.Time {
		now = now.Add(time.Second)
		return now
	}))

	l.Addf("fetching %s", "Sheet1!A1:C1")
	l.Addf("done")

	require.Equal(t, []string{
		"[2023-01-15 09:30:01] fetching Sheet1!A1:C1",
		"[2023-01-15 09:30:02] done",
	}, l.Lines())

	entries := l.Entries()
	entries[0].Message = "changed"
	require.Equal(t, "fetching Sheet1!A1:C1", l.Entries()[0].Message)
}
