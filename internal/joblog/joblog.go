// Package joblog keeps the ordered stage log returned with every job result.
package joblog

import (
	"fmt"
	"sync"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

type Entry struct {
	At      time.Time
	Message string
}

func (e Entry) String() string {
	return "[" + e.At.Format(timestampLayout) + "] " + e.Message
}

// Log is an append-only sequence of timestamped entries.
type Log struct {
	mu      sync.Mutex
	now     func() time.Time
	entries []Entry
}

type Opt func(*Log)

func WithNow(now func() time.Time) Opt {
	return func(l *Log) {
		l.now = now
	}
}

func New(opts ...Opt) *Log {
	l := &Log{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Log) Addf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{At: l.now(), Message: fmt.Sprintf(format, args...)})
}

func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Lines renders the entries in insertion order.
func (l *Log) Lines() []string {
	entries := l.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.String()
	}
	return out
}
