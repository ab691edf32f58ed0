package model

import (
	"fmt"
	"strings"
)

// TableID is a fully qualified BigQuery table identifier.
type TableID struct {
	Project string
	Dataset string
	Table   string
}

// ParseTableID parses a `project.dataset.table` identifier. Any other shape,
// including empty segments, is rejected with ErrInvalidTableID.
func ParseTableID(s string) (TableID, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return TableID{}, fmt.Errorf("%w: expected 'project.dataset.table', got %q", ErrInvalidTableID, s)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return TableID{}, fmt.Errorf("%w: empty segment in %q", ErrInvalidTableID, s)
		}
	}
	return TableID{Project: parts[0], Dataset: parts[1], Table: parts[2]}, nil
}

func (t TableID) String() string {
	return t.Project + "." + t.Dataset + "." + t.Table
}
