package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTableID     = errors.New("invalid table id")
	ErrSchemaFileNotFound = errors.New("schema file not found")
	ErrSchemaValidation   = errors.New("schema validation failed")
	ErrDuplicateColumn    = errors.New("duplicate target column")
	ErrSchemaMismatch     = errors.New("sheet header does not match schema")
	ErrEmptySource        = errors.New("sheet has no data rows")
	ErrRemoteFailure      = errors.New("remote call failed")

	ErrConfigurationNotFound = errors.New("configuration not found")
	ErrDuplicateTitle        = errors.New("configuration title already exists")
)

// Error kinds reported to job callers.
const (
	KindInvalidTableID     = "InvalidTableId"
	KindSchemaFileNotFound = "SchemaFileNotFound"
	KindSchemaValidation   = "SchemaValidation"
	KindDuplicateColumn    = "DuplicateColumn"
	KindSchemaMismatch     = "SchemaMismatch"
	KindEmptySource        = "EmptySource"
	KindRemoteFailure      = "RemoteFailure"
	KindCanceled           = "Canceled"
	KindUnknown            = "Unknown"
)

// SchemaMismatchError carries the fetched header and the header expected by the
// schema descriptor.
type SchemaMismatchError struct {
	Header   []string
	Expected []string
	Reason   string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: %s: header=[%s] expected=[%s]",
		ErrSchemaMismatch.Error(),
		e.Reason,
		strings.Join(e.Header, ", "),
		strings.Join(e.Expected, ", "),
	)
}

func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// DuplicateColumnError is both a DuplicateColumn and a SchemaValidation error.
type DuplicateColumnError struct {
	Column string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("%s: %s: %q", ErrSchemaValidation.Error(), ErrDuplicateColumn.Error(), e.Column)
}

func (e *DuplicateColumnError) Is(target error) bool {
	return target == ErrDuplicateColumn || target == ErrSchemaValidation
}

// RemoteError wraps a transport error returned by the spreadsheet or the warehouse.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRemoteFailure.Error(), e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteFailure
}

// ErrorKind returns the taxonomy name of err.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRemoteFailure):
		return KindRemoteFailure
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrInvalidTableID):
		return KindInvalidTableID
	case errors.Is(err, ErrSchemaFileNotFound):
		return KindSchemaFileNotFound
	case errors.Is(err, ErrDuplicateColumn):
		return KindDuplicateColumn
	case errors.Is(err, ErrSchemaValidation):
		return KindSchemaValidation
	case errors.Is(err, ErrSchemaMismatch):
		return KindSchemaMismatch
	case errors.Is(err, ErrEmptySource):
		return KindEmptySource
	default:
		return KindUnknown
	}
}
