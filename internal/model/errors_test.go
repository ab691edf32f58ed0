package model_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rudderlabs/sheetsync/internal/model"
)

func TestErrorKind(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "invalid table id", err: fmt.Errorf("create: %w", model.ErrInvalidTableID), want: model.KindInvalidTableID},
		{name: "schema file", err: model.ErrSchemaFileNotFound, want: model.KindSchemaFileNotFound},
		{name: "duplicate column", err: &model.DuplicateColumnError{Column: "id"}, want: model.KindDuplicateColumn},
		{name: "schema validation", err: model.ErrSchemaValidation, want: model.KindSchemaValidation},
		{name: "mismatch", err: &model.SchemaMismatchError{Reason: "order"}, want: model.KindSchemaMismatch},
		{name: "empty source", err: model.ErrEmptySource, want: model.KindEmptySource},
		{name: "remote", err: &model.RemoteError{Op: "fetch", Err: errors.New("boom")}, want: model.KindRemoteFailure},
		{name: "remote timeout", err: &model.RemoteError{Op: "fetch", Err: context.DeadlineExceeded}, want: model.KindRemoteFailure},
		{name: "remote canceled", err: &model.RemoteError{Op: "fetch", Err: context.Canceled}, want: model.KindRemoteFailure},
		{name: "canceled", err: fmt.Errorf("waiting for a job slot: %w", context.Canceled), want: model.KindCanceled},
		{name: "unknown", err: errors.New("boom"), want: model.KindUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, model.ErrorKind(tc.err))
		})
	}
}

func TestDuplicateColumnError(t *testing.T) {
	err := fmt.Errorf("loading: %w", &model.DuplicateColumnError{Column: "name"})
	require.ErrorIs(t, err, model.ErrDuplicateColumn)
	require.ErrorIs(t, err, model.ErrSchemaValidation)
	require.Contains(t, err.Error(), `"name"`)
}

func TestSchemaMismatchError(t *testing.T) {
	err := &model.SchemaMismatchError{
		Header:   []string{"a", "b"},
		Expected: []string{"b", "a"},
		Reason:   "column 0 differs",
	}
	require.ErrorIs(t, err, model.ErrSchemaMismatch)
	require.Contains(t, err.Error(), "header=[a, b]")
	require.Contains(t, err.Error(), "expected=[b, a]")

	var target *model.SchemaMismatchError
	require.ErrorAs(t, fmt.Errorf("validate: %w", err), &target)
	require.Equal(t, []string{"a", "b"}, target.Header)
}
