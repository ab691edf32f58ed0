package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/rudderlabs/sheetsync/internal/model"
	"github.com/rudderlabs/sheetsync/internal/repo"
	sqlmw "github.com/rudderlabs/sheetsync/internal/sqlquerywrapper"
)

var columns = []string{
	"id", "title", "sheet_id", "header_range", "data_range",
	"bq_table_id", "schema_csv", "credential_path", "created_at", "updated_at",
}

func setup(t *testing.T) (*repo.Configurations, sqlmock.Sqlmock, time.Time) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})

	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	r := repo.NewConfigurations(sqlmw.New(db), repo.WithNow(func() time.Time { return now }))
	return r, mock, now
}

func TestConfigurations_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		r, mock, now := setup(t)
		mock.ExpectQuery(`SELECT .* FROM configurations WHERE id = \$1`).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				3, "members", "sheet-1", "A1:C1", "A2:C", "p.d.t", "members.csv", "credentials.json", now, now,
			))

		cfg, err := r.GetByID(ctx, 3)
		require.NoError(t, err)
		require.Equal(t, &model.Configuration{
			ID:               3,
			Title:            "members",
			SheetID:          "sheet-1",
			HeaderRange:      "A1:C1",
			DataRange:        "A2:C",
			WarehouseTableID: "p.d.t",
			SchemaFile:       "members.csv",
			CredentialPath:   "credentials.json",
			CreatedAt:        now,
			UpdatedAt:        now,
		}, cfg)
	})

	t.Run("not found", func(t *testing.T) {
		r, mock, _ := setup(t)
		mock.ExpectQuery(`SELECT .* FROM configurations WHERE id = \$1`).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows(columns))

		_, err := r.GetByID(ctx, 4)
		require.ErrorIs(t, err, model.ErrConfigurationNotFound)
	})
}

func TestConfigurations_List(t *testing.T) {
	r, mock, now := setup(t)
	mock.ExpectQuery(`SELECT .* FROM configurations ORDER BY title`).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(2, "alpha", "s", "A1", "A2", "p.d.a", "a.csv", "credentials.json", now, now).
			AddRow(1, "beta", "s", "A1", "A2", "p.d.b", "b.csv", "credentials.json", now, now))

	list, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "alpha", list[0].Title)
	require.Equal(t, "beta", list[1].Title)
}

func TestConfigurations_Add(t *testing.T) {
	ctx := context.Background()
	cfg := model.Configuration{
		Title:            "members",
		SheetID:          "sheet-1",
		HeaderRange:      "A1:C1",
		DataRange:        "A2:C",
		WarehouseTableID: "p.d.t",
	}

	t.Run("defaults are stored", func(t *testing.T) {
		r, mock, now := setup(t)
		mock.ExpectQuery(`INSERT INTO configurations`).
			WithArgs("members", "sheet-1", "A1:C1", "A2:C", "p.d.t", "schema_definition.csv", "credentials.json", now, now).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))

		id, err := r.Add(ctx, cfg)
		require.NoError(t, err)
		require.EqualValues(t, 9, id)
	})

	t.Run("duplicate title", func(t *testing.T) {
		r, mock, _ := setup(t)
		mock.ExpectQuery(`INSERT INTO configurations`).
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

		_, err := r.Add(ctx, cfg)
		require.ErrorIs(t, err, model.ErrDuplicateTitle)
	})

	t.Run("other errors", func(t *testing.T) {
		r, mock, _ := setup(t)
		mock.ExpectQuery(`INSERT INTO configurations`).WillReturnError(errors.New("connection reset"))

		_, err := r.Add(ctx, cfg)
		require.Error(t, err)
		require.NotErrorIs(t, err, model.ErrDuplicateTitle)
	})
}

func TestConfigurations_Update(t *testing.T) {
	ctx := context.Background()
	cfg := model.Configuration{
		ID:               5,
		Title:            "members",
		SheetID:          "sheet-2",
		HeaderRange:      "A1:C1",
		DataRange:        "A2:C",
		WarehouseTableID: "p.d.t",
		SchemaFile:       "members.csv",
		CredentialPath:   "credentials.json",
	}

	t.Run("updated", func(t *testing.T) {
		r, mock, now := setup(t)
		mock.ExpectExec(`UPDATE configurations SET`).
			WithArgs("members", "sheet-2", "A1:C1", "A2:C", "p.d.t", "members.csv", "credentials.json", now, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, r.Update(ctx, cfg))
	})

	t.Run("missing", func(t *testing.T) {
		r, mock, _ := setup(t)
		mock.ExpectExec(`UPDATE configurations SET`).WillReturnResult(sqlmock.NewResult(0, 0))

		require.ErrorIs(t, r.Update(ctx, cfg), model.ErrConfigurationNotFound)
	})
}

func TestConfigurations_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		r, mock, _ := setup(t)
		mock.ExpectExec(`DELETE FROM configurations WHERE id = \$1`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, r.Delete(ctx, 5))
	})

	t.Run("missing", func(t *testing.T) {
		r, mock, _ := setup(t)
		mock.ExpectExec(`DELETE FROM configurations WHERE id = \$1`).
			WithArgs(int64(6)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.ErrorIs(t, r.Delete(ctx, 6), model.ErrConfigurationNotFound)
	})
}
