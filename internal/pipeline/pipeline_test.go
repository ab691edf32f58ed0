package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rudderlabs/rudder-go-kit/logger"
	"github.com/rudderlabs/rudder-go-kit/stats"
	"github.com/rudderlabs/rudder-go-kit/stats/memstats"

	"github.com/rudderlabs/sheetsync/internal/joblog"
	"github.com/rudderlabs/sheetsync/internal/model"
	"github.com/rudderlabs/sheetsync/internal/pipeline"
	"github.com/rudderlabs/sheetsync/internal/schema"
	mocksheets "github.com/rudderlabs/sheetsync/mocks/services/sheets"
)

const (
	membersSchema = "기존 컬럼명,영어 컬럼명,데이터 타입\n" +
		"이름,name,STRING\n" +
		"나이,age,INTEGER\n" +
		"가입일,signup_date,DATE\n"

	duplicateSchema = "기존 컬럼명,영어 컬럼명,데이터 타입\n" +
		"이름,name,STRING\n" +
		"별명,name,STRING\n"
)

var membersConfig = model.Configuration{
	ID:               1,
	Title:            "members",
	SheetID:          "sheet-1",
	HeaderRange:      "Sheet1!A1:C1",
	DataRange:        "Sheet1!A2:C",
	WarehouseTableID: "project.dataset.members",
	SchemaFile:       "members.csv",
	CredentialPath:   "credentials.json",
}

type testEnv struct {
	pipeline   *pipeline.Pipeline
	sheets     *mocksheets.MockRangeFetcher
	statsStore *memstats.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "members.csv", []byte(membersSchema), 0o644))
	require.NoError(t, afero.WriteFile(fs, "duplicate.csv", []byte(duplicateSchema), 0o644))

	statsStore, err := memstats.New()
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	sheets := mocksheets.NewMockRangeFetcher(ctrl)

	return &testEnv{
		pipeline:   pipeline.New(logger.NOP, statsStore, schema.NewLoader(fs), sheets),
		sheets:     sheets,
		statsStore: statsStore,
	}
}

func (e *testEnv) expectRanges(header, data [][]string) {
	e.sheets.EXPECT().FetchRange(gomock.Any(), "credentials.json", "sheet-1", "Sheet1!A1:C1").Return(header, nil)
	e.sheets.EXPECT().FetchRange(gomock.Any(), "credentials.json", "sheet-1", "Sheet1!A2:C").Return(data, nil)
}

func TestPipeline_Transform(t *testing.T) {
	ctx := context.Background()

	t.Run("korean header with three columns", func(t *testing.T) {
		env := newTestEnv(t)
		env.expectRanges(
			[][]string{{"이름", "나이", "가입일"}},
			[][]string{
				{"홍길동", "30", "2023-01-15"},
				{"김철수", "abc", ""},
			},
		)

		jl := joblog.New()
		table, err := env.pipeline.Transform(ctx, membersConfig, jl)
		require.NoError(t, err)

		require.Equal(t, []model.Column{
			{Name: "name", Type: model.TypeString},
			{Name: "age", Type: model.TypeInteger},
			{Name: "signup_date", Type: model.TypeDate},
		}, table.Columns)
		require.Equal(t, []model.Row{
			{
				{Name: "name", Value: model.StringValue("홍길동")},
				{Name: "age", Value: model.IntValue(30)},
				{Name: "signup_date", Value: model.DateValue(civil.Date{Year: 2023, Month: time.January, Day: 15})},
			},
			{
				{Name: "name", Value: model.StringValue("김철수")},
				{Name: "age", Value: model.Null()},
				{Name: "signup_date", Value: model.Null()},
			},
		}, table.Rows)

		require.EqualValues(t, 1, env.statsStore.Get("sheetsync_degraded_cells", stats.Tags{
			"tableId": "project.dataset.members",
			"column":  "age",
		}).LastValue())
		require.NotEmpty(t, jl.Lines())
	})

	t.Run("short rows are padded", func(t *testing.T) {
		env := newTestEnv(t)
		env.expectRanges(
			[][]string{{"이름", "나이", "가입일"}},
			[][]string{{"홍길동"}},
		)

		table, err := env.pipeline.Transform(ctx, membersConfig, joblog.New())
		require.NoError(t, err)
		require.Equal(t, 1, table.NumRows())
		age, ok := table.Rows[0].Get("age")
		require.True(t, ok)
		require.True(t, age.IsNull())
	})

	t.Run("invalid table id makes no remote call", func(t *testing.T) {
		env := newTestEnv(t)
		cfg := membersConfig
		cfg.WarehouseTableID = "dataset.members"

		jl := joblog.New()
		_, err := env.pipeline.Transform(ctx, cfg, jl)
		require.ErrorIs(t, err, model.ErrInvalidTableID)
		require.Equal(t, model.KindInvalidTableID, model.ErrorKind(err))
		require.Len(t, jl.Lines(), 1)
	})

	t.Run("missing schema file", func(t *testing.T) {
		env := newTestEnv(t)
		cfg := membersConfig
		cfg.SchemaFile = "missing.csv"

		_, err := env.pipeline.Transform(ctx, cfg, joblog.New())
		require.ErrorIs(t, err, model.ErrSchemaFileNotFound)
	})

	t.Run("duplicate target column", func(t *testing.T) {
		env := newTestEnv(t)
		cfg := membersConfig
		cfg.SchemaFile = "duplicate.csv"

		_, err := env.pipeline.Transform(ctx, cfg, joblog.New())
		require.ErrorIs(t, err, model.ErrDuplicateColumn)
		require.ErrorIs(t, err, model.ErrSchemaValidation)
	})

	t.Run("empty data range", func(t *testing.T) {
		env := newTestEnv(t)
		env.expectRanges([][]string{{"이름", "나이", "가입일"}}, nil)

		jl := joblog.New()
		_, err := env.pipeline.Transform(ctx, membersConfig, jl)
		require.ErrorIs(t, err, model.ErrEmptySource)
		require.Equal(t, model.KindEmptySource, model.ErrorKind(err))

		lines := jl.Lines()
		require.Len(t, lines, 3)
		require.Contains(t, lines[1], "fetching header range Sheet1!A1:C1 and data range Sheet1!A2:C from sheet sheet-1")
		require.Contains(t, lines[2], "data range Sheet1!A2:C is empty")
	})

	t.Run("header out of order", func(t *testing.T) {
		env := newTestEnv(t)
		env.expectRanges(
			[][]string{{"나이", "이름", "가입일"}},
			[][]string{{"30", "홍길동", "2023-01-15"}},
		)

		_, err := env.pipeline.Transform(ctx, membersConfig, joblog.New())
		require.ErrorIs(t, err, model.ErrSchemaMismatch)

		var mismatch *model.SchemaMismatchError
		require.True(t, errors.As(err, &mismatch))
		require.Equal(t, []string{"나이", "이름", "가입일"}, mismatch.Header)
		require.Equal(t, []string{"이름", "나이", "가입일"}, mismatch.Expected)
	})

	t.Run("row wider than header", func(t *testing.T) {
		env := newTestEnv(t)
		env.expectRanges(
			[][]string{{"이름", "나이", "가입일"}},
			[][]string{{"홍길동", "30", "2023-01-15", "extra"}},
		)

		_, err := env.pipeline.Transform(ctx, membersConfig, joblog.New())
		require.ErrorIs(t, err, model.ErrSchemaMismatch)
	})

	t.Run("header fetch fails", func(t *testing.T) {
		env := newTestEnv(t)
		env.sheets.EXPECT().
			FetchRange(gomock.Any(), "credentials.json", "sheet-1", "Sheet1!A1:C1").
			Return(nil, &model.RemoteError{Op: "fetching range Sheet1!A1:C1", Err: errors.New("status 403: forbidden")})

		_, err := env.pipeline.Transform(ctx, membersConfig, joblog.New())
		require.ErrorIs(t, err, model.ErrRemoteFailure)
		require.Equal(t, model.KindRemoteFailure, model.ErrorKind(err))
	})
}

func TestPipeline_Descriptor(t *testing.T) {
	env := newTestEnv(t)

	id, d, err := env.pipeline.Descriptor(membersConfig, joblog.New())
	require.NoError(t, err)
	require.Equal(t, model.TableID{Project: "project", Dataset: "dataset", Table: "members"}, id)
	require.Equal(t, []string{"name", "age", "signup_date"}, d.Targets())
}
