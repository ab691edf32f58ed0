package bigquery_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/rudderlabs/rudder-go-kit/logger"

	"github.com/rudderlabs/sheetsync/internal/model"
	sbq "github.com/rudderlabs/sheetsync/services/bigquery"
	bqhelper "github.com/rudderlabs/sheetsync/services/bigquery/testhelper"
)

func TestTableSchema(t *testing.T) {
	schema := sbq.TableSchema([]model.Column{
		{Name: "name", Type: model.TypeString},
		{Name: "age", Type: model.TypeInteger},
		{Name: "score", Type: model.TypeFloat},
		{Name: "birth_date", Type: model.TypeDate},
		{Name: "signup_at", Type: model.TypeDateTime},
		{Name: "wake_time", Type: model.TypeTime},
		{Name: "active", Type: model.TypeBool},
		{Name: "notes", Type: model.DataType("JSON")},
	})

	got := make([]string, 0, len(schema))
	for _, f := range schema {
		got = append(got, f.Name+":"+string(f.Type))
	}
	require.Equal(t, []string{
		"name:STRING",
		"age:INTEGER",
		"score:FLOAT",
		"birth_date:DATE",
		"signup_at:DATETIME",
		"wake_time:TIME",
		"active:BOOLEAN",
		"notes:STRING",
	}, got)
}

func TestEncodeRows(t *testing.T) {
	table := &model.TypedTable{
		Columns: []model.Column{
			{Name: "name", Type: model.TypeString},
			{Name: "age", Type: model.TypeInteger},
			{Name: "birth_date", Type: model.TypeDate},
			{Name: "active", Type: model.TypeBool},
		},
		Rows: []model.Row{
			{
				{Name: "name", Value: model.StringValue("홍길동")},
				{Name: "age", Value: model.IntValue(30)},
				{Name: "birth_date", Value: model.DateValue(civil.Date{Year: 2023, Month: time.January, Day: 15})},
				{Name: "active", Value: model.BoolValue(true)},
			},
			{
				{Name: "name", Value: model.StringValue("김철수")},
				{Name: "age", Value: model.Null()},
				{Name: "birth_date", Value: model.Null()},
				{Name: "active", Value: model.BoolValue(false)},
			},
		},
	}

	data, err := sbq.EncodeRows(table)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	require.JSONEq(t, `{"name":"홍길동","age":30,"birth_date":"2023-01-15","active":true}`, lines[0])
	require.JSONEq(t, `{"name":"김철수","active":false}`, lines[1])
}

func TestEncodeRows_Empty(t *testing.T) {
	data, err := sbq.EncodeRows(&model.TypedTable{})
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestClient_ConnectFailure(t *testing.T) {
	c := sbq.New(logger.NOP, sbq.WithConnector(func(context.Context, string, string) (*bigquery.Client, error) {
		return nil, fmt.Errorf("no credentials")
	}))
	id := model.TableID{Project: "p", Dataset: "d", Table: "t"}

	err := c.DeleteTableIfExists(context.Background(), "credentials.json", id)
	require.ErrorIs(t, err, model.ErrRemoteFailure)

	err = c.CreateTable(context.Background(), "credentials.json", id, []model.Column{{Name: "a", Type: model.TypeString}})
	require.ErrorIs(t, err, model.ErrRemoteFailure)

	_, err = c.LoadRows(context.Background(), "credentials.json", id, &model.TypedTable{}, sbq.Append)
	require.ErrorIs(t, err, model.ErrRemoteFailure)
}

func TestIntegration(t *testing.T) {
	bqhelper.SkipIfUnavailable(t)

	credentials, err := bqhelper.GetTestCredentials()
	require.NoError(t, err)
	credentialPath := bqhelper.CredentialsFile(t, credentials)

	ctx := context.Background()
	dataset := "sheetsync_test_" + strings.ReplaceAll(uuid.NewString(), "-", "_")

	db, err := bigquery.NewClient(ctx, credentials.ProjectID, option.WithCredentialsJSON([]byte(credentials.Credentials)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Dataset(dataset).Create(ctx, &bigquery.DatasetMetadata{Location: credentials.Location}))
	t.Cleanup(func() {
		require.NoError(t, db.Dataset(dataset).DeleteWithContents(context.Background()))
	})

	id := model.TableID{Project: credentials.ProjectID, Dataset: dataset, Table: "members"}
	columns := []model.Column{
		{Name: "name", Type: model.TypeString},
		{Name: "age", Type: model.TypeInteger},
	}
	table := &model.TypedTable{
		Columns: columns,
		Rows: []model.Row{
			{{Name: "name", Value: model.StringValue("a")}, {Name: "age", Value: model.IntValue(1)}},
			{{Name: "name", Value: model.StringValue("b")}, {Name: "age", Value: model.Null()}},
		},
	}

	c := sbq.New(logger.NOP)

	t.Run("delete missing table", func(t *testing.T) {
		require.NoError(t, c.DeleteTableIfExists(ctx, credentialPath, id))
	})
	t.Run("create is repeatable", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			require.NoError(t, c.DeleteTableIfExists(ctx, credentialPath, id))
			require.NoError(t, c.CreateTable(ctx, credentialPath, id, columns))
		}
		md, err := db.Dataset(dataset).Table(id.Table).Metadata(ctx)
		require.NoError(t, err)
		require.Len(t, md.Schema, 2)
	})
	t.Run("append then truncate", func(t *testing.T) {
		rows, err := c.LoadRows(ctx, credentialPath, id, table, sbq.Append)
		require.NoError(t, err)
		require.EqualValues(t, 2, rows)

		_, err = c.LoadRows(ctx, credentialPath, id, table, sbq.Append)
		require.NoError(t, err)
		require.Equal(t, 4, countRows(t, db, id))

		_, err = c.LoadRows(ctx, credentialPath, id, table, sbq.Truncate)
		require.NoError(t, err)
		require.Equal(t, 2, countRows(t, db, id))
	})
}

func countRows(t *testing.T, db *bigquery.Client, id model.TableID) int {
	t.Helper()

	q := db.Query(fmt.Sprintf("SELECT COUNT(*) FROM `%s`", id.String()))
	it, err := q.Read(context.Background())
	require.NoError(t, err)

	var row []bigquery.Value
	err = it.Next(&row)
	require.NoError(t, err)
	return int(row[0].(int64))
}
