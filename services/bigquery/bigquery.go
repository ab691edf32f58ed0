// Package bigquery creates, drops and loads BigQuery tables for sheetsync.
package bigquery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/rudderlabs/rudder-go-kit/logger"

	"github.com/rudderlabs/sheetsync/internal/logfield"
	"github.com/rudderlabs/sheetsync/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// WriteMode selects how a load job treats existing rows.
type WriteMode string

const (
	Append   WriteMode = "WRITE_APPEND"
	Truncate WriteMode = "WRITE_TRUNCATE"
)

var dataTypesMap = map[model.DataType]bigquery.FieldType{
	model.TypeInteger:  bigquery.IntegerFieldType,
	model.TypeFloat:    bigquery.FloatFieldType,
	model.TypeDate:     bigquery.DateFieldType,
	model.TypeDateTime: bigquery.DateTimeFieldType,
	model.TypeTime:     bigquery.TimeFieldType,
	model.TypeBool:     bigquery.BooleanFieldType,
	model.TypeString:   bigquery.StringFieldType,
}

// Connector opens a BigQuery client for the given project.
type Connector func(ctx context.Context, projectID, credentialPath string) (*bigquery.Client, error)

type Client struct {
	logger  logger.Logger
	connect Connector
}

type Opt func(*Client)

// WithConnector replaces the default credentials-file connector.
func WithConnector(connect Connector) Opt {
	return func(c *Client) {
		c.connect = connect
	}
}

func New(log logger.Logger, opts ...Opt) *Client {
	c := &Client{
		logger:  log.Child("bigquery"),
		connect: Connect,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens a client authenticated with a service account file. An empty
// path falls back to application default credentials.
func Connect(ctx context.Context, projectID, credentialPath string) (*bigquery.Client, error) {
	var opts []option.ClientOption
	if credentialPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialPath))
	}
	return bigquery.NewClient(ctx, projectID, opts...)
}

// TableSchema maps descriptor columns to BigQuery fields, preserving order.
// Unknown types become STRING columns.
func TableSchema(columns []model.Column) bigquery.Schema {
	return lo.Map(columns, func(c model.Column, _ int) *bigquery.FieldSchema {
		fieldType, ok := dataTypesMap[c.Type]
		if !ok {
			fieldType = bigquery.StringFieldType
		}
		return &bigquery.FieldSchema{Name: c.Name, Type: fieldType}
	})
}

// DeleteTableIfExists drops the table. A missing table is not an error.
func (c *Client) DeleteTableIfExists(ctx context.Context, credentialPath string, id model.TableID) error {
	db, err := c.connect(ctx, id.Project, credentialPath)
	if err != nil {
		return &model.RemoteError{Op: "connecting to bigquery", Err: err}
	}
	defer func() { _ = db.Close() }()

	err = db.Dataset(id.Dataset).Table(id.Table).Delete(ctx)
	if err != nil && !isNotFound(err) {
		return &model.RemoteError{Op: "deleting table " + id.String(), Err: err}
	}
	c.logger.Debugn("Deleted table if it existed", logger.NewStringField(logfield.TableID, id.String()))
	return nil
}

// CreateTable creates an empty table with the given columns.
func (c *Client) CreateTable(ctx context.Context, credentialPath string, id model.TableID, columns []model.Column) error {
	db, err := c.connect(ctx, id.Project, credentialPath)
	if err != nil {
		return &model.RemoteError{Op: "connecting to bigquery", Err: err}
	}
	defer func() { _ = db.Close() }()

	c.logger.Infon("Creating table",
		logger.NewStringField(logfield.TableID, id.String()),
		logger.NewIntField(logfield.Columns, int64(len(columns))),
	)
	metaData := &bigquery.TableMetadata{Schema: TableSchema(columns)}
	if err := db.Dataset(id.Dataset).Table(id.Table).Create(ctx, metaData); err != nil {
		return &model.RemoteError{Op: "creating table " + id.String(), Err: err}
	}
	return nil
}

// LoadRows runs a load job with the typed rows and waits for it. It returns
// the number of rows the job reports as written.
func (c *Client) LoadRows(ctx context.Context, credentialPath string, id model.TableID, table *model.TypedTable, mode WriteMode) (int64, error) {
	db, err := c.connect(ctx, id.Project, credentialPath)
	if err != nil {
		return 0, &model.RemoteError{Op: "connecting to bigquery", Err: err}
	}
	defer func() { _ = db.Close() }()

	log := c.logger.Withn(
		logger.NewStringField(logfield.TableID, id.String()),
		logger.NewStringField(logfield.WriteDisposition, string(mode)),
	)

	data, err := EncodeRows(table)
	if err != nil {
		return 0, fmt.Errorf("encoding rows: %w", err)
	}

	source := bigquery.NewReaderSource(bytes.NewReader(data))
	source.SourceFormat = bigquery.JSON
	source.Schema = TableSchema(table.Columns)

	loader := db.Dataset(id.Dataset).Table(id.Table).LoaderFrom(source)
	loader.CreateDisposition = bigquery.CreateIfNeeded
	loader.WriteDisposition = writeDisposition(mode)

	log.Infon("Loading rows", logger.NewIntField(logfield.Rows, int64(table.NumRows())))
	job, err := loader.Run(ctx)
	if err != nil {
		return 0, &model.RemoteError{Op: "starting load job", Err: err}
	}

	log.Debugn("Waiting for load job to complete", logger.NewStringField("jobID", job.ID()))
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, &model.RemoteError{Op: "waiting for load job", Err: err}
	}
	if err := status.Err(); err != nil {
		return 0, &model.RemoteError{Op: "status for load job", Err: err}
	}

	rows := int64(table.NumRows())
	if status.Statistics != nil {
		if stats, ok := status.Statistics.Details.(*bigquery.LoadStatistics); ok {
			rows = stats.OutputRows
		}
	}
	log.Infon("Completed loading", logger.NewIntField(logfield.Rows, rows))
	return rows, nil
}

// EncodeRows renders the table as newline-delimited JSON. Null values are
// omitted from their row.
func EncodeRows(table *model.TypedTable) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, row := range table.Rows {
		record := make(map[string]any, len(row))
		for _, f := range row {
			if f.Value.IsNull() {
				continue
			}
			record[f.Name] = f.Value.Interface()
		}
		if err := enc.Encode(record); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return buf.Bytes(), nil
}

func writeDisposition(mode WriteMode) bigquery.TableWriteDisposition {
	if mode == Truncate {
		return bigquery.WriteTruncate
	}
	return bigquery.WriteAppend
}

func isNotFound(err error) bool {
	var e *googleapi.Error
	return errors.As(err, &e) && e.Code == http.StatusNotFound
}
