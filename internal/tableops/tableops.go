// Package tableops implements the create, append and replace operations on a
// configured warehouse table.
package tableops

import (
	"context"
	"fmt"

	"github.com/rudderlabs/rudder-go-kit/logger"

	"github.com/rudderlabs/sheetsync/internal/joblog"
	"github.com/rudderlabs/sheetsync/internal/logfield"
	"github.com/rudderlabs/sheetsync/internal/model"
	"github.com/rudderlabs/sheetsync/services/bigquery"
)

//go:generate mockgen -destination=../../mocks/services/bigquery/mock_bigquery.go -package=mock_bigquery github.com/rudderlabs/sheetsync/internal/tableops Warehouse

type Warehouse interface {
	DeleteTableIfExists(ctx context.Context, credentialPath string, id model.TableID) error
	CreateTable(ctx context.Context, credentialPath string, id model.TableID, columns []model.Column) error
	LoadRows(ctx context.Context, credentialPath string, id model.TableID, table *model.TypedTable, mode bigquery.WriteMode) (int64, error)
}

type Transformer interface {
	Descriptor(cfg model.Configuration, jl *joblog.Log) (model.TableID, *model.SchemaDescriptor, error)
	Transform(ctx context.Context, cfg model.Configuration, jl *joblog.Log) (*model.TypedTable, error)
}

type CreateResult struct {
	ColumnsCount int
	Columns      []string
}

type LoadResult struct {
	RowsProcessed    int
	ColumnsProcessed int
}

type Operations struct {
	logger      logger.Logger
	transformer Transformer
	warehouse   Warehouse
}

func New(log logger.Logger, transformer Transformer, warehouse Warehouse) *Operations {
	return &Operations{
		logger:      log.Child("tableops"),
		transformer: transformer,
		warehouse:   warehouse,
	}
}

// CreateTable drops the destination table if present and recreates it empty
// with the descriptor columns. Running it twice yields the same table.
func (o *Operations) CreateTable(ctx context.Context, cfg model.Configuration, jl *joblog.Log) (*CreateResult, error) {
	id, d, err := o.transformer.Descriptor(cfg, jl)
	if err != nil {
		return nil, err
	}
	columns := d.Columns()

	if err := o.warehouse.DeleteTableIfExists(ctx, cfg.CredentialPath, id); err != nil {
		jl.Addf("dropping table %s failed: %v", id, err)
		return nil, fmt.Errorf("dropping table: %w", err)
	}
	jl.Addf("dropped table %s if it existed", id)

	if err := o.warehouse.CreateTable(ctx, cfg.CredentialPath, id, columns); err != nil {
		jl.Addf("creating table %s failed: %v", id, err)
		return nil, fmt.Errorf("creating table: %w", err)
	}
	jl.Addf("created table %s with %d columns", id, len(columns))

	o.logger.Infon("Table created",
		logger.NewStringField(logfield.TableID, id.String()),
		logger.NewIntField(logfield.Columns, int64(len(columns))),
	)

	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return &CreateResult{ColumnsCount: len(columns), Columns: names}, nil
}

// AppendRows loads the transformed sheet rows after the existing ones.
func (o *Operations) AppendRows(ctx context.Context, cfg model.Configuration, jl *joblog.Log) (*LoadResult, error) {
	return o.load(ctx, cfg, jl, bigquery.Append)
}

// ReplaceRows overwrites the table contents with the transformed sheet rows in
// a single load job.
func (o *Operations) ReplaceRows(ctx context.Context, cfg model.Configuration, jl *joblog.Log) (*LoadResult, error) {
	return o.load(ctx, cfg, jl, bigquery.Truncate)
}

func (o *Operations) load(ctx context.Context, cfg model.Configuration, jl *joblog.Log, mode bigquery.WriteMode) (*LoadResult, error) {
	table, err := o.transformer.Transform(ctx, cfg, jl)
	if err != nil {
		return nil, err
	}
	id, err := model.ParseTableID(cfg.WarehouseTableID)
	if err != nil {
		return nil, err
	}

	rows, err := o.warehouse.LoadRows(ctx, cfg.CredentialPath, id, table, mode)
	if err != nil {
		jl.Addf("loading rows into %s failed: %v", id, err)
		return nil, fmt.Errorf("loading rows: %w", err)
	}
	jl.Addf("loaded %d rows into %s (%s)", rows, id, mode)

	o.logger.Infon("Rows loaded",
		logger.NewStringField(logfield.TableID, id.String()),
		logger.NewStringField(logfield.WriteDisposition, string(mode)),
		logger.NewIntField(logfield.Rows, rows),
	)
	return &LoadResult{
		RowsProcessed:    table.NumRows(),
		ColumnsProcessed: table.NumColumns(),
	}, nil
}
