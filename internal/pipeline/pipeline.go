// Package pipeline turns a configured sheet range into a typed table.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rudderlabs/rudder-go-kit/logger"
	"github.com/rudderlabs/rudder-go-kit/stats"

	"github.com/rudderlabs/sheetsync/internal/coerce"
	"github.com/rudderlabs/sheetsync/internal/joblog"
	"github.com/rudderlabs/sheetsync/internal/logfield"
	"github.com/rudderlabs/sheetsync/internal/model"
	"github.com/rudderlabs/sheetsync/internal/validate"
)

type SchemaLoader interface {
	Load(name string) (*model.SchemaDescriptor, error)
}

//go:generate mockgen -destination=../../mocks/services/sheets/mock_sheets.go -package=mock_sheets github.com/rudderlabs/sheetsync/internal/pipeline RangeFetcher

type RangeFetcher interface {
	FetchRange(ctx context.Context, credentialPath, spreadsheetID, rng string) ([][]string, error)
}

type Pipeline struct {
	logger       logger.Logger
	statsFactory stats.Stats
	schemas      SchemaLoader
	sheets       RangeFetcher
}

func New(log logger.Logger, statsFactory stats.Stats, schemas SchemaLoader, sheets RangeFetcher) *Pipeline {
	return &Pipeline{
		logger:       log.Child("pipeline"),
		statsFactory: statsFactory,
		schemas:      schemas,
		sheets:       sheets,
	}
}

// Descriptor runs the gates that need no spreadsheet access: the table id
// shape, the descriptor presence and the descriptor shape.
func (p *Pipeline) Descriptor(cfg model.Configuration, jl *joblog.Log) (model.TableID, *model.SchemaDescriptor, error) {
	id, err := model.ParseTableID(cfg.WarehouseTableID)
	if err != nil {
		jl.Addf("invalid table id %q", cfg.WarehouseTableID)
		return model.TableID{}, nil, err
	}

	d, err := p.schemas.Load(cfg.SchemaFile)
	if err != nil {
		jl.Addf("loading schema %s failed: %v", cfg.SchemaFile, err)
		return model.TableID{}, nil, fmt.Errorf("loading schema: %w", err)
	}
	if err := validate.Descriptor(d); err != nil {
		jl.Addf("schema %s is invalid: %v", cfg.SchemaFile, err)
		return model.TableID{}, nil, err
	}
	jl.Addf("schema %s loaded with %d columns", cfg.SchemaFile, len(d.Mappings))
	return id, d, nil
}

// Transform fetches the configured ranges, validates them against the schema
// descriptor and coerces every cell. It stops at the first failing gate.
func (p *Pipeline) Transform(ctx context.Context, cfg model.Configuration, jl *joblog.Log) (*model.TypedTable, error) {
	id, d, err := p.Descriptor(cfg, jl)
	if err != nil {
		return nil, err
	}

	raw, err := p.fetch(ctx, cfg, jl)
	if err != nil {
		return nil, err
	}

	if err := validate.Header(raw.Header, d); err != nil {
		jl.Addf("header check failed: %v", err)
		return nil, err
	}
	if err := validate.Rows(raw); err != nil {
		jl.Addf("row check failed: %v", err)
		return nil, err
	}
	jl.Addf("header matches schema")

	table, degradedCells := build(raw, d)
	jl.Addf("converted %d rows and %d columns", table.NumRows(), table.NumColumns())

	log := p.logger.Withn(
		logger.NewStringField(logfield.TableID, id.String()),
		logger.NewStringField(logfield.SchemaFile, cfg.SchemaFile),
	)
	for _, dc := range degradedCells {
		jl.Addf("column %s: %d cells could not be converted", dc.column, dc.cells)
		log.Warnn("Degraded cells",
			logger.NewStringField("column", dc.column),
			logger.NewIntField(logfield.DegradedCells, int64(dc.cells)),
		)
		p.statsFactory.NewTaggedStat("sheetsync_degraded_cells", stats.CountType, stats.Tags{
			"tableId": id.String(),
			"column":  dc.column,
		}).Count(dc.cells)
	}
	return table, nil
}

func (p *Pipeline) fetch(ctx context.Context, cfg model.Configuration, jl *joblog.Log) (*model.RawTable, error) {
	jl.Addf("fetching header range %s and data range %s from sheet %s", cfg.HeaderRange, cfg.DataRange, cfg.SheetID)
	headerRows, err := p.sheets.FetchRange(ctx, cfg.CredentialPath, cfg.SheetID, cfg.HeaderRange)
	if err != nil {
		jl.Addf("fetching header range %s failed: %v", cfg.HeaderRange, err)
		return nil, fmt.Errorf("fetching header: %w", err)
	}
	dataRows, err := p.sheets.FetchRange(ctx, cfg.CredentialPath, cfg.SheetID, cfg.DataRange)
	if err != nil {
		jl.Addf("fetching data range %s failed: %v", cfg.DataRange, err)
		return nil, fmt.Errorf("fetching data: %w", err)
	}
	if len(dataRows) == 0 {
		jl.Addf("data range %s is empty", cfg.DataRange)
		return nil, fmt.Errorf("range %s: %w", cfg.DataRange, model.ErrEmptySource)
	}

	var header []string
	if len(headerRows) > 0 {
		header = headerRows[0]
	}
	jl.Addf("fetched %d header columns and %d data rows", len(header), len(dataRows))
	return &model.RawTable{Header: header, Rows: dataRows}, nil
}

type degradedColumn struct {
	column string
	cells  int
}

// build renames the validated columns positionally and coerces them in
// descriptor order. Target columns missing from the sheet are skipped.
func build(raw *model.RawTable, d *model.SchemaDescriptor) (*model.TypedTable, []degradedColumn) {
	index := make(map[string]int, len(raw.Header))
	for i := range raw.Header {
		if i < len(d.Mappings) {
			index[d.Mappings[i].Target] = i
		}
	}

	table := &model.TypedTable{Rows: make([]model.Row, len(raw.Rows))}
	for i := range table.Rows {
		table.Rows[i] = make(model.Row, 0, len(d.Mappings))
	}

	var degradedCells []degradedColumn
	for _, m := range d.Mappings {
		pos, ok := index[m.Target]
		if !ok {
			continue
		}
		cells := make([]string, len(raw.Rows))
		for i, row := range raw.Rows {
			if pos < len(row) {
				cells[i] = row[pos]
			}
		}

		values, degraded := coerce.Column(m.Type, cells)
		if degraded > 0 {
			degradedCells = append(degradedCells, degradedColumn{column: m.Target, cells: degraded})
		}
		table.Columns = append(table.Columns, model.Column{Name: m.Target, Type: m.Type})
		for i, v := range values {
			table.Rows[i] = append(table.Rows[i], model.Field{Name: m.Target, Value: v})
		}
	}
	return table, degradedCells
}
