package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/rudderlabs/sheetsync/internal/model"
	sqlmw "github.com/rudderlabs/sheetsync/internal/sqlquerywrapper"
)

const (
	configurationsTableName = "configurations"
	configurationsColumns   = `
		id,
		title,
		sheet_id,
		header_range,
		data_range,
		bq_table_id,
		schema_csv,
		credential_path,
		created_at,
		updated_at
	`
	uniqueViolation = "23505"
)

type Configurations repo

func NewConfigurations(db *sqlmw.DB, opts ...Opt) *Configurations {
	r := &Configurations{
		db: db,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt((*repo)(r))
	}
	return r
}

// GetByID returns model.ErrConfigurationNotFound when no row has the id.
func (c *Configurations) GetByID(ctx context.Context, id int64) (*model.Configuration, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT
			`+configurationsColumns+`
		FROM
			`+configurationsTableName+`
		WHERE
			id = $1;
	`,
		id,
	)

	var cfg model.Configuration
	err := scanConfiguration(row.Scan, &cfg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("configuration %d: %w", id, model.ErrConfigurationNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning configuration: %w", err)
	}
	return &cfg, nil
}

// List returns every configuration ordered by title.
func (c *Configurations) List(ctx context.Context) ([]model.Configuration, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT
			`+configurationsColumns+`
		FROM
			`+configurationsTableName+`
		ORDER BY
			title;
	`)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var configurations []model.Configuration
	for rows.Next() {
		var cfg model.Configuration
		if err := scanConfiguration(rows.Scan, &cfg); err != nil {
			return nil, fmt.Errorf("scanning configuration: %w", err)
		}
		configurations = append(configurations, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating configurations: %w", err)
	}
	return configurations, nil
}

// Add stores cfg and returns its id. Titles are unique.
func (c *Configurations) Add(ctx context.Context, cfg model.Configuration) (int64, error) {
	cfg = cfg.WithDefaults(cfg.CredentialPath)
	now := c.now()

	var id int64
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO `+configurationsTableName+` (
		  title, sheet_id, header_range, data_range,
		  bq_table_id, schema_csv, credential_path,
		  created_at, updated_at
		)
		VALUES
		  ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id;
	`,
		cfg.Title,
		cfg.SheetID,
		cfg.HeaderRange,
		cfg.DataRange,
		cfg.WarehouseTableID,
		cfg.SchemaFile,
		cfg.CredentialPath,
		now,
		now,
	).Scan(&id)
	if err != nil {
		return 0, translate(err, cfg.Title)
	}
	return id, nil
}

// Update overwrites the stored configuration with the same id.
func (c *Configurations) Update(ctx context.Context, cfg model.Configuration) error {
	cfg = cfg.WithDefaults(cfg.CredentialPath)

	result, err := c.db.ExecContext(ctx, `
		UPDATE
			`+configurationsTableName+`
		SET
			title = $1,
			sheet_id = $2,
			header_range = $3,
			data_range = $4,
			bq_table_id = $5,
			schema_csv = $6,
			credential_path = $7,
			updated_at = $8
		WHERE
			id = $9;
	`,
		cfg.Title,
		cfg.SheetID,
		cfg.HeaderRange,
		cfg.DataRange,
		cfg.WarehouseTableID,
		cfg.SchemaFile,
		cfg.CredentialPath,
		c.now(),
		cfg.ID,
	)
	if err != nil {
		return translate(err, cfg.Title)
	}
	return expectOne(result, cfg.ID)
}

func (c *Configurations) Delete(ctx context.Context, id int64) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM
			`+configurationsTableName+`
		WHERE
			id = $1;
	`,
		id,
	)
	if err != nil {
		return fmt.Errorf("executing: %w", err)
	}
	return expectOne(result, id)
}

func expectOne(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("configuration %d: %w", id, model.ErrConfigurationNotFound)
	}
	return nil
}

func translate(err error, title string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("title %q: %w", title, model.ErrDuplicateTitle)
	}
	return fmt.Errorf("executing: %w", err)
}

func scanConfiguration(scan scanFn, cfg *model.Configuration) error {
	if err := scan(
		&cfg.ID,
		&cfg.Title,
		&cfg.SheetID,
		&cfg.HeaderRange,
		&cfg.DataRange,
		&cfg.WarehouseTableID,
		&cfg.SchemaFile,
		&cfg.CredentialPath,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	); err != nil {
		return err
	}
	cfg.CreatedAt = cfg.CreatedAt.UTC()
	cfg.UpdatedAt = cfg.UpdatedAt.UTC()
	return nil
}
