package model

import (
	"errors"
	"time"
)

const (
	DefaultSchemaFile     = "schema_definition.csv"
	DefaultCredentialPath = "credentials.json"
)

// Configuration binds a spreadsheet range to a destination table and the schema
// descriptor used to transform it.
type Configuration struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	SheetID          string    `json:"sheet_id"`
	HeaderRange      string    `json:"header_range"`
	DataRange        string    `json:"data_range"`
	WarehouseTableID string    `json:"bq_table_id"`
	SchemaFile       string    `json:"schema_csv"`
	CredentialPath   string    `json:"credential_path"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Validate checks the fields the store requires. The table id shape is checked
// by the jobs, not here.
func (c *Configuration) Validate() error {
	switch {
	case c.Title == "":
		return errors.New("title is required")
	case c.SheetID == "":
		return errors.New("sheet_id is required")
	case c.HeaderRange == "":
		return errors.New("header_range is required")
	case c.DataRange == "":
		return errors.New("data_range is required")
	case c.WarehouseTableID == "":
		return errors.New("bq_table_id is required")
	}
	return nil
}

// WithDefaults fills the schema file and credential path when empty.
func (c Configuration) WithDefaults(credentialPath string) Configuration {
	if c.SchemaFile == "" {
		c.SchemaFile = DefaultSchemaFile
	}
	if c.CredentialPath == "" {
		c.CredentialPath = credentialPath
	}
	if c.CredentialPath == "" {
		c.CredentialPath = DefaultCredentialPath
	}
	return c
}
