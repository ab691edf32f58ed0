// Package api exposes configurations, schema descriptors and jobs over HTTP.
package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/rudderlabs/rudder-go-kit/config"
	kithttputil "github.com/rudderlabs/rudder-go-kit/httputil"
	"github.com/rudderlabs/rudder-go-kit/logger"
	obskit "github.com/rudderlabs/rudder-observability-kit/go/labels"

	"github.com/rudderlabs/sheetsync/internal/jobs"
	"github.com/rudderlabs/sheetsync/internal/logfield"
	"github.com/rudderlabs/sheetsync/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxSchemaFileSize = 10 << 20

type configurationsRepo interface {
	GetByID(ctx context.Context, id int64) (*model.Configuration, error)
	List(ctx context.Context) ([]model.Configuration, error)
	Add(ctx context.Context, cfg model.Configuration) (int64, error)
	Update(ctx context.Context, cfg model.Configuration) error
	Delete(ctx context.Context, id int64) error
}

type schemaStore interface {
	List() ([]string, error)
	Save(name string, r io.Reader) (*model.SchemaDescriptor, error)
	Delete(name string) error
}

type jobRunner interface {
	Run(ctx context.Context, job string, configurationID int64) *jobs.Result
}

type Api struct {
	logger         logger.Logger
	db             *sql.DB
	configurations configurationsRepo
	schemas        schemaStore
	runner         jobRunner

	config struct {
		port              int
		readHeaderTimeout time.Duration
		healthTimeout     time.Duration
	}
}

func New(
	conf *config.Config,
	log logger.Logger,
	db *sql.DB,
	configurations configurationsRepo,
	schemas schemaStore,
	runner jobRunner,
) *Api {
	a := &Api{
		logger:         log.Child("api"),
		db:             db,
		configurations: configurations,
		schemas:        schemas,
		runner:         runner,
	}
	a.config.port = conf.GetInt("HTTP.port", 5050)
	a.config.readHeaderTimeout = conf.GetDuration("HTTP.readHeaderTimeout", 3, time.Second)
	a.config.healthTimeout = conf.GetDuration("HTTP.healthTimeout", 10, time.Second)
	return a
}

// Start serves the API until ctx is canceled.
func (a *Api) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: a.config.readHeaderTimeout,
	}
	a.logger.Infon("Starting HTTP server", logger.NewIntField("port", int64(a.config.port)))
	return kithttputil.ListenAndServe(ctx, srv)
}

// Handler returns the API routes.
//
// Implemented routes:
// - GET /health
// - GET, POST /v1/configurations
// - GET, PATCH, DELETE /v1/configurations/{id}
// - GET, POST /v1/schemas
// - DELETE /v1/schemas/{name}
// - POST /v1/jobs/{job}/{id}
func (a *Api) Handler() http.Handler {
	srvMux := chi.NewRouter()
	srvMux.Get("/health", a.healthHandler)

	srvMux.Route("/v1", func(r chi.Router) {
		r.Get("/configurations", a.listConfigurationsHandler)
		r.Post("/configurations", a.addConfigurationHandler)
		r.Get("/configurations/{id}", a.getConfigurationHandler)
		r.Patch("/configurations/{id}", a.updateConfigurationHandler)
		r.Delete("/configurations/{id}", a.deleteConfigurationHandler)

		r.Get("/schemas", a.listSchemasHandler)
		r.Post("/schemas", a.uploadSchemaHandler)
		r.Delete("/schemas/{name}", a.deleteSchemaHandler)

		r.Post("/jobs/{job}/{id}", a.runJobHandler)
	})
	return srvMux
}

func (a *Api) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), a.config.healthTimeout)
	defer cancel()

	if a.db != nil {
		if err := a.db.PingContext(ctx); err != nil {
			http.Error(w, "cannot connect to db", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"server": "UP", "db": "UP"})
}

func (a *Api) listConfigurationsHandler(w http.ResponseWriter, r *http.Request) {
	configurations, err := a.configurations.List(r.Context())
	if err != nil {
		a.logger.Errorn("listing configurations", obskit.Error(err))
		http.Error(w, "can't list configurations", http.StatusInternalServerError)
		return
	}
	if configurations == nil {
		configurations = []model.Configuration{}
	}
	writeJSON(w, http.StatusOK, configurations)
}

func (a *Api) getConfigurationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	cfg, err := a.configurations.GetByID(r.Context(), id)
	if err != nil {
		a.repoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (a *Api) addConfigurationHandler(w http.ResponseWriter, r *http.Request) {
	defer func() { _ = r.Body.Close() }()

	var cfg model.Configuration
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if err := cfg.Validate(); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %s", err.Error()), http.StatusBadRequest)
		return
	}
	cfg.CredentialPath = ""

	id, err := a.configurations.Add(r.Context(), cfg)
	if err != nil {
		a.repoError(w, err)
		return
	}

	created, err := a.configurations.GetByID(r.Context(), id)
	if err != nil {
		a.repoError(w, err)
		return
	}
	a.logger.Infon("Configuration added",
		logger.NewIntField(logfield.ConfigurationID, id),
		logger.NewStringField(logfield.Title, created.Title),
	)
	writeJSON(w, http.StatusCreated, created)
}

// configurationPatch holds the fields a PATCH may change. Absent fields keep
// their stored value.
type configurationPatch struct {
	Title            *string `json:"title"`
	SheetID          *string `json:"sheet_id"`
	HeaderRange      *string `json:"header_range"`
	DataRange        *string `json:"data_range"`
	WarehouseTableID *string `json:"bq_table_id"`
	SchemaFile       *string `json:"schema_csv"`
}

func (p configurationPatch) apply(cfg *model.Configuration) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&cfg.Title, p.Title)
	set(&cfg.SheetID, p.SheetID)
	set(&cfg.HeaderRange, p.HeaderRange)
	set(&cfg.DataRange, p.DataRange)
	set(&cfg.WarehouseTableID, p.WarehouseTableID)
	set(&cfg.SchemaFile, p.SchemaFile)
}

func (a *Api) updateConfigurationHandler(w http.ResponseWriter, r *http.Request) {
	defer func() { _ = r.Body.Close() }()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var patch configurationPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid JSON in request body", http.StatusBadRequest)
		return
	}

	cfg, err := a.configurations.GetByID(r.Context(), id)
	if err != nil {
		a.repoError(w, err)
		return
	}
	patch.apply(cfg)
	if err := cfg.Validate(); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %s", err.Error()), http.StatusBadRequest)
		return
	}

	if err := a.configurations.Update(r.Context(), *cfg); err != nil {
		a.repoError(w, err)
		return
	}

	updated, err := a.configurations.GetByID(r.Context(), id)
	if err != nil {
		a.repoError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *Api) deleteConfigurationHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := a.configurations.Delete(r.Context(), id); err != nil {
		a.repoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *Api) listSchemasHandler(w http.ResponseWriter, _ *http.Request) {
	names, err := a.schemas.List()
	if err != nil {
		a.logger.Errorn("listing schema files", obskit.Error(err))
		http.Error(w, "can't list schema files", http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (a *Api) uploadSchemaHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSchemaFileSize)
	file, header, err := r.FormFile("schema_file")
	if err != nil {
		http.Error(w, "missing schema_file", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	d, err := a.schemas.Save(header.Filename, file)
	if err != nil {
		if errors.Is(err, model.ErrSchemaValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		a.logger.Errorn("saving schema file", logger.NewStringField(logfield.SchemaFile, header.Filename), obskit.Error(err))
		http.Error(w, "can't save schema file", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"name":    header.Filename,
		"columns": d.Targets(),
	})
}

func (a *Api) deleteSchemaHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := a.schemas.Delete(name); err != nil {
		if errors.Is(err, model.ErrSchemaFileNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		a.logger.Errorn("deleting schema file", logger.NewStringField(logfield.SchemaFile, name), obskit.Error(err))
		http.Error(w, "can't delete schema file", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// runJobHandler always answers 200 with a job result; failures are reported
// in the body.
func (a *Api) runJobHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	res := a.runner.Run(r.Context(), chi.URLParam(r, "job"), id)
	writeJSON(w, http.StatusOK, res)
}

func (a *Api) repoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrConfigurationNotFound):
		http.Error(w, "configuration not found", http.StatusNotFound)
	case errors.Is(err, model.ErrDuplicateTitle):
		http.Error(w, "configuration title already exists", http.StatusConflict)
	default:
		a.logger.Errorn("configuration store", obskit.Error(err))
		http.Error(w, "can't access configurations", http.StatusInternalServerError)
	}
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "can't marshal response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
