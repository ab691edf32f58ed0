// Package jobs runs table operations for stored configurations and reports
// their outcome in a uniform result.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/rudderlabs/rudder-go-kit/config"
	"github.com/rudderlabs/rudder-go-kit/logger"
	"github.com/rudderlabs/rudder-go-kit/stats"
	kitsync "github.com/rudderlabs/rudder-go-kit/sync"
	obskit "github.com/rudderlabs/rudder-observability-kit/go/labels"

	"github.com/rudderlabs/sheetsync/internal/joblog"
	"github.com/rudderlabs/sheetsync/internal/logfield"
	"github.com/rudderlabs/sheetsync/internal/model"
	"github.com/rudderlabs/sheetsync/internal/tableops"
)

// Job names accepted by the runner.
const (
	CreateTable = "create_table"
	AppendData  = "append_data"
	UpdateData  = "update_data"
)

var Names = []string{CreateTable, AppendData, UpdateData}

const noConfiguration = "no valid configuration found"

type ConfigurationStore interface {
	GetByID(ctx context.Context, id int64) (*model.Configuration, error)
}

type Operations interface {
	CreateTable(ctx context.Context, cfg model.Configuration, jl *joblog.Log) (*tableops.CreateResult, error)
	AppendRows(ctx context.Context, cfg model.Configuration, jl *joblog.Log) (*tableops.LoadResult, error)
	ReplaceRows(ctx context.Context, cfg model.Configuration, jl *joblog.Log) (*tableops.LoadResult, error)
}

type Runner struct {
	logger       logger.Logger
	statsFactory stats.Stats
	store        ConfigurationStore
	ops          Operations
	now          func() time.Time

	slots       *semaphore.Weighted
	tableLocker *kitsync.PartitionLocker

	config struct {
		credentialPath    string
		maxConcurrent     int
		serializePerTable bool
	}
}

type Opt func(*Runner)

func WithNow(now func() time.Time) Opt {
	return func(r *Runner) {
		r.now = now
	}
}

func New(conf *config.Config, log logger.Logger, statsFactory stats.Stats, store ConfigurationStore, ops Operations, opts ...Opt) *Runner {
	r := &Runner{
		logger:       log.Child("jobs"),
		statsFactory: statsFactory,
		store:        store,
		ops:          ops,
		now:          time.Now,
		tableLocker:  kitsync.NewPartitionLocker(),
	}
	r.config.credentialPath = conf.GetString("Credentials.path", model.DefaultCredentialPath)
	r.config.maxConcurrent = conf.GetInt("Jobs.maxConcurrent", 4)
	r.config.serializePerTable = conf.GetBool("Jobs.serializePerTable", false)
	if r.config.maxConcurrent < 1 {
		r.config.maxConcurrent = 1
	}
	r.slots = semaphore.NewWeighted(int64(r.config.maxConcurrent))

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loads the configuration and runs the named job against it.
func (r *Runner) Run(ctx context.Context, job string, configurationID int64) *Result {
	jl := joblog.New(joblog.WithNow(r.now))
	if !validJob(job) {
		jl.Addf("unknown job %q", job)
		return failedResult(fmt.Sprintf("unknown job: %s", job), nil, jl.Lines())
	}

	cfg, err := r.store.GetByID(ctx, configurationID)
	if err != nil {
		if errors.Is(err, model.ErrConfigurationNotFound) {
			jl.Addf("configuration %d not found", configurationID)
			return failedResult(noConfiguration, nil, jl.Lines())
		}
		jl.Addf("loading configuration %d failed: %v", configurationID, err)
		return failedResult("loading configuration failed", err, jl.Lines())
	}
	return r.run(ctx, job, *cfg, jl)
}

// RunConfiguration runs the named job against cfg without a store lookup.
func (r *Runner) RunConfiguration(ctx context.Context, job string, cfg model.Configuration) *Result {
	jl := joblog.New(joblog.WithNow(r.now))
	if !validJob(job) {
		jl.Addf("unknown job %q", job)
		return failedResult(fmt.Sprintf("unknown job: %s", job), nil, jl.Lines())
	}
	return r.run(ctx, job, cfg, jl)
}

func (r *Runner) run(ctx context.Context, job string, cfg model.Configuration, jl *joblog.Log) *Result {
	// the process-wide credential file always wins over a stored one
	cfg.CredentialPath = ""
	cfg = cfg.WithDefaults(r.config.credentialPath)
	runID := uuid.NewString()

	log := r.logger.Withn(
		logger.NewStringField(logfield.JobName, job),
		logger.NewStringField(logfield.JobRunID, runID),
		logger.NewIntField(logfield.ConfigurationID, cfg.ID),
		logger.NewStringField(logfield.Title, cfg.Title),
		logger.NewStringField(logfield.TableID, cfg.WarehouseTableID),
	)

	if err := r.slots.Acquire(ctx, 1); err != nil {
		jl.Addf("job %s canceled while waiting: %v", job, err)
		return r.report(log, job, r.now(), failedResult(jobFailed(job), err, jl.Lines()), err)
	}
	defer r.slots.Release(1)

	if r.config.serializePerTable {
		r.tableLocker.Lock(cfg.WarehouseTableID)
		defer r.tableLocker.Unlock(cfg.WarehouseTableID)
	}

	start := r.now()
	jl.Addf("starting %s for %q", job, cfg.Title)
	log.Infon("Starting job")

	var (
		res *Result
		err error
	)
	switch job {
	case CreateTable:
		var created *tableops.CreateResult
		if created, err = r.ops.CreateTable(ctx, cfg, jl); err == nil {
			jl.Addf("%s finished", job)
			res = createdResult(cfg.WarehouseTableID, created, jl.Lines())
		}
	case AppendData:
		var loaded *tableops.LoadResult
		if loaded, err = r.ops.AppendRows(ctx, cfg, jl); err == nil {
			jl.Addf("%s finished", job)
			res = loadedResult("rows appended", loaded, jl.Lines())
		}
	case UpdateData:
		var loaded *tableops.LoadResult
		if loaded, err = r.ops.ReplaceRows(ctx, cfg, jl); err == nil {
			jl.Addf("%s finished", job)
			res = loadedResult("rows replaced", loaded, jl.Lines())
		}
	}
	if err != nil {
		jl.Addf("%s failed: %v", job, err)
		res = failedResult(jobFailed(job), err, jl.Lines())
	}
	return r.report(log, job, start, res, err)
}

func (r *Runner) report(log logger.Logger, job string, start time.Time, res *Result, err error) *Result {
	status := "success"
	if !res.Success {
		status = "failure"
	}
	duration := r.now().Sub(start)
	tags := stats.Tags{"job": job, "status": status}
	r.statsFactory.NewTaggedStat("sheetsync_job_duration", stats.TimerType, tags).SendTiming(duration)
	r.statsFactory.NewTaggedStat("sheetsync_jobs_total", stats.CountType, tags).Increment()

	elapsed := logger.NewDurationField(logfield.Elapsed, duration)
	if err != nil {
		log.Errorn("Job failed",
			elapsed,
			logger.NewStringField(logfield.ErrorKind, res.ErrorKind),
			obskit.Error(err),
		)
		return res
	}

	rows := res.Rows()
	r.statsFactory.NewTaggedStat("sheetsync_rows_loaded", stats.CountType, stats.Tags{"job": job}).Count(rows)
	log.Infon("Job finished", elapsed, logger.NewIntField(logfield.Rows, int64(rows)))
	return res
}

func jobFailed(job string) string {
	return fmt.Sprintf("%s failed", job)
}

func validJob(job string) bool {
	return slices.Contains(Names, job)
}
