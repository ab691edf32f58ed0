package runner

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/rudderlabs/rudder-go-kit/config"
	"github.com/rudderlabs/rudder-go-kit/logger"
	"github.com/rudderlabs/rudder-go-kit/profiler"
	"github.com/rudderlabs/rudder-go-kit/stats"
	svcMetric "github.com/rudderlabs/rudder-go-kit/stats/metric"

	"github.com/rudderlabs/sheetsync/internal/api"
	"github.com/rudderlabs/sheetsync/internal/jobs"
	"github.com/rudderlabs/sheetsync/internal/pipeline"
	"github.com/rudderlabs/sheetsync/internal/repo"
	"github.com/rudderlabs/sheetsync/internal/schema"
	sqlmw "github.com/rudderlabs/sheetsync/internal/sqlquerywrapper"
	"github.com/rudderlabs/sheetsync/internal/tableops"
	"github.com/rudderlabs/sheetsync/services/bigquery"
	"github.com/rudderlabs/sheetsync/services/sheets"
	migrator "github.com/rudderlabs/sheetsync/services/sql-migrator"
)

const serviceName = "sheetsync"

// ReleaseInfo holds the release information
type ReleaseInfo struct {
	Version   string
	Commit    string
	BuildDate string
	BuiltBy   string
}

// Runner is responsible for running the application
type Runner struct {
	releaseInfo             ReleaseInfo
	logger                  logger.Logger
	gracefulShutdownTimeout time.Duration
}

// New creates and initializes a new Runner
func New(releaseInfo ReleaseInfo) *Runner {
	return &Runner{
		releaseInfo:             releaseInfo,
		logger:                  logger.NewLogger().Child("runner"),
		gracefulShutdownTimeout: config.GetDuration("GracefulShutdownTimeout", 15, time.Second),
	}
}

// Run runs the application and returns the exit code
func (r *Runner) Run(ctx context.Context, args []string) int {
	if len(args) > 1 && (args[1] == "-v" || args[1] == "version") {
		r.printVersion()
		return 0
	}

	path, err := config.Default.ConfigFileUsed()
	if err != nil {
		r.logger.Warnn("Config: Failed to parse config file, using default values",
			logger.NewStringField("path", path),
			logger.NewErrorField(err),
		)
	} else {
		r.logger.Infon("Config: Using config file", logger.NewStringField("path", path))
	}
	if err := config.Default.DotEnvLoaded(); err != nil {
		r.logger.Infon("Config: No .env file loaded", logger.NewErrorField(err))
	}

	statsOptions := []stats.Option{
		stats.WithServiceName(serviceName),
		stats.WithServiceVersion(r.releaseInfo.Version),
		stats.WithDefaultHistogramBuckets(defaultHistogramBuckets),
	}
	for histogramName, buckets := range customBuckets {
		statsOptions = append(statsOptions, stats.WithHistogramBuckets(histogramName, buckets))
	}
	stats.Default = stats.NewStats(config.Default, logger.Default, svcMetric.Instance, statsOptions...)
	if err := stats.Default.Start(ctx, stats.DefaultGoRoutineFactory); err != nil {
		r.logger.Errorn("Failed to start stats", logger.NewErrorField(err))
		return 1
	}

	stats.Default.NewTaggedStat("sheetsync_config", stats.GaugeType, stats.Tags{
		"version":   r.releaseInfo.Version,
		"commit":    r.releaseInfo.Commit,
		"buildDate": r.releaseInfo.BuildDate,
		"builtBy":   r.releaseInfo.BuiltBy,
	}).Gauge(1)

	db, err := r.setupDatabase(ctx, config.Default)
	if err != nil {
		r.logger.Errorn("Unable to prepare database", logger.NewErrorField(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	httpAPI, err := r.setupAPI(config.Default, db)
	if err != nil {
		r.logger.Errorn("Unable to set up components", logger.NewErrorField(err))
		return 1
	}

	g, ctx := errgroup.WithContext(ctx)

	if config.GetBool("Profiler.Enabled", true) {
		g.Go(func() error {
			return profiler.StartServer(ctx, config.GetInt("Profiler.Port", 7777))
		})
	}
	g.Go(func() error {
		if err := httpAPI.Start(ctx); err != nil {
			return fmt.Errorf("http server routine: %w", err)
		}
		return nil
	})

	shutdownDone := make(chan struct{})
	go func() {
		if err := g.Wait(); err != nil {
			r.logger.Errorn("Terminal error", logger.NewErrorField(err))
		}
		r.logger.Infon("Attempting to shutdown gracefully")
		close(shutdownDone)
	}()

	<-ctx.Done()
	ctxDoneTime := time.Now()

	select {
	case <-shutdownDone:
		r.logger.Infon("Graceful termination",
			logger.NewDurationField("elapsed", time.Since(ctxDoneTime)),
			logger.NewIntField("goroutines", int64(runtime.NumGoroutine())),
		)
		logger.Sync()
		stats.Default.Stop()
	case <-time.After(r.gracefulShutdownTimeout):
		r.logger.Errorn("Graceful termination failed, goroutine dump follows",
			logger.NewDurationField("elapsed", time.Since(ctxDoneTime)),
		)

		fmt.Print("\n\n")
		_ = pprof.Lookup("goroutine").WriteTo(os.Stdout, 1)
		fmt.Print("\n\n")

		logger.Sync()
		stats.Default.Stop()
		return 1
	}
	return 0
}

func (r *Runner) setupDatabase(ctx context.Context, conf *config.Config) (*sql.DB, error) {
	database, err := sql.Open("postgres", ConnectionString(conf))
	if err != nil {
		return nil, fmt.Errorf("could not open: %w", err)
	}
	database.SetMaxOpenConns(conf.GetInt("DB.maxOpenConnections", 10))

	if err := database.PingContext(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("could not ping: %w", err)
	}

	m := migrator.Migrator{
		Handle:          database,
		MigrationsTable: conf.GetString("SheetSync.migrationsTable", "sheetsync_migrations"),
	}
	if err := m.Migrate("configurations"); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}
	return database, nil
}

func (r *Runner) setupAPI(conf *config.Config, database *sql.DB) (*api.Api, error) {
	log := logger.NewLogger().Child(serviceName)

	db := sqlmw.New(database,
		sqlmw.WithLogger(log.Child("db")),
		sqlmw.WithSlowQueryThreshold(conf.GetDuration("DB.slowQueryThreshold", 5, time.Second)),
	)
	configurations := repo.NewConfigurations(db)

	storageRoot := conf.GetString("Storage.root", "uploads")
	if err := os.MkdirAll(storageRoot, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root %s: %w", storageRoot, err)
	}
	schemas := schema.NewLoader(afero.NewBasePathFs(afero.NewOsFs(), storageRoot))

	sheetsClient, err := sheets.New(log)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}

	transformer := pipeline.New(log, stats.Default, schemas, sheetsClient)
	ops := tableops.New(log, transformer, bigquery.New(log))
	runner := jobs.New(conf, log, stats.Default, configurations, ops)

	return api.New(conf, log, database, configurations, schemas, runner), nil
}

// ConnectionString builds the Postgres DSN from the DB.* keys.
func ConnectionString(conf *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s",
		conf.GetString("DB.host", "localhost"),
		conf.GetInt("DB.port", 5432),
		conf.GetString("DB.user", "sheetsync"),
		conf.GetString("DB.password", "sheetsync"),
		conf.GetString("DB.name", "sheetsync"),
		conf.GetString("DB.sslMode", "disable"),
		serviceName,
	)
}

func (r *Runner) printVersion() {
	fmt.Printf("Version: %s\nCommit: %s\nBuildDate: %s\nBuiltBy: %s\n",
		r.releaseInfo.Version,
		r.releaseInfo.Commit,
		r.releaseInfo.BuildDate,
		r.releaseInfo.BuiltBy,
	)
}
