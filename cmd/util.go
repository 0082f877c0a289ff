// Package cmd provides CLI commands for the nojoin tool.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Valtora/nojoin/config"
	"github.com/Valtora/nojoin/pkg/db"
	"github.com/Valtora/nojoin/pkg/logging"
	"github.com/Valtora/nojoin/pkg/observability"
	"github.com/Valtora/nojoin/pkg/pipeline"
	"github.com/Valtora/nojoin/pkg/recordings"
	"github.com/Valtora/nojoin/pkg/speakers"
	"github.com/Valtora/nojoin/pkg/transcript"
)

// Global flag state, applied on top of the loaded config.
var (
	flagOutput string
	flagDebug  bool
)

// RegisterGlobalFlags wires the persistent flags shared by every
// subcommand onto the root command.
func RegisterGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "Output format (text or json)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}

// App bundles the connections and services a command needs. Commands
// open it lazily so config-only commands never touch the database.
type App struct {
	Config *config.CLIConfig
	Logger logging.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
}

// OpenApp loads configuration and connects to the database (and Redis
// when configured).
func OpenApp(ctx context.Context) (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if flagOutput != "" {
		format := config.OutputFormat(flagOutput)
		if !format.IsValid() {
			return nil, fmt.Errorf("invalid output format %q (want text or json)", flagOutput)
		}
		cfg.OutputFormat = format
	}
	if flagDebug {
		cfg.Debug = true
	}

	logCfg := logging.DefaultConfig()
	logCfg.Component = "nojoin"
	if cfg.Debug {
		logCfg.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logCfg)

	if cfg.Database == nil {
		cfg.Database = db.DefaultConfig()
	}
	pool, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	prometheus.DefaultRegisterer.MustRegister(db.NewPoolStatsCollector(pool))

	app := &App{Config: cfg, Logger: logger, pool: pool}

	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			pool.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		app.redis = client
	}

	return app, nil
}

// Close releases all connections.
func (a *App) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

// Pool exposes the database pool for schema management commands.
func (a *App) Pool() *pgxpool.Pool {
	return a.pool
}

// Recordings returns the recording repository.
func (a *App) Recordings() *recordings.Repository {
	return recordings.NewRepository(a.pool)
}

// Transcripts returns the transcript store.
func (a *App) Transcripts() transcript.Store {
	return transcript.NewPGStore(a.pool, a.Logger)
}

// Speakers returns the speaker store for read-only queries. Mutations
// go through Identity so transcript text stays consistent.
func (a *App) Speakers() speakers.Store {
	return speakers.NewPostgresRepository(a.pool)
}

// Identity returns the speaker identity manager.
func (a *App) Identity() *speakers.Manager {
	stores := speakers.Stores{
		Speakers:    speakers.NewPostgresRepository(a.pool),
		Transcripts: a.Transcripts(),
	}
	return speakers.NewManager(speakers.NewPGTxRunner(a.pool, a.Logger), stores, a.Logger)
}

// Runner builds the processing pipeline runner.
func (a *App) Runner() *pipeline.Runner {
	var lock pipeline.Locker = pipeline.NoopLock{}
	if a.redis != nil {
		lock = pipeline.NewRedisLock(a.redis, a.Config.Pipeline.LockTTL)
	}
	return pipeline.NewRunner(
		a.Recordings(),
		a.Transcripts(),
		a.Identity(),
		lock,
		observability.DefaultPipelineMetrics(),
		observability.NewTracer(),
		a.Logger,
	)
}

// printOutput renders v as JSON when --output json is in effect,
// otherwise calls text to print the human form.
func printOutput(format config.OutputFormat, v any, text func()) error {
	if format == config.OutputFormatJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text()
	return nil
}
