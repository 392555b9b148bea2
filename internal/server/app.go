// Package server wires configuration, storage and services into the
// running process: the HTTP front door, the gRPC health endpoint and the
// audit writer.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/singularity/internal/cryptox"
	"github.com/dmitrijs2005/singularity/internal/dbx"
	"github.com/dmitrijs2005/singularity/internal/logging"
	"github.com/dmitrijs2005/singularity/internal/server/api"
	"github.com/dmitrijs2005/singularity/internal/server/archive"
	"github.com/dmitrijs2005/singularity/internal/server/audit"
	"github.com/dmitrijs2005/singularity/internal/server/cache"
	"github.com/dmitrijs2005/singularity/internal/server/config"
	"github.com/dmitrijs2005/singularity/internal/server/metrics"
	"github.com/dmitrijs2005/singularity/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/singularity/internal/server/services"

	gs "github.com/dmitrijs2005/singularity/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client

	writer *audit.Writer
	http   *http.Server
	health *gs.HealthServer
}

// NewApp opens storage, applies migrations and builds every component.
// logOut receives the structured log stream.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger := logging.New(c.LogLevel, c.LogFormat, logOut)

	key, err := c.MasterKey()
	if err != nil {
		return nil, err
	}
	cipher, err := cryptox.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}

	db, err := dbx.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}
	if err := app.build(ctx, cipher); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

func (app *App) build(ctx context.Context, cipher cryptox.FieldCipher) error {
	c, logger, db := app.config, app.logger, app.db

	rm := repomanager.NewPostgresRepositoryManager(cipher)
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	refCache := app.openCache(ctx)

	var exporter services.Exporter
	if c.S3Bucket != "" {
		e, err := archive.NewS3Exporter(ctx, archive.Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			return fmt.Errorf("audit archive: %w", err)
		}
		exporter = e
	}

	app.writer = audit.NewWriter(rm.AuditLog(db), c.AuditQueueSize, logger, m)

	schema, err := api.NewSchema(&api.Resolver{
		Registrar: services.NewRegistrationService(db, rm, m, logger),
		Auth:      services.NewAuthService(db, rm, c, m, logger),
		Profiles:  services.NewProfileService(db, rm),
		Catalog:   services.NewReferenceService(db, rm, refCache, c.ReferenceCacheTTL, logger),
		Audit:     services.NewAuditService(db, rm, exporter),
		Log:       logger,
	})
	if err != nil {
		return fmt.Errorf("graphql schema: %w", err)
	}

	router := api.NewRouter(api.RouterConfig{
		Secret:      []byte(c.SecretKey),
		CORSOrigins: c.CORSOrigins,
		Log:         logger,
		Metrics:     m,
		MetricsPage: metrics.Handler(reg),
		Recorder:    audit.NewRecorder(app.writer),
		GraphQL:     api.NewGraphQLHandler(schema, logger),
		Ping:        db.PingContext,
	})

	app.http = &http.Server{
		Addr:              c.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	app.health = gs.NewHealthServer(c.GRPCHealthAddr, logger, db.PingContext)
	return nil
}

// openCache falls back to no caching when Redis is not configured or not
// reachable.
func (app *App) openCache(ctx context.Context) cache.Cache {
	if app.config.RedisAddr == "" {
		return cache.Noop{}
	}
	client, err := cache.NewRedisClient(ctx, app.config.RedisAddr)
	if err != nil {
		app.logger.Warn(ctx, "reference cache disabled", "error", err)
		return cache.Noop{}
	}
	app.redis = client
	return cache.NewRedis(client)
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// stops accepting requests and drains the audit queue.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.close()

	app.logger.Info(ctx, "Starting app...", "http", app.config.HTTPAddr, "grpc_health", app.config.GRPCHealthAddr)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.writer.Run(context.WithoutCancel(gctx))
	})

	g.Go(func() error {
		return app.health.Run(gctx)
	})

	g.Go(func() error {
		if err := app.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info(ctx, "Stopping app...")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := app.http.Shutdown(sctx)
		if cerr := app.writer.Close(sctx); cerr != nil {
			err = errors.Join(err, fmt.Errorf("drain audit queue: %w", cerr))
		}
		return err
	})

	return g.Wait()
}

func (app *App) close() {
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}

// Main loads the configuration from args and runs the server on stdout
// logging. It is the body of cmd/server.
func Main(ctx context.Context, args []string) error {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return err
	}
	app, err := NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
