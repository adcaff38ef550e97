package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bryanwahyu/agentcy/internal/application"
	appai "github.com/bryanwahyu/agentcy/internal/application/ai"
	"github.com/bryanwahyu/agentcy/internal/application/router"
	apptactical "github.com/bryanwahyu/agentcy/internal/application/tactical"
	"github.com/bryanwahyu/agentcy/internal/config"
	"github.com/bryanwahyu/agentcy/internal/domain/ai"
	"github.com/bryanwahyu/agentcy/internal/domain/tactical"
	"github.com/bryanwahyu/agentcy/internal/infra/ai/gemini"
	"github.com/bryanwahyu/agentcy/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/agentcy/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/agentcy/internal/infra/db/postgres"
	"github.com/bryanwahyu/agentcy/internal/infra/edge"
	"github.com/bryanwahyu/agentcy/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/agentcy/internal/infra/storage"
	"github.com/bryanwahyu/agentcy/internal/middleware"
)

type app struct {
	handler http.Handler
	edge    *edge.Runtime
	db      *sql.DB
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Log.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zc.Build()
}

func newGateway(cfg *config.Config, logger *zap.Logger) ai.Client {
	var client ai.Client
	switch cfg.Gateway.Provider {
	case config.ProviderOpenAI:
		c := openai.NewClient(cfg.Gateway.APIKey, cfg.Gateway.BaseURL, cfg.Gateway.Model)
		c.Timeout = cfg.Gateway.Timeout
		client = c
	default:
		client = gemini.NewClient(gemini.Config{
			APIKey:  cfg.Gateway.APIKey,
			BaseURL: cfg.Gateway.BaseURL,
			Model:   cfg.Gateway.Model,
			Timeout: cfg.Gateway.Timeout,
			Logger:  logger,
		})
	}
	return appai.NewService(client,
		appai.WithRetry(cfg.Gateway.MaxRetries, cfg.Gateway.RetryBaseDelay),
		appai.WithLogger(logger),
	)
}

// openStore connects the configured database; (nil, nil) when none is set.
func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, tactical.RecordStore, tactical.AgentRoster, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("mysql connect error: %w", err)
		}
		if err := mysqlp.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("mysql migrate error: %w", err)
		}
		repo := mysqlp.NewRecordRepository(db)
		if err := repo.SeedAgents(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("mysql seed error: %w", err)
		}
		return db, repo, repo, nil
	case config.DriverPostgres:
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("postgres connect error: %w", err)
		}
		if err := pgp.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("postgres migrate error: %w", err)
		}
		repo := pgp.NewRecordRepository(db)
		if err := repo.SeedAgents(ctx); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("postgres seed error: %w", err)
		}
		return db, repo, repo, nil
	}
	return nil, nil, nil, nil
}

// build wires every component for the requested runtime.
func build(ctx context.Context, cfg *config.Config, logger *zap.Logger, runtime string) (*app, error) {
	a := &app{}
	metrics := middleware.NewMetrics()
	checkers := map[string]middleware.HealthChecker{
		"gateway": middleware.GatewayConfigured{Provider: cfg.Gateway.Provider, HasKey: cfg.Gateway.APIKey != ""},
	}

	svc := &apptactical.Service{
		AI:       newGateway(cfg, logger),
		Observer: metrics,
		Clock:    application.SystemClock{},
		Logger:   logger,
	}

	db, store, roster, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	var routerOpts []router.Option
	if db != nil {
		a.db = db
		svc.Store = store
		dbCheck := &middleware.DatabaseHealthChecker{DB: db}
		checkers["database"] = dbCheck
		routerOpts = append(routerOpts, router.WithHealthChecker(dbCheck))
	}

	if cfg.MinioEnabled() {
		archive, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("minio init error: %w", err)
		}
		svc.Archive = archive
		checkers["archive"] = archive
	}

	core := router.New(svc, roster, append(routerOpts, router.WithLogger(logger))...)

	var inner http.Handler
	switch strings.ToLower(runtime) {
	case config.RuntimeEdge:
		a.edge = edge.New(core, logger, cfg.Server.QueueSize)
		inner = a.edge
	default:
		inner = httpserver.Adapter(core)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled() {
		limiter = middleware.NewRateLimiter(ctx, cfg.RateLimit)
	}

	a.handler = httpserver.NewRouter(inner, httpserver.Options{
		Logger:         logger,
		Metrics:        metrics,
		HealthCheckers: checkers,
		APIKeys:        cfg.Auth.APIKeys,
		RateLimiter:    limiter,
	})
	return a, nil
}
