package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)

	"github.com/sitecraft-inc/sitecraft-engine/pkg/auth"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/clone"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/config"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/database"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/handlers"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/logging"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/metrics"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/middleware"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/repositories"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.Bool("provisioning_enabled", cfg.Deploy.APIURL != ""))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	// Migrations run through database/sql; the pgx pool stays dedicated
	// to request traffic.
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("failed to open migration connection", zap.String("error", logging.SanitizeError(err)))
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.String("error", logging.SanitizeError(err)))
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("failed to close migration connection", zap.Error(err))
	}

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSURL:            cfg.Auth.JWKSURL,
		Issuer:             cfg.Auth.Issuer,
	})
	if err != nil {
		logger.Fatal("failed to create JWKS client", zap.Error(err))
	}
	authMiddleware := auth.NewMiddleware(jwksClient, logger)

	plan := clone.MustBuildPlan()
	entityStore := repositories.NewEntityRowRepository(db)
	cloner := clone.NewCloner(plan, entityStore, logger)
	orchestrator := clone.NewOrchestrator(plan, cloner, logger)

	cloneMetrics := metrics.NewCloneMetrics(prometheus.DefaultRegisterer)

	orgRepo := repositories.NewOrganizationRepository()
	orgContext := services.NewOrgContextFunc(db)
	auditService := services.NewAuditService(repositories.NewAuditRepository(), orgContext, logger)
	deployService := services.NewDeployService(&cfg.Deploy, logger)
	cloneService := services.NewCloneService(db, orgRepo, orchestrator, deployService, auditService, cloneMetrics, logger)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	cloneHandler := handlers.NewCloneHandler(cloneService, logger)
	cloneHandler.RegisterRoutes(mux, authMiddleware)

	auditHandler := handlers.NewAuditHandler(auditService, logger)
	auditHandler.RegisterRoutes(mux, authMiddleware)

	mux.Handle("GET /metrics", promhttp.Handler())

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting sitecraft-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func buildLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
