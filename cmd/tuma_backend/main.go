package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/cradle-labs/tuma-integrator/internal/adapters/clients/panora"
	"github.com/cradle-labs/tuma-integrator/internal/adapters/clients/pretium"
	"github.com/cradle-labs/tuma-integrator/internal/chain/aptos"
	"github.com/cradle-labs/tuma-integrator/internal/core/services"
	"github.com/cradle-labs/tuma-integrator/internal/handlers"
	"github.com/cradle-labs/tuma-integrator/internal/middleware"
	"github.com/cradle-labs/tuma-integrator/internal/registry"
	"github.com/cradle-labs/tuma-integrator/internal/repositories/database/pgsql"
	"github.com/cradle-labs/tuma-integrator/pkg/config"
	"github.com/cradle-labs/tuma-integrator/pkg/database"
	"github.com/cradle-labs/tuma-integrator/pkg/events"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	catalog, err := loadCatalog(cfg, logger)
	if err != nil {
		logger.Error("Failed to load currency catalog", slog.String("error", err.Error()))
		os.Exit(1)
	}

	wallet, err := buildWallet(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize chain wallet", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fiatClient := pretium.NewClient(cfg.PretiumBaseURL, cfg.PretiumAPIKey, cfg.OnRampCallbackURL, cfg.OffRampCallback)
	clients := services.Clients{
		Oracle: panora.NewClient(cfg.PanoraBaseURL, cfg.PanoraAPIKey),
		Fiat:   fiatClient,
		Rail:   fiatClient,
		Chain:  wallet,
	}

	if cfg.AMQPURL != "" {
		publisher, err := events.NewPublisher(cfg.AMQPURL)
		if err != nil {
			logger.Warn("Settlement events disabled, broker unavailable", slog.String("error", err.Error()))
		} else {
			defer publisher.Close()
			clients.Events = publisher
		}
	}

	repos := pgsql.NewRepositoryProvider(dbPool)
	svc := services.NewServiceContainer(repos, clients, catalog)

	// Record the signer address so operators can fund it without digging
	// through logs.
	if err := svc.Settings.Set(context.Background(), "chain.signer_address", wallet.Address()); err != nil {
		logger.Warn("Failed to record signer address", slog.String("error", err.Error()))
	}
	logger.Info("Chain wallet ready", slog.String("address", wallet.Address()))

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterCustomValidators()
	handlers.RegisterRoutes(r, cfg, svc, catalog)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer migrationDB.Close()

	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}
	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

func loadCatalog(cfg *config.Config, logger *slog.Logger) (*registry.Registry, error) {
	if cfg.CatalogPath == "" {
		logger.Info("Using built-in currency catalog")
		return registry.Default(), nil
	}
	logger.Info("Loading currency catalog", slog.String("path", cfg.CatalogPath))
	return registry.Load(cfg.CatalogPath)
}

func buildWallet(cfg *config.Config, logger *slog.Logger) (*aptos.Wallet, error) {
	signer, err := aptos.NewSignerFromHex(cfg.ChainPrivateKey)
	if err != nil {
		return nil, err
	}

	chainID := aptos.ChainIDTestnet
	if cfg.AptosNetwork == "mainnet" {
		chainID = aptos.ChainIDMainnet
	}

	fullnode := aptos.NewRestClient(cfg.AptosFullnodeURL, "")
	return aptos.NewWallet(fullnode, signer, chainID, cfg.TumaContract, logger)
}
