package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/household-expense/internal"
	"github.com/frahmantamala/household-expense/internal/auth"
	authPostgres "github.com/frahmantamala/household-expense/internal/auth/postgres"
	"github.com/frahmantamala/household-expense/internal/category"
	categoryPostgres "github.com/frahmantamala/household-expense/internal/category/postgres"
	"github.com/frahmantamala/household-expense/internal/core/events"
	"github.com/frahmantamala/household-expense/internal/expense"
	expensePostgres "github.com/frahmantamala/household-expense/internal/expense/postgres"
	"github.com/frahmantamala/household-expense/internal/group"
	groupPostgres "github.com/frahmantamala/household-expense/internal/group/postgres"
	"github.com/frahmantamala/household-expense/internal/settlement"
	settlementPostgres "github.com/frahmantamala/household-expense/internal/settlement/postgres"
	"github.com/frahmantamala/household-expense/internal/transport/middleware"
	"github.com/frahmantamala/household-expense/internal/transport/rest"
	"github.com/frahmantamala/household-expense/internal/user"
	userPostgres "github.com/frahmantamala/household-expense/internal/user/postgres"
	"github.com/frahmantamala/household-expense/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	EventBus *events.EventBus
	Router   *chi.Mux
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := deps.Logger

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	lg.Info("Starting HTTP server", "address", addr, "env", deps.Config.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("Server shutdown error", "error", err)
		}
		// let in-flight audit handlers finish before the pool goes away
		deps.EventBus.Close()
		if err := deps.DB.Close(); err != nil {
			lg.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			lg.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	lg.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Setup(logger.Options{
		Env:    config.Env,
		Level:  config.Observability.Logging.Level,
		Format: config.Observability.Logging.Format,
	})
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	eventBus := events.NewEventBus(lg)
	settlement.NewAuditHandler(lg).RegisterEventHandlers(eventBus)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authSvc := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen, config.Security.BCryptCost, lg)
	userSvc := user.NewService(userPostgres.NewRepository(gormDB), authSvc, lg)

	groupSvc := group.NewService(groupPostgres.NewGroupRepository(db), config.Household.DefaultClosingDay, lg)
	categorySvc := category.NewService(categoryPostgres.NewCategoryRepository(gormDB), lg)
	expenseSvc := expense.NewService(expensePostgres.NewExpenseRepository(gormDB), groupSvc, categorySvc, lg)
	settlementSvc := settlement.NewService(settlementPostgres.NewSettlementRepository(gormDB), groupSvc, expenseSvc, eventBus, lg)
	expenseSvc.SetPeriodLockChecker(settlementSvc)

	opts := rest.Options{
		AllowedOrigins: config.Server.AllowedOrigins,
		SpecPath:       config.OpenAPI.SpecPath,
	}
	if config.OpenAPI.SpecPath != "" && config.OpenAPI.ValidateRequests {
		doc, err := middleware.LoadOpenAPI(context.Background(), config.OpenAPI.SpecPath)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to load openapi document: %w", err)
		}
		validator, err := middleware.NewRequestValidator(doc, rest.APIBasePath, lg)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to build request validator: %w", err)
		}
		opts.Validator = validator
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Health:     rest.NewHealthHandler(db),
		Auth:       auth.NewHandler(authSvc),
		User:       user.NewHandler(userSvc),
		Category:   category.NewHandler(categorySvc),
		Group:      group.NewHandler(groupSvc),
		Expense:    expense.NewHandler(expenseSvc),
		Settlement: settlement.NewHandler(settlementSvc),
	}, opts, lg)

	return &Dependencies{
		Config:   config,
		DB:       db,
		EventBus: eventBus,
		Router:   router,
		Logger:   lg,
	}, nil
}

// initDB opens the pgx-backed pool shared by sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	db, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
	})
}
