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

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sciadvances/catalog-api/internal"
	"github.com/sciadvances/catalog-api/internal/auth"
	authPostgres "github.com/sciadvances/catalog-api/internal/auth/postgres"
	"github.com/sciadvances/catalog-api/internal/element"
	elementPostgres "github.com/sciadvances/catalog-api/internal/element/postgres"
	"github.com/sciadvances/catalog-api/internal/transport"
	"github.com/sciadvances/catalog-api/internal/transport/rest"
	"github.com/sciadvances/catalog-api/internal/user"
	userPostgres "github.com/sciadvances/catalog-api/internal/user/postgres"
	"github.com/sciadvances/catalog-api/pkg/logger"
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
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open orm over database connection: %w", err)
	}

	router := chi.NewRouter()
	if err := wireAPI(router, config, db, gdb, lg); err != nil {
		return nil, err
	}

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Router: router,
	}, nil
}

// wireAPI builds the repository/service/handler graph and registers every
// route. The three element repositories share one Graph so relationship
// operations see the same edge state regardless of which side initiates.
func wireAPI(router *chi.Mux, config *internal.Config, db *sqlx.DB, gdb *gorm.DB, lg *slog.Logger) error {
	privateKey, err := config.Security.GetPrivateKey()
	if err != nil {
		return fmt.Errorf("failed to load private key: %w", err)
	}
	publicKey, err := config.Security.GetPublicKey()
	if err != nil {
		return fmt.Errorf("failed to load public key: %w", err)
	}

	baseHandler := transport.NewBaseHandler(lg)

	graph := element.NewGraph(lg,
		elementPostgres.NewOrganizationRepository(gdb),
		elementPostgres.NewPersonRepository(gdb),
		elementPostgres.NewProductRepository(gdb),
	)
	elementHandlers := make([]*element.Handler, 0, len(element.Kinds))
	for _, kind := range element.Kinds {
		svc := element.NewService(kind, graph, lg)
		elementHandlers = append(elementHandlers, element.NewHandler(baseHandler, svc))
	}

	userRepo := userPostgres.NewUserRepository(gdb)
	userService := user.NewService(userRepo, config.Security.BCryptCost, lg)
	userHandler := user.NewHandler(baseHandler, userService)

	tokenService := auth.NewJWTTokenService(privateKey, publicKey,
		config.Security.Issuer, config.Security.ClientID, config.Security.TokenLifetime)
	authService := auth.NewService(authPostgres.NewUserSource(userRepo), tokenService, lg)
	authHandler := auth.NewHandler(baseHandler, authService, tokenService)

	rest.RegisterAllRoutes(router, db.DB, authHandler, userHandler, elementHandlers, lg)
	return nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
