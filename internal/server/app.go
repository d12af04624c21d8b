// Package server initializes and runs the gophauth server: it selects the
// credential store, runs migrations, serves HTTP and gRPC and shuts both
// down gracefully.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/gate"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	gate        *gate.Gate
}

// NewApp validates cfg and builds every component. With a DSN the store is
// PostgreSQL and migrations run here; without one it is in-memory.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		db      *sql.DB
		dbtx    dbx.DBTX
		manager repomanager.RepositoryManager
	)

	if cfg.DatabaseDSN != "" {
		var err error
		db, err = repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		manager = repomanager.NewPostgresRepositoryManager()
		if err := manager.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
		dbtx = db
		logger.Info(ctx, "using postgres credential store")
	} else {
		manager = repomanager.NewMemoryRepositoryManager()
		logger.Warn(ctx, "no database DSN configured, using in-memory credential store")
	}

	hasher, err := password.New(cfg.PasswordAlgorithm, cfg.BcryptCost)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	tokens := auth.NewTokenService([]byte(cfg.SecretKey), cfg.TokenValidity)
	us := services.NewUserService(dbtx, manager, tokens, hasher, logger)

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		userService: us,
		gate:        gate.New(tokens, us.Executor()),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	router := httpapi.NewRouter(app.userService, app.gate, app.logger, httpapi.RouterOptions{StaticDir: app.config.StaticDir})
	s := httpapi.NewServer(app.config.HTTPAddr, router, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.userService, app.gate)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server", "error", err)
		cancelFunc()
	}
}

// Run serves until a termination signal arrives, ctx is cancelled or a
// server fails, then waits for both servers and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.GRPCAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close", "error", err)
		}
	}

	app.logger.Info(context.Background(), "App stopped")
}
