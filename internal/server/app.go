// Package server wires the vault together: it opens the database, runs
// migrations, builds the crypto and token components and serves the REST
// and gRPC transports until it is told to stop.
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

	"github.com/dmitrijs2005/gophvault/internal/common"
	"github.com/dmitrijs2005/gophvault/internal/cryptox"
	"github.com/dmitrijs2005/gophvault/internal/logging"
	"github.com/dmitrijs2005/gophvault/internal/server/auth"
	"github.com/dmitrijs2005/gophvault/internal/server/config"
	"github.com/dmitrijs2005/gophvault/internal/server/metrics"
	"github.com/dmitrijs2005/gophvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophvault/internal/server/rest"
	"github.com/dmitrijs2005/gophvault/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/gophvault/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	metrics *metrics.Metrics
	vault   *services.Vault
}

// NewApp validates c, connects to the database, migrates it and builds the
// vault. Logs go to logOut.
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(logOut, c.LogLevel, c.LogFormat)

	masterKey, err := c.MasterKeyBytes()
	if err != nil {
		return nil, fmt.Errorf("master key: %w", err)
	}
	cipher, err := cryptox.NewSecretCipher(masterKey)
	common.WipeByteArray(masterKey)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}

	issuer, err := auth.NewTokenIssuer([]byte(c.SecretKey), c.Algorithm, c.AccessTokenTTL, auth.WithLeeway(c.TokenLeeway))
	if err != nil {
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	hasher, err := cryptox.NewPasswordHasher(c.Argon2Params(), c.HashConcurrency)
	if err != nil {
		return nil, fmt.Errorf("password hasher init error: %w", err)
	}

	db, rm, err := repomanager.Open(c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	m := metrics.New()
	vault := services.NewVault(db, rm, cipher, hasher, issuer,
		services.WithLogger(logger),
		services.WithObserver(m),
	)

	logger.Info(ctx, "App initialized", "driver", rm.Dialect())

	return &App{config: c, logger: logger, db: db, metrics: m, vault: vault}, nil
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

func (app *App) httpServer() *http.Server {
	return &http.Server{
		Addr: app.config.HTTPAddr,
		Handler: rest.NewRouter(rest.Dependencies{
			Vault:          app.vault,
			DB:             app.db,
			Metrics:        app.metrics,
			Logger:         app.logger.With("module", "http_server"),
			RequestTimeout: app.config.RequestTimeout,
			MaxBodyBytes:   app.config.MaxBodyBytes,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run serves HTTP and gRPC until ctx is cancelled, a termination signal
// arrives or either server fails. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	defer app.close()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)

	srv := app.httpServer()
	g.Go(func() error {
		app.logger.Info(gctx, "Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info(gctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	grpcSrv := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.vault, app.metrics)
	g.Go(func() error {
		if err := grpcSrv.Run(gctx); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "App stopped with error", "error", err)
	} else {
		app.logger.Info(ctx, "App stopped")
	}
	return err
}

func (app *App) close() {
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
}
