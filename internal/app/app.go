// Package app wires configuration, storage backends, services and the
// interactive CLI into a runnable uniclip client.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/uniclip/internal/cli"
	"github.com/dmitrijs2005/uniclip/internal/config"
	"github.com/dmitrijs2005/uniclip/internal/filex"
	"github.com/dmitrijs2005/uniclip/internal/logging"
	"github.com/dmitrijs2005/uniclip/internal/migrations"
	"github.com/dmitrijs2005/uniclip/internal/repositories/repomanager"
	"github.com/dmitrijs2005/uniclip/internal/services"
	"github.com/dmitrijs2005/uniclip/internal/session"
	"github.com/dmitrijs2005/uniclip/internal/sessioncache"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	closers []func() error
	cli     *cli.App
}

// openPostgres is a seam for tests.
var openPostgres = repomanager.OpenPostgres

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogBackend, c.LogLevel, os.Stderr)
	migrations.UseLogger(logger)

	secret, namespace, err := clientIdentity(c)
	if err != nil {
		return nil, fmt.Errorf("client key error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	db, err := openPostgres(ctx, c.DatabaseDSN, rm)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, closeStore, err := openSessionStore(ctx, c, namespace)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session store init error: %w", err)
	}

	accounts := services.NewAccountService(db, rm, logger.With("component", "accounts"))
	clipboards := services.NewClipboardService(db, rm, logger.With("component", "clipboards"))
	cache := sessioncache.NewCache(store, secret, c.SessionTTL)

	s := session.New(accounts, clipboards, cache, logger.With("component", "session"), session.Options{
		RequestTimeout:   c.RequestTimeout,
		RememberPassword: c.RememberPassword,
	})

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		closers: []func() error{closeStore, db.Close},
		cli:     cli.NewApp(s, os.Stdin, os.Stdout),
	}, nil
}

// clientIdentity loads this client's key and returns the token signing
// secret and the Redis namespace, each taken from config when set there.
func clientIdentity(c *config.Config) ([]byte, string, error) {
	path, err := filex.EnsureParentDir(c.ClientKeyPath)
	if err != nil {
		return nil, "", err
	}
	key, err := sessioncache.LoadOrCreateClientKey(path)
	if err != nil {
		return nil, "", err
	}

	secret := key
	if c.SessionSecret != "" {
		secret = []byte(c.SessionSecret)
	}
	namespace := c.SessionNamespace
	if namespace == "" {
		namespace = sessioncache.ClientID(key)
	}
	return secret, namespace, nil
}

// openSessionStore returns the configured session key-value store and a
// func releasing it. namespace scopes the keys of a shared Redis.
func openSessionStore(ctx context.Context, c *config.Config, namespace string) (sessioncache.KeyValueStore, func() error, error) {
	switch c.SessionBackend {
	case config.SessionBackendRedis:
		client, err := sessioncache.ConnectRedis(ctx, sessioncache.RedisConfig{
			Addr:    c.RedisAddr,
			DB:      c.RedisDB,
			Timeout: c.RequestTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return sessioncache.NewRedisStore(client, sessioncache.ClientPrefix(namespace)), client.Close, nil

	case config.SessionBackendSQLite, "":
		path, err := filex.EnsureParentDir(c.SessionDBPath)
		if err != nil {
			return nil, nil, err
		}
		db, err := sessioncache.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return sessioncache.NewSQLiteStore(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}
}

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
		_ = a.Close()
		os.Exit(0)
	}()
}

// Run serves the interactive session until the user exits.
func (a *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	a.initSignalHandler(cancelFunc)
	a.logger.Debug(ctx, "starting uniclip", "session_backend", a.config.SessionBackend)

	a.cli.Run(ctx)

	if err := a.Close(); err != nil {
		a.logger.Error(ctx, "shutdown error", "error", err)
	}
}

// Close releases the session store and the database.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
