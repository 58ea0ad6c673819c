// Package app opens the resources described by a configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/andrebq/chiefofstaff/authprogram"
	"github.com/andrebq/chiefofstaff/credstore"
	"github.com/andrebq/chiefofstaff/internal/config"
	"github.com/andrebq/chiefofstaff/internal/logutil"
	"github.com/andrebq/chiefofstaff/server"
)

type (
	App struct {
		Config  config.Config
		Store   credstore.Store
		Service *authprogram.Service
	}
)

// Open connects to the credential store and builds the auth service on
// top of it. Callers must Close the returned App.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	log := logutil.GetOrDefault(ctx)
	sql, err := credstore.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, err
	}
	var store credstore.Store = sql
	if cfg.SessionCacheTTL > 0 {
		cached, err := credstore.NewCached(ctx, sql, cfg.SessionCacheTTL)
		if err != nil {
			sql.Close()
			return nil, err
		}
		store = cached
		if d, _ := credstore.ParseDialect(cfg.Database.Driver); d == credstore.Postgres {
			log.Warn().Dur("sessionCacheTTL", cfg.SessionCacheTTL).
				Msg("Session cache is local to this process, logouts on other replicas show up only after the ttl")
		}
	}
	hasher, err := cfg.Hasher()
	if err != nil {
		store.Close()
		return nil, err
	}
	log.Info().
		Str("driver", cfg.Database.Driver).
		Str("passwordScheme", cfg.Password.Scheme).
		Dur("sessionCacheTTL", cfg.SessionCacheTTL).
		Msg("Credential store ready")
	return &App{
		Config:  cfg,
		Store:   store,
		Service: authprogram.New(store, hasher),
	}, nil
}

// Handler returns the HTTP handler of the API.
func (a *App) Handler(ctx context.Context) (http.Handler, error) {
	var frontend *url.URL
	if a.Config.FrontendURL != "" {
		var err error
		frontend, err = url.Parse(a.Config.FrontendURL)
		if err != nil {
			return nil, fmt.Errorf("unable to parse frontend url, cause %w", err)
		}
	}
	return server.NewHandler(ctx, server.Deps{
		Service:      a.Service,
		Store:        a.Store,
		SecureCookie: a.Config.Cookie.Secure,
		CORSOrigins:  a.Config.CORSOrigins,
		Frontend:     frontend,
	})
}

func (a *App) Close() error {
	return a.Store.Close()
}
