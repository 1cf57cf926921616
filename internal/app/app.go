// Package app assembles providers, storage and the HTTP facade from
// configuration.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/bher20/tagihanpln/internal/alerting"
	"github.com/bher20/tagihanpln/internal/api"
	"github.com/bher20/tagihanpln/internal/config"
	"github.com/bher20/tagihanpln/internal/cron"
	"github.com/bher20/tagihanpln/internal/inquiry"
	"github.com/bher20/tagihanpln/internal/migrate"
	"github.com/bher20/tagihanpln/internal/storage"
	"github.com/bher20/tagihanpln/pkg/browser"
	"github.com/bher20/tagihanpln/pkg/providers"
	"github.com/bher20/tagihanpln/pkg/providers/simulator"
)

// App holds the long-lived components of a running service.
type App struct {
	Config   *config.Config
	Registry *providers.Registry
	Inquirer inquiry.Inquirer
	Browser  browser.Automation
	// Store is nil unless the ledger is enabled.
	Store  storage.Storage
	Prober *cron.Prober
}

// Option overrides a component, mostly for tests.
type Option func(*App)

// WithBrowser replaces the chromedp driver.
func WithBrowser(a browser.Automation) Option {
	return func(app *App) { app.Browser = a }
}

// WithStore replaces the configured ledger store.
func WithStore(s storage.Storage) Option {
	return func(app *App) { app.Store = s }
}

// New builds every component described by cfg. The caller must Close it.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{Config: cfg}
	for _, o := range opts {
		o(a)
	}
	if a.Browser == nil {
		a.Browser = browser.NewChrome(browser.Options{
			ExecPath: cfg.Browser.ExecPath,
			Headless: cfg.Browser.Headless,
		})
	}

	if cfg.Ledger.Enabled && a.Store == nil {
		if cfg.Store.AutoMigrate && cfg.Store.Driver != "" && cfg.Store.Driver != "memory" {
			if err := migrate.Up(ctx, cfg.Store.Driver, cfg.Store.DSN); err != nil {
				return nil, eris.Wrap(err, "app: migrate ledger store")
			}
		}
		st, err := storage.Open(ctx, storage.Config{Driver: cfg.Store.Driver, DSN: cfg.Store.DSN})
		if err != nil {
			return nil, eris.Wrap(err, "app: open ledger store")
		}
		a.Store = st
	}

	if cfg.Inquiry.Mode == config.ModeSimulate {
		sim := simulator.New()
		reg, err := providers.NewRegistry(sim)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Registry = reg
		a.Inquirer = sim
		zap.L().Info("app: simulate mode, providers are not contacted")
	} else {
		reg, err := BuildRegistry(cfg, a.Browser, a.Store)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Registry = reg
		a.Inquirer = inquiry.NewService(reg)
		if limit := time.Duration(cfg.Server.RequestTimeoutSecs) * time.Second; reg.Budget() > limit {
			zap.L().Warn("app: provider timeouts exceed the request timeout, late providers may be cut short",
				zap.Duration("budget", reg.Budget()), zap.Duration("request_timeout", limit))
		}
	}

	popts := []cron.Option{cron.WithBrowser(a.Browser)}
	if a.Store != nil {
		popts = append(popts, cron.WithStore(a.Store, cfg.Store.Driver))
	}
	alertCfg := alerting.Config{
		WebhookURL:  cfg.Alert.WebhookURL,
		WebhookType: cfg.Alert.WebhookType,
		MinFailures: cfg.Alert.MinFailures,
		SendgridKey: cfg.Alert.SendgridKey,
		EmailFrom:   cfg.Alert.EmailFrom,
		EmailTo:     cfg.Alert.EmailTo,
	}
	if alertCfg.Enabled() {
		popts = append(popts, cron.WithAlerter(alerting.New(alertCfg)))
	}
	a.Prober = cron.NewProber(a.Registry, popts...)

	return a, nil
}

// Handler returns the HTTP facade.
func (a *App) Handler() http.Handler {
	return api.NewRouter(api.Options{
		Inquirer:       a.Inquirer,
		Registry:       a.Registry,
		Capabilities:   a.Prober,
		Store:          a.Store,
		RequestTimeout: time.Duration(a.Config.Server.RequestTimeoutSecs) * time.Second,
	})
}

// StartProbe schedules the provider probe when enabled.
func (a *App) StartProbe(ctx context.Context) error {
	if !a.Config.Probe.Enabled {
		return nil
	}
	return a.Prober.Start(ctx, a.Config.Probe.Schedule)
}

// Close releases the store and stops the probe.
func (a *App) Close() error {
	if a.Prober != nil {
		a.Prober.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
