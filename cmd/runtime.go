package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/propdesk/internal/api"
	"github.com/zjrosen/propdesk/internal/config"
	"github.com/zjrosen/propdesk/internal/credentials"
	"github.com/zjrosen/propdesk/internal/flags"
	"github.com/zjrosen/propdesk/internal/log"
	"github.com/zjrosen/propdesk/internal/notify"
	"github.com/zjrosen/propdesk/internal/refcache"
	"github.com/zjrosen/propdesk/internal/repository"
	"github.com/zjrosen/propdesk/internal/tracing"
)

// runtime wires the data pipeline shared by the TUI and the subcommands.
type runtime struct {
	cfg      config.Config
	creds    *credentials.Store
	tracer   *tracing.Provider
	notifier notify.Notifier
	client   *api.Client
	repos    *repository.Set
	refs     *refcache.Cache
	flags    *flags.Registry
}

func newRuntime(cfg config.Config, notifier notify.Notifier) (*runtime, error) {
	if err := config.ValidateAPI(cfg.API); err != nil {
		return nil, fmt.Errorf("invalid api configuration: %w", err)
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	creds, err := credentials.Load(cfg.API.TokenFile)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	client := api.New(cfg.API.BaseURL, creds,
		api.WithNotifier(notifier),
		api.WithTracer(provider.Tracer()),
		api.WithTimeout(cfg.API.Timeout),
	)
	repos := repository.New(client)
	refs := refcache.New(refcache.FromRepositories(repos),
		refcache.WithNotifier(notifier),
		refcache.WithTracer(provider.Tracer()),
	)

	log.Debug(log.CatConfig, "Runtime ready", "baseURL", cfg.API.BaseURL, "tracing", provider.Enabled())
	return &runtime{
		cfg:      cfg,
		creds:    creds,
		tracer:   provider,
		notifier: notifier,
		client:   client,
		repos:    repos,
		refs:     refs,
		flags:    flags.New(cfg.Flags),
	}, nil
}

// Close flushes pending spans.
func (r *runtime) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.tracer.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to flush traces", err)
	}
	r.creds.Broker().Close()
}
