// Package app wires configuration into a ready-to-use calculator.
package app

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"

	"calc-agent/api/internal/agent"
	"calc-agent/api/internal/cache"
	"calc-agent/api/internal/config"
	"calc-agent/api/internal/gemini"
	"calc-agent/api/internal/modules"
	"calc-agent/api/internal/ratelimit"
	"calc-agent/api/internal/store"
	"calc-agent/api/internal/types"
)

type App struct {
	Config  *config.Config
	Agent   *agent.Agent
	Client  *gemini.Client
	Modules map[types.Domain]modules.Module

	DB      *sql.DB
	History *store.HistoryRepo
	Cache   *cache.Redis

	closers []func() error
}

// New connects to Gemini and, when configured, Postgres and Redis.
// Postgres is required once DATABASE_URL is set; Redis is optional and is
// skipped with a log line when unreachable.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, err := gemini.NewGenAIBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg}
	a.closers = append(a.closers, backend.Close)

	var opts []agent.Option
	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		log.Printf("db connected: %s", store.SafeDSNSummary(cfg.DatabaseURL))
		if err := store.Migrate(ctx, db); err != nil {
			_ = a.Close()
			return nil, err
		}
		a.DB = db
		a.History = store.NewHistoryRepo(db)
		opts = append(opts, agent.WithHistory(a.History))
	}
	if cfg.RedisURL != "" {
		c, err := cache.New(cfg.RedisURL, cfg.CacheTTL)
		if err == nil {
			err = c.Ping(ctx)
		}
		if err != nil {
			log.Printf("redis unavailable, result cache disabled: %v", err)
		} else {
			a.Cache = c
			a.closers = append(a.closers, c.Close)
			opts = append(opts, agent.WithCache(c))
		}
	}

	a.assemble(backend, opts...)
	a.warmPlotCache(ctx)
	log.Printf("calculator ready: model=%s rate=%d/min retries=%d", cfg.GeminiModel, cfg.RateLimitCallsPerMinute, cfg.MaxRetries)
	return a, nil
}

// Build assembles an App over an arbitrary backend with no external stores.
func Build(cfg *config.Config, backend gemini.Backend) *App {
	a := &App{Config: cfg}
	a.assemble(backend)
	return a
}

func (a *App) assemble(backend gemini.Backend, opts ...agent.Option) {
	cfg := a.Config
	a.Client = gemini.New(
		backend,
		ratelimit.New(cfg.RateLimitCallsPerMinute),
		gemini.Params{Temperature: cfg.Temperature, TopP: cfg.TopP, MaxOutputTokens: cfg.MaxOutputTokens},
		gemini.DefaultRetryPolicy(cfg.MaxRetries),
	)
	a.Client.SetDebug(cfg.Debug())

	a.Modules = modules.NewRegistry(modules.Deps{
		Gen:             a.Client,
		Prompts:         &modules.Prompts{Dir: cfg.PromptDir},
		MaxRetries:      cfg.MaxRetries,
		MaxLength:       cfg.MaxExpressionLength,
		DefaultCurrency: cfg.DefaultCurrency,
		PlotDir:         cfg.PlotDir,
	})
	a.Agent = agent.New(a.Modules, append([]agent.Option{agent.WithMaxLength(cfg.MaxExpressionLength)}, opts...)...)
}

// warmPlotCache refills the plotter's in-memory cache with plots from
// history whose files still exist.
func (a *App) warmPlotCache(ctx context.Context) {
	if a.History == nil {
		return
	}
	gp, ok := a.Modules[types.DomainGraphPlotter].(*modules.GraphPlotter)
	if !ok {
		return
	}
	paths, err := a.History.PlotPaths(ctx, 500)
	if err != nil {
		log.Printf("plot cache warmup: %v", err)
		return
	}
	n := 0
	for expr, p := range paths {
		if _, err := os.Stat(p); err == nil {
			gp.Remember(expr, p)
			n++
		}
	}
	log.Printf("plot cache warmup: %d plots", n)
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
