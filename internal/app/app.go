// Package app wires configuration, infrastructure and the recipe
// conversation into a runnable Telegram bot.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/mealbot/core/bootstrap"
	coreconfig "github.com/m3rciful/mealbot/core/config"
	"github.com/m3rciful/mealbot/core/httpx"
	"github.com/m3rciful/mealbot/core/logger"
	"github.com/m3rciful/mealbot/core/paramstore"
	tg "github.com/m3rciful/mealbot/core/telegram"
	tghelpers "github.com/m3rciful/mealbot/core/telegram/helpers"
	"github.com/m3rciful/mealbot/core/telegram/router"
	tgsender "github.com/m3rciful/mealbot/core/telegram/sender"
	"github.com/m3rciful/mealbot/core/telegram/state"
	"github.com/m3rciful/mealbot/internal/catalog"
	"github.com/m3rciful/mealbot/internal/recipes"
	"github.com/m3rciful/mealbot/internal/translate"
	"github.com/m3rciful/mealbot/migrations"
)

// App holds the wired bot components.
type App struct {
	cfg        *Config
	db         *sqlx.DB
	sessions   state.Manager
	registry   *tg.Registry
	dispatcher *tgsender.Dispatcher
	flow       *recipes.Flow
}

// GetterFactory builds a parameter store client for a region.
type GetterFactory func(ctx context.Context, region string) (paramstore.Getter, error)

func defaultGetterFactory(ctx context.Context, region string) (paramstore.Getter, error) {
	return paramstore.NewFromEnv(ctx, region)
}

// Bootstrap initializes logging and storage, resolves the bot token and wires
// the conversation.
func Bootstrap(ctx context.Context, cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:     &cfg.Config,
		Database:   cfg.Database,
		Migrations: migrations.FS,
	})
	if err != nil {
		return nil, err
	}
	if err := ResolveToken(ctx, &cfg.Config, defaultGetterFactory); err != nil {
		if res.DB != nil {
			_ = res.DB.Close()
		}
		return nil, err
	}
	return New(ctx, cfg, res.DB), nil
}

// New wires the bot from an already bootstrapped configuration. db may be nil.
func New(ctx context.Context, cfg *Config, db *sqlx.DB) *App {
	a := &App{
		cfg:        cfg,
		db:         db,
		sessions:   state.NewMemoryManager(),
		registry:   tg.NewRegistry(),
		dispatcher: tgsender.NewDispatcher(tgsender.Options{MaxRetries: 2}),
	}

	cat := catalog.NewClient(
		catalog.WithBaseURL(cfg.Catalog.BaseURL),
		catalog.WithHTTPClient(httpx.NewClient(httpx.Options{Timeout: seconds(cfg.Catalog.TimeoutSeconds)})),
	)
	google := translate.NewGoogle(
		translate.WithEndpoint(cfg.Translate.BaseURL),
		translate.WithHTTPClient(httpx.NewClient(httpx.Options{Timeout: seconds(cfg.Translate.TimeoutSeconds)})),
	)
	a.flow = recipes.NewFlow(cat, translate.NewCached(google, a.translationCache(ctx)), a.sessions, recipes.Options{
		TargetLang: cfg.Translate.TargetLang,
		FanOut:     cfg.Recipes.FanOut,
		Texts:      cfg.Recipes.Texts,
	})
	recipes.Register(a.registry, a.sessions, a.flow, recipes.BindingOptions{
		OptionsPerRow: cfg.Recipes.OptionsPerRow,
		SendErrors:    a.dispatcher.ErrorCount,
	})
	return a
}

// translationCache prefers Postgres and falls back to an in-process LRU.
func (a *App) translationCache(ctx context.Context) translate.Cache {
	if a.db == nil {
		logger.Info(ctx, "translate", "cache.init",
			slog.String("backend", "memory"),
			slog.Int("size", a.cfg.Translate.CacheSize),
		)
		return translate.NewLRU(a.cfg.Translate.CacheSize)
	}
	pg := translate.NewPGCache(a.db)
	if ttl := a.cfg.Translate.CacheTTLHours; ttl > 0 {
		n, err := pg.Prune(ctx, time.Duration(ttl)*time.Hour)
		if err != nil {
			logger.Warn(ctx, "translate", "cache.prune",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		} else {
			logger.Info(ctx, "translate", "cache.prune",
				slog.String("status", "ok"),
				slog.Int64("rows", n),
			)
		}
	}
	logger.Info(ctx, "translate", "cache.init", slog.String("backend", "postgres"))
	return pg
}

// TelegramRunOptions composes routes and middlewares for the runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: a.cfg.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.sessions, a.registry, router.TextOptions{
		UnknownCommand: a.unknownCommand,
	})...)

	return tg.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    a.registry,
		Dispatcher:  a.dispatcher,
		Middlewares: tg.DefaultMiddlewares(a.sessions),
		Routes:      routes,
		OnStop:      a.stop,
	}, nil
}

func (a *App) unknownCommand(c tele.Context) error {
	return tghelpers.SendText(c, a.flow.Texts().CountPrompt)
}

func (a *App) stop(ctx context.Context, _ tg.Runtime) error {
	logger.Info(ctx, "app", "sessions.dropped", slog.Int("sessions", a.sessions.Len()))
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("app: close database: %w", err)
	}
	return nil
}

// ResolveToken fills cfg.Telegram.Token from the parameter store when only
// a parameter name is configured.
func ResolveToken(ctx context.Context, cfg *coreconfig.Config, newGetter GetterFactory) error {
	if cfg.Telegram.Token != "" || cfg.Telegram.TokenParameter == "" {
		return nil
	}
	getter, err := newGetter(ctx, cfg.AWS.Region)
	if err != nil {
		return fmt.Errorf("app: parameter store: %w", err)
	}
	token, err := getter.GetParameter(ctx, cfg.Telegram.TokenParameter)
	if err != nil {
		return fmt.Errorf("app: resolve bot token: %w", err)
	}
	if token == "" {
		return fmt.Errorf("app: parameter %s is empty", cfg.Telegram.TokenParameter)
	}
	cfg.Telegram.Token = token
	logger.Info(ctx, "app", "token.resolved",
		slog.String("source", "ssm"),
		slog.String("parameter", cfg.Telegram.TokenParameter),
	)
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
