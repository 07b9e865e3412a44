package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/mealbot/core/config"
	"github.com/m3rciful/mealbot/core/paramstore"
	tg "github.com/m3rciful/mealbot/core/telegram"
	"github.com/m3rciful/mealbot/internal/catalog"
	"github.com/m3rciful/mealbot/internal/translate"
)

type fakeGetter struct {
	value string
	err   error
	names []string
}

func (g *fakeGetter) GetParameter(_ context.Context, name string) (string, error) {
	g.names = append(g.names, name)
	return g.value, g.err
}

func factory(g *fakeGetter, gotRegion *string) GetterFactory {
	return func(_ context.Context, region string) (paramstore.Getter, error) {
		*gotRegion = region
		return g, nil
	}
}

func TestResolveTokenFromParameterStore(t *testing.T) {
	cfg := &coreconfig.Config{
		Telegram: coreconfig.TelegramConfig{TokenParameter: "/mealbot/bot-token"},
		AWS:      coreconfig.AWSConfig{Region: "eu-central-1"},
	}
	g := &fakeGetter{value: "123:abc"}
	var region string

	require.NoError(t, ResolveToken(context.Background(), cfg, factory(g, &region)))
	require.Equal(t, "123:abc", cfg.Telegram.Token)
	require.Equal(t, "eu-central-1", region)
	require.Equal(t, []string{"/mealbot/bot-token"}, g.names)
}

func TestResolveTokenPrefersExplicitToken(t *testing.T) {
	cfg := &coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t", TokenParameter: "/p"}}
	g := &fakeGetter{value: "other"}
	var region string
	require.NoError(t, ResolveToken(context.Background(), cfg, factory(g, &region)))
	require.Equal(t, "t", cfg.Telegram.Token)
	require.Empty(t, g.names)
}

func TestResolveTokenErrors(t *testing.T) {
	var region string
	cfg := &coreconfig.Config{Telegram: coreconfig.TelegramConfig{TokenParameter: "/p"}}
	require.Error(t, ResolveToken(context.Background(), cfg, factory(&fakeGetter{err: errors.New("denied")}, &region)))
	require.Error(t, ResolveToken(context.Background(), cfg, factory(&fakeGetter{}, &region)))
	require.Empty(t, cfg.Telegram.Token)
}

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `telegram:
  token: file-token
  admin_id: 42
translate:
  target_lang: DE
recipes:
  fan_out: 2
  texts:
    fetch_button: Get recipes
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("CATALOG_BASE_URL", "http://catalog.local/api/")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "file-token", cfg.Telegram.Token)
	require.Equal(t, int64(42), cfg.Telegram.AdminID)
	require.Equal(t, coreconfig.RunModeLongpoll, cfg.Telegram.RunMode)
	require.Equal(t, "http://catalog.local/api/", cfg.Catalog.BaseURL)
	require.Equal(t, translate.DefaultGoogleURL, cfg.Translate.BaseURL)
	require.Equal(t, "de", cfg.Translate.TargetLang)
	require.Equal(t, 2, cfg.Recipes.FanOut)
	require.Equal(t, "Get recipes", cfg.Recipes.Texts.FetchButton)
	require.NotEmpty(t, cfg.Recipes.Texts.ChooseCategory)
	require.False(t, cfg.Database.Enabled())
	require.Same(t, &cfg.Config, cfg.CoreConfig())
}

func TestNormalizeRejectsNegativeValues(t *testing.T) {
	cfg := &Config{Config: coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t"}}}
	cfg.Recipes.FanOut = -1
	require.Error(t, cfg.Normalize())

	cfg = &Config{Config: coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t"}}}
	require.NoError(t, cfg.Normalize())
	require.Equal(t, catalog.DefaultBaseURL, cfg.Catalog.BaseURL)
	require.Equal(t, "ru", cfg.Translate.TargetLang)
}

func TestTelegramRunOptionsWithoutDatabase(t *testing.T) {
	cfg := &Config{Config: coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t", AdminID: 1}}}
	require.NoError(t, cfg.Normalize())

	a := New(context.Background(), cfg, nil)
	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	require.Same(t, &cfg.Config, opts.Config)
	require.NotNil(t, opts.Dispatcher)
	require.NotEmpty(t, opts.Middlewares)

	endpoints := map[any]bool{}
	for _, r := range opts.Routes {
		endpoints[r.Endpoint] = true
	}
	for _, want := range []any{"/category_search_random", "/cancel", "/start", "/help", "/stats", tele.OnText} {
		require.True(t, endpoints[want], "missing route %v", want)
	}
	require.NoError(t, opts.OnStop(context.Background(), tg.Runtime{}))
	opts.Dispatcher.Close()
}
