package app

import (
	"fmt"
	"strings"

	coreconfig "github.com/m3rciful/mealbot/core/config"
	coredatabase "github.com/m3rciful/mealbot/core/database"
	"github.com/m3rciful/mealbot/internal/catalog"
	"github.com/m3rciful/mealbot/internal/recipes"
	"github.com/m3rciful/mealbot/internal/translate"
)

// CatalogConfig points the bot at the recipe catalog.
type CatalogConfig struct {
	BaseURL        string `yaml:"base_url" envconfig:"CATALOG_BASE_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"CATALOG_TIMEOUT_SECONDS"`
}

// TranslateConfig configures the translation backend and its cache.
type TranslateConfig struct {
	BaseURL        string `yaml:"base_url" envconfig:"TRANSLATE_BASE_URL"`
	TargetLang     string `yaml:"target_lang" envconfig:"TRANSLATE_TARGET_LANG"`
	TimeoutSeconds int    `yaml:"timeout_seconds" envconfig:"TRANSLATE_TIMEOUT_SECONDS"`
	// CacheSize bounds the in-memory cache used without a database.
	CacheSize int `yaml:"cache_size" envconfig:"TRANSLATE_CACHE_SIZE"`
	// CacheTTLHours prunes database cache rows unused for longer; 0 keeps them.
	CacheTTLHours int `yaml:"cache_ttl_hours" envconfig:"TRANSLATE_CACHE_TTL_HOURS"`
}

// RecipesConfig tunes the conversation.
type RecipesConfig struct {
	FanOut        int           `yaml:"fan_out" envconfig:"RECIPES_FAN_OUT"`
	OptionsPerRow int           `yaml:"options_per_row" envconfig:"RECIPES_OPTIONS_PER_ROW"`
	Texts         recipes.Texts `yaml:"texts" ignored:"true"`
}

// Config is the full bot configuration: the shared core plus bot sections.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database  coredatabase.Config `yaml:"database"`
	Catalog   CatalogConfig       `yaml:"catalog"`
	Translate TranslateConfig     `yaml:"translate"`
	Recipes   RecipesConfig       `yaml:"recipes"`
}

// CoreConfig returns the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads path, applies environment overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the configuration and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if c.Catalog.BaseURL = strings.TrimSpace(c.Catalog.BaseURL); c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = catalog.DefaultBaseURL
	}
	if c.Catalog.TimeoutSeconds <= 0 {
		c.Catalog.TimeoutSeconds = 15
	}
	if c.Translate.BaseURL = strings.TrimSpace(c.Translate.BaseURL); c.Translate.BaseURL == "" {
		c.Translate.BaseURL = translate.DefaultGoogleURL
	}
	if c.Translate.TargetLang = strings.ToLower(strings.TrimSpace(c.Translate.TargetLang)); c.Translate.TargetLang == "" {
		c.Translate.TargetLang = "ru"
	}
	if c.Translate.TimeoutSeconds <= 0 {
		c.Translate.TimeoutSeconds = 10
	}
	if c.Translate.CacheSize < 0 {
		return fmt.Errorf("translate.cache_size must be >= 0")
	}
	if c.Translate.CacheTTLHours < 0 {
		return fmt.Errorf("translate.cache_ttl_hours must be >= 0")
	}
	if c.Recipes.FanOut < 0 {
		return fmt.Errorf("recipes.fan_out must be >= 0")
	}
	c.Recipes.Texts = c.Recipes.Texts.WithDefaults()
	return nil
}
