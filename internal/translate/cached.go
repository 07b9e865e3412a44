package translate

import (
	"context"
	"log/slog"

	"github.com/m3rciful/mealbot/core/logger"
)

// Cached serves translations from a Cache and fills it from the next
// Translator on a miss. Cache errors are logged and never fail a translation.
type Cached struct {
	next  Translator
	cache Cache
}

// NewCached decorates next with cache. A nil cache returns next unchanged.
func NewCached(next Translator, cache Cache) Translator {
	if cache == nil {
		return next
	}
	return &Cached{next: next, cache: cache}
}

// Translate implements Translator.
func (c *Cached) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if out, ok, err := c.cache.Get(ctx, text, targetLang); err != nil {
		logger.Warn(ctx, "translate", "cache.get",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	} else if ok {
		logger.Debug(ctx, "translate", "cache.get", slog.String("cache", "hit"))
		return out, nil
	}

	out, err := c.next.Translate(ctx, text, targetLang)
	if err != nil {
		return "", err
	}
	logger.Debug(ctx, "translate", "cache.get", slog.String("cache", "miss"))
	if err := c.cache.Put(ctx, text, targetLang, out); err != nil {
		logger.Warn(ctx, "translate", "cache.put",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
	return out, nil
}
