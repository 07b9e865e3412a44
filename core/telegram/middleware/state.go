package middleware

import (
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/mealbot/core/logger"
	tghelpers "github.com/m3rciful/mealbot/core/telegram/helpers"
)

// ExactText passes only messages whose trimmed text equals expected.
// Anything else is dropped with a debug line.
func ExactText(expected string) tele.MiddlewareFunc {
	expected = strings.TrimSpace(expected)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			got := strings.TrimSpace(c.Text())
			ctx := tghelpers.BuildContext(c)
			if got == expected {
				logger.Debug(ctx, "tg", "fsm.match",
					slog.String("expected", expected),
				)
				return next(c)
			}
			logger.Debug(ctx, "tg", "fsm.skip",
				slog.String("expected", expected),
				slog.String("payload", logger.SanitizeLimit(got, 64)),
			)
			return nil
		}
	}
}
