package helpers

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/mealbot/core/logger"
)

const contextKey = "logger_ctx"

// StoreContext attaches ctx to c for downstream helpers.
func StoreContext(c tele.Context, ctx context.Context) {
	if c != nil && ctx != nil {
		c.Set(contextKey, ctx)
	}
}

// ContextFrom returns the context stored on c, if any.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(contextKey).(context.Context)
	return ctx, ok
}

// BuildContext returns the logging context of the update, creating it on
// first use with the rid and update, user and chat ids.
func BuildContext(c tele.Context) context.Context {
	if ctx, ok := ContextFrom(c); ok {
		return ctx
	}

	var userID, chatID int64
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	if ch := c.Chat(); ch != nil {
		chatID = ch.ID
	}
	updateID := c.Update().ID
	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
	}

	ctx := logger.WithLogger(context.Background(), logger.Component("tg"))
	ctx = logger.WithUpdateMeta(logger.WithRID(ctx, rid), updateID, userID, chatID)
	StoreContext(c, ctx)
	return ctx
}

// enrich applies fn to the stored context when value is set.
func enrich(c tele.Context, value string, fn func(context.Context, string) context.Context) context.Context {
	ctx := BuildContext(c)
	if value == "" {
		return ctx
	}
	ctx = fn(ctx, value)
	StoreContext(c, ctx)
	return ctx
}

// WithConversation tags the update context with the conversation id.
func WithConversation(c tele.Context, id string) context.Context {
	return enrich(c, id, logger.WithConversation)
}

// WithHandler tags the update context with the handler name.
func WithHandler(c tele.Context, handler string) context.Context {
	return enrich(c, handler, logger.WithHandler)
}
