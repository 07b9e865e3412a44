package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	keyLogger ctxKey = iota
	keyRID
	keyUpdateID
	keyUserID
	keyChatID
	keyHandler
	keyConversation
)

func ctxValue[T any](ctx context.Context, key ctxKey) T {
	var zero T
	if ctx == nil {
		return zero
	}
	v, _ := ctx.Value(key).(T)
	return v
}

func withValue(ctx context.Context, key ctxKey, v any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

// WithLogger stores log in ctx; nil leaves ctx unchanged.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if log == nil {
		if ctx == nil {
			return context.Background()
		}
		return ctx
	}
	return withValue(ctx, keyLogger, log)
}

// FromContext returns the logger stored in ctx or the global one.
func FromContext(ctx context.Context) *slog.Logger {
	if l := ctxValue[*slog.Logger](ctx, keyLogger); l != nil {
		return l
	}
	return L
}

// WithRID attaches the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return withValue(ctx, keyRID, rid)
}

// RIDFrom returns the request correlation id, if any.
func RIDFrom(ctx context.Context) string { return ctxValue[string](ctx, keyRID) }

// WithUpdateMeta attaches the Telegram update, user and chat ids.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	ctx = withValue(ctx, keyUpdateID, updateID)
	ctx = withValue(ctx, keyUserID, userID)
	return withValue(ctx, keyChatID, chatID)
}

// UpdateIDFrom returns the Telegram update id, or 0.
func UpdateIDFrom(ctx context.Context) int { return ctxValue[int](ctx, keyUpdateID) }

// UserIDFrom returns the Telegram user id, or 0.
func UserIDFrom(ctx context.Context) int64 { return ctxValue[int64](ctx, keyUserID) }

// ChatIDFrom returns the Telegram chat id, or 0.
func ChatIDFrom(ctx context.Context) int64 { return ctxValue[int64](ctx, keyChatID) }

// WithHandler names the handler serving the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		return withValue(ctx, keyHandler, HandlerFrom(ctx))
	}
	return withValue(ctx, keyHandler, handler)
}

// HandlerFrom returns the handler name, if any.
func HandlerFrom(ctx context.Context) string { return ctxValue[string](ctx, keyHandler) }

// WithConversation stores the id that correlates all updates of one
// recipe request.
func WithConversation(ctx context.Context, id string) context.Context {
	if id == "" {
		return withValue(ctx, keyConversation, ConversationFrom(ctx))
	}
	return withValue(ctx, keyConversation, id)
}

// ConversationFrom returns the conversation id, if any.
func ConversationFrom(ctx context.Context) string { return ctxValue[string](ctx, keyConversation) }

// contextFields lists the context values copied onto every record. Record
// attributes with the same key win.
var contextFields = []struct {
	key string
	get func(context.Context) any
}{
	{"rid", func(ctx context.Context) any { return RIDFrom(ctx) }},
	{"conversation_id", func(ctx context.Context) any { return ConversationFrom(ctx) }},
	{"user_id", func(ctx context.Context) any { return nonZero(UserIDFrom(ctx)) }},
	{"update_id", func(ctx context.Context) any { return nonZero(int64(UpdateIDFrom(ctx))) }},
	{"chat_id", func(ctx context.Context) any { return nonZero(ChatIDFrom(ctx)) }},
	{"handler", func(ctx context.Context) any { return HandlerFrom(ctx) }},
}

func nonZero(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
