package logger

import "strings"

const (
	// LevelDebug represents the debug severity level name.
	LevelDebug = "DEBUG"
	// LevelInfo represents the info severity level name.
	LevelInfo = "INFO"
	// LevelWarn represents the warning severity level name.
	LevelWarn = "WARN"
	// LevelError represents the error severity level name.
	LevelError = "ERROR"
)

// enum restricts a field to a fixed vocabulary. Unknown values are dropped
// when strict, otherwise passed through lowercased.
type enum struct {
	values map[string]struct{}
	strict bool
}

func newEnum(strict bool, values ...string) enum {
	e := enum{values: make(map[string]struct{}, len(values)), strict: strict}
	for _, v := range values {
		e.values[v] = struct{}{}
	}
	return e
}

func (e enum) normalize(v string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "", false
	}
	if _, ok := e.values[v]; ok || !e.strict {
		return v, true
	}
	return "", false
}

var enumFields = map[string]enum{
	"status":  newEnum(false, "ok", "fail", "skip", "retry", "degraded", "cancelled"),
	"outcome": newEnum(true, "ok", "fail", "cancelled", "ignored"),
	"cache":   newEnum(true, "hit", "miss", "off"),
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return strings.ToUpper(level)
}

// defaultKeyOrder pins the leading keys of every line; the rest follow
// alphabetically.
var defaultKeyOrder = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "conversation_id",
	"update_id", "user_id", "chat_id", "chat_type",
	"handler", "state", "expected", "op", "outcome", "duration_ms",
	"messages", "kb", "count", "requested", "available", "selected",
	"category", "recipe_id", "lang", "cache", "backend",
	"payload", "username", "mode", "listen", "public_url",
	"http_code", "url", "db", "host", "port",
	"err", "err_code", "err_kind", "cause", "attempts", "backoff_ms",
}
