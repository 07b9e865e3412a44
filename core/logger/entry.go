package logger

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"
)

const timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"

// entry is one log line under construction.
type entry struct {
	fields map[string]any
}

func newEntry(ts time.Time, level slog.Level) *entry {
	e := &entry{fields: make(map[string]any, 16)}
	e.fields["ts"] = ts.UTC().Truncate(time.Millisecond).Format(timeFormatMillis)
	e.fields["level"] = normalizeLevel(level.String())
	return e
}

func (e *entry) addAttr(prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	key := joinKey(prefix, a.Key)
	if a.Value.Kind() == slog.KindGroup {
		for _, child := range a.Value.Group() {
			e.addAttr(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	if a.Value.Kind() == slog.KindDuration {
		e.fields[durationKey(key)] = RoundMS(a.Value.Duration()).Milliseconds()
		return
	}
	if v := plainValue(a.Value); v != nil {
		e.fields[key] = v
	}
}

// setDefault stores v unless key is already set or v is empty.
func (e *entry) setDefault(key string, v any) {
	if _, ok := e.fields[key]; ok || v == nil || v == "" {
		return
	}
	e.fields[key] = v
}

func (e *entry) str(key string) string {
	switch v := e.fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// finalize fills required keys, compacts the rid and normalizes
// enumerated fields.
func (e *entry) finalize(msg string, keepFullRID bool) {
	if rid := e.str("rid"); rid != "" {
		if compact := CompactRID(rid); compact != rid {
			e.fields["rid"] = compact
			if keepFullRID {
				e.setDefault("rid_full", rid)
			}
		}
	}
	if e.str("event") == "" {
		if msg == "" {
			msg = "unknown"
		}
		e.fields["event"] = msg
	}
	if e.str("component") == "" {
		e.fields["component"] = "app"
	}
	for key, en := range enumFields {
		raw, ok := e.fields[key].(string)
		if !ok {
			continue
		}
		if v, ok := en.normalize(raw); ok {
			e.fields[key] = v
		} else {
			delete(e.fields, key)
		}
	}
	for k, v := range e.fields {
		if s, ok := v.(string); ok && s == "" {
			delete(e.fields, k)
		}
	}
}

// keys returns the pinned keys present in order, then the rest sorted.
func (e *entry) keys(order []string) []string {
	out := make([]string, 0, len(e.fields))
	pinned := make(map[string]struct{}, len(order))
	for _, k := range order {
		pinned[k] = struct{}{}
		if _, ok := e.fields[k]; ok {
			out = append(out, k)
		}
	}
	n := len(out)
	for k := range e.fields {
		if _, ok := pinned[k]; !ok {
			out = append(out, k)
		}
	}
	slices.Sort(out[n:])
	return out
}

func plainValue(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return strings.TrimSpace(v.String())
	case slog.KindBool:
		return v.Bool()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return int64(u)
		}
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339Nano)
	}
	switch x := v.Any().(type) {
	case nil:
		return nil
	case error:
		return x.Error()
	case string:
		return strings.TrimSpace(x)
	case time.Duration:
		return RoundMS(x).Milliseconds()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
