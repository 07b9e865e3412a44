package logger

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, enc encoder, level slog.Level) (*slog.Logger, func() string) {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{level: level, writer: aw, encoder: enc})
	return slog.New(h), func() string {
		require.NoError(t, aw.Close())
		return strings.TrimSpace(buf.String())
	}
}

func TestHandlerKVKeyOrder(t *testing.T) {
	log, output := newTestLogger(t, kvEncoder{}, slog.LevelInfo)
	ctx := WithRID(Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)
	ctx = WithConversation(ctx, "conv-1")

	LogEvent(ctx, log.With("component", "recipes"), slog.LevelInfo, "flow.start",
		slog.String("status", "OK"),
		slog.Int("requested", 3),
	)

	tokens := strings.Split(output(), " ")
	want := []string{"ts=", "level=INFO", "component=recipes", "event=flow.start", "status=ok", "rid=rid-123", "conversation_id=conv-1", "update_id=42", "user_id=7", "chat_id=9"}
	require.GreaterOrEqual(t, len(tokens), len(want))
	for i, prefix := range want {
		require.True(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, want prefix %s", i, tokens[i], prefix)
	}
}

func TestHandlerJSONKeyOrderAndRID(t *testing.T) {
	log, output := newTestLogger(t, jsonEncoder{}, slog.LevelInfo)
	ctx := WithRID(Background(), "12:34:56")

	LogEvent(ctx, log.With("component", "catalog"), slog.LevelError, "catalog.request",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
	)

	line := output()
	pos := -1
	for _, pref := range []string{`{"ts":`, `"level":"ERROR"`, `"component":"catalog"`, `"event":"catalog.request"`, `"status":"fail"`, `"rid":"` + CompactRID("12:34:56") + `"`, `"rid_full":"12:34:56"`} {
		idx := strings.Index(line, pref)
		require.Greater(t, idx, pos, "%s out of order in %s", pref, line)
		pos = idx
	}
}

func TestHandlerKVOmitsFullRID(t *testing.T) {
	log, output := newTestLogger(t, kvEncoder{}, slog.LevelInfo)
	log.InfoContext(WithRID(Background(), "123:456:789"), "rid.test")

	line := output()
	require.Contains(t, line, "rid="+CompactRID("123:456:789"))
	require.NotContains(t, line, "rid_full=")
	require.Contains(t, line, "event=rid.test")
	require.Contains(t, line, "component=app")
}

func TestHandlerDurationsAndEnums(t *testing.T) {
	log, output := newTestLogger(t, kvEncoder{}, slog.LevelDebug)
	LogEvent(Background(), log, slog.LevelDebug, "translate.batch",
		slog.Duration("duration", 1499*time.Microsecond),
		slog.Duration("lookup_duration", 2*time.Second),
		slog.Duration("backoff_ms", 20*time.Millisecond),
		slog.String("status", "degraded"),
		slog.String("cache", "bogus"),
		slog.String("outcome", "ignored"),
		slog.String("empty", "  "),
	)

	line := output()
	for _, want := range []string{"duration_ms=1", "lookup_duration_ms=2000", "backoff_ms=20", "status=degraded", "outcome=ignored"} {
		require.Contains(t, line, want)
	}
	require.NotContains(t, line, "cache=")
	require.NotContains(t, line, "empty=")
}

func TestHandlerGroupsAndQuoting(t *testing.T) {
	log, output := newTestLogger(t, kvEncoder{}, slog.LevelInfo)
	log.WithGroup("req").Info("grouped", slog.String("category", "Side dish"), slog.Group("q", slog.Int("n", 2)))

	line := output()
	require.Contains(t, line, `req.category="Side dish"`)
	require.Contains(t, line, "req.q.n=2")
}

func TestHandlerRespectsLevel(t *testing.T) {
	log, output := newTestLogger(t, jsonEncoder{}, slog.LevelWarn)
	log.Info("dropped")
	require.Empty(t, output())
}

func TestDurationKey(t *testing.T) {
	cases := map[string]string{
		"duration":       "duration_ms",
		"fetch_duration": "fetch_duration_ms",
		"elapsed_ms":     "elapsed_ms",
		"wait":           "wait_ms",
	}
	for in, want := range cases {
		require.Equal(t, want, durationKey(in), in)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var got []bool
	for range 6 {
		got = append(got, s.Allow())
	}
	require.Equal(t, []bool{true, false, false, true, false, false}, got)

	s.Set(0, 0)
	require.True(t, s.Allow())

	num, den := parseRatioSpec(" 2/5 ")
	require.Equal(t, [2]int{2, 5}, [2]int{num, den})
	num, den = parseRatioSpec("50")
	require.Equal(t, [2]int{1, 50}, [2]int{num, den})
	num, den = parseRatioSpec("off")
	require.Equal(t, [2]int{0, 0}, [2]int{num, den})
}

func TestSanitizeAndCompactRID(t *testing.T) {
	require.Equal(t, "a\tb\nc", Sanitize("a\tb\nc\x00\u200b\x7f"))
	require.Equal(t, "при", SanitizeLimit("привет", 3))
	require.Equal(t, "", SanitizeLimit("x", 0))
	require.Equal(t, "z.1.a", CompactRID("35:1:10"))
	require.Equal(t, "a:b", CompactRID(" a:b "))
	require.Equal(t, "1:x:2", CompactRID("1:x:2"))
}
