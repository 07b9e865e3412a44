package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m3rciful/mealbot/core/httpx"
	"github.com/m3rciful/mealbot/core/logger"
)

// DefaultGoogleURL is the public web translate endpoint.
const DefaultGoogleURL = "https://translate.googleapis.com/translate_a/single"

// ErrEmptyTranslation is returned when the service answers without text.
var ErrEmptyTranslation = errors.New("translate: empty translation")

// HTTPStatusError captures non-2xx responses from the translation service.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("translate: unexpected status %d: %s", e.StatusCode, e.Body)
}

// HTTPStatusCode returns the upstream status code.
func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Google calls the keyless Google web translate endpoint.
type Google struct {
	endpoint   string
	httpClient *http.Client
}

// GoogleOption customises Google.
type GoogleOption func(*Google)

// WithEndpoint overrides the translate endpoint.
func WithEndpoint(endpoint string) GoogleOption {
	return func(g *Google) {
		if e := strings.TrimSpace(endpoint); e != "" {
			g.endpoint = e
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) GoogleOption {
	return func(g *Google) {
		if hc != nil {
			g.httpClient = hc
		}
	}
}

// NewGoogle builds a Google translator. Requests are never retried.
func NewGoogle(opts ...GoogleOption) *Google {
	g := &Google{
		endpoint:   DefaultGoogleURL,
		httpClient: httpx.NewClient(httpx.Options{Timeout: 10 * time.Second}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Translate detects the source language and translates text into targetLang.
// Blank text is returned unchanged without a request.
func (g *Google) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	start := time.Now()
	out, err := g.translate(ctx, text, targetLang)
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("lang", targetLang),
		slog.Int("chars", len(text)),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_kind", httpx.Classify(err)),
		)
	}
	logger.Debug(ctx, "translate", "translate.request", attrs...)
	return out, err
}

func (g *Google) translate(ctx context.Context, text, targetLang string) (string, error) {
	q := url.Values{
		"client": {"gtx"},
		"sl":     {"auto"},
		"tl":     {targetLang},
		"dt":     {"t"},
	}
	body := url.Values{"q": {text}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"?"+q.Encode(), strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("translate: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	res, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return "", &HTTPStatusError{StatusCode: res.StatusCode, Body: string(buf)}
	}
	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("translate: read response: %w", err)
	}
	return parseGoogleResponse(raw)
}

// parseGoogleResponse joins the translated segments of a response shaped
// like [[["Hola","Hello",...],["mundo","world",...]],null,"en",...].
func parseGoogleResponse(raw []byte) (string, error) {
	var payload []json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	if len(payload) == 0 {
		return "", ErrEmptyTranslation
	}
	var segments [][]any
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("translate: decode segments: %w", err)
	}
	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			b.WriteString(s)
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyTranslation
	}
	return b.String(), nil
}
