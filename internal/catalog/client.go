// Package catalog is a read-only client for TheMealDB recipe catalog.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/mealbot/core/httpx"
	"github.com/m3rciful/mealbot/core/logger"
)

// DefaultBaseURL is the public TheMealDB v1 endpoint with the test key.
const DefaultBaseURL = "https://www.themealdb.com/api/json/v1/1/"

// ErrNotFound is returned by Lookup when the catalog has no recipe for the id.
var ErrNotFound = errors.New("catalog: recipe not found")

// HTTPStatusError captures non-2xx upstream responses.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("catalog: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

// HTTPStatusCode returns the upstream status code.
func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client queries the catalog. The zero value is not usable; use NewClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithBaseURL overrides the catalog endpoint, mostly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if b := strings.TrimSpace(baseURL); b != "" {
			c.baseURL = b
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient builds a catalog client. Requests are never retried.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: httpx.NewClient(httpx.Options{Timeout: 15 * time.Second}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	return c
}

type categoriesResponse struct {
	Meals []struct {
		Category string `json:"strCategory"`
	} `json:"meals"`
}

type filterResponse struct {
	Meals []struct {
		ID    string `json:"idMeal"`
		Name  string `json:"strMeal"`
		Thumb string `json:"strMealThumb"`
	} `json:"meals"`
}

type lookupResponse struct {
	Meals []map[string]any `json:"meals"`
}

// ListCategories returns every category name in catalog order.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var payload categoriesResponse
	if err := c.getJSON(ctx, "list.php", url.Values{"c": {"list"}}, &payload); err != nil {
		return nil, err
	}
	out := make([]Category, 0, len(payload.Meals))
	for _, m := range payload.Meals {
		if name := strings.TrimSpace(m.Category); name != "" {
			out = append(out, Category(name))
		}
	}
	return out, nil
}

// ListByCategory returns all recipes in category. An unknown category yields
// an empty slice.
func (c *Client) ListByCategory(ctx context.Context, category string) ([]RecipeSummary, error) {
	var payload filterResponse
	if err := c.getJSON(ctx, "filter.php", url.Values{"c": {category}}, &payload); err != nil {
		return nil, err
	}
	out := make([]RecipeSummary, 0, len(payload.Meals))
	for _, m := range payload.Meals {
		if m.ID == "" {
			continue
		}
		out = append(out, RecipeSummary{ID: m.ID, Name: m.Name, Thumb: m.Thumb})
	}
	return out, nil
}

// Lookup fetches the full recipe for id.
func (c *Client) Lookup(ctx context.Context, id string) (RecipeDetail, error) {
	var payload lookupResponse
	if err := c.getJSON(ctx, "lookup.php", url.Values{"i": {id}}, &payload); err != nil {
		return RecipeDetail{}, err
	}
	if len(payload.Meals) == 0 || payload.Meals[0] == nil {
		return RecipeDetail{}, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return parseDetail(payload.Meals[0]), nil
}

func parseDetail(m map[string]any) RecipeDetail {
	d := RecipeDetail{
		ID:           str(m, "idMeal"),
		Name:         str(m, "strMeal"),
		Category:     str(m, "strCategory"),
		Area:         str(m, "strArea"),
		Instructions: str(m, "strInstructions"),
	}
	for slot := 1; slot <= MaxIngredientSlots; slot++ {
		n := strconv.Itoa(slot)
		name, ok := m["strIngredient"+n].(string)
		if !ok {
			continue
		}
		d.Ingredients = append(d.Ingredients, Ingredient{
			Slot:    slot,
			Name:    name,
			Measure: str(m, "strMeasure"+n),
		})
	}
	return d
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, dst any) error {
	u := c.baseURL + endpoint + "?" + query.Encode()
	start := time.Now()
	err := c.doJSON(ctx, u, dst)
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("endpoint", endpoint),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_kind", httpx.Classify(err)),
		)
		logger.Warn(ctx, "catalog", "catalog.request", attrs...)
		return err
	}
	logger.Debug(ctx, "catalog", "catalog.request", attrs...)
	return nil
}

func (c *Client) doJSON(ctx context.Context, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("catalog: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &HTTPStatusError{StatusCode: res.StatusCode, URL: u, Body: string(buf)}
	}
	if err := json.NewDecoder(io.LimitReader(res.Body, 4<<20)).Decode(dst); err != nil {
		return fmt.Errorf("catalog: decode response: %w", err)
	}
	return nil
}
