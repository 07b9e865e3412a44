// Package recipes implements the random-recipe conversation: pick a count,
// pick a category, then receive translated recipe details.
package recipes

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/m3rciful/mealbot/core/logger"
	"github.com/m3rciful/mealbot/core/telegram/state"
	"github.com/m3rciful/mealbot/internal/catalog"
	"github.com/m3rciful/mealbot/internal/translate"
)

const (
	// StateAwaitingCategory waits for a category name.
	StateAwaitingCategory state.State = "awaiting_category"
	// StateAwaitingRecipeRequest waits for the fetch-details option.
	StateAwaitingRecipeRequest state.State = "awaiting_recipe_request"

	// KeyRequestedCount holds the count from the start command.
	KeyRequestedCount = "requested_count"
	// KeySelectedIDs holds the sampled recipe ids in display order.
	KeySelectedIDs = "selected_recipe_ids"

	defaultFanOut     = 4
	defaultTargetLang = "ru"
)

// Catalog is the subset of the catalog client the flow depends on.
type Catalog interface {
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	ListByCategory(ctx context.Context, category string) ([]catalog.RecipeSummary, error)
	Lookup(ctx context.Context, id string) (catalog.RecipeDetail, error)
}

// Reply is one outbound message.
type Reply struct {
	Text string
	// Options are one-time suggested replies.
	Options []string
	HTML    bool
	// RemoveKeyboard hides a previously shown keyboard.
	RemoveKeyboard bool
}

// Options configures a Flow.
type Options struct {
	TargetLang string
	// FanOut bounds concurrent lookups and translations; <= 0 selects 4.
	FanOut int
	Texts  Texts
	// Rand drives recipe sampling. Nil uses the global source.
	Rand *rand.Rand
}

// Flow runs the three transitions against a session store.
type Flow struct {
	catalog    Catalog
	translator translate.Translator
	store      state.Manager
	lang       string
	fanOut     int
	texts      Texts

	randMu sync.Mutex
	rand   *rand.Rand
}

// NewFlow wires the flow collaborators.
func NewFlow(cat Catalog, tr translate.Translator, store state.Manager, opts Options) *Flow {
	f := &Flow{
		catalog:    cat,
		translator: tr,
		store:      store,
		lang:       strings.TrimSpace(opts.TargetLang),
		fanOut:     opts.FanOut,
		texts:      opts.Texts.WithDefaults(),
		rand:       opts.Rand,
	}
	if f.lang == "" {
		f.lang = defaultTargetLang
	}
	if f.fanOut <= 0 {
		f.fanOut = defaultFanOut
	}
	return f
}

// Texts returns the effective user-facing texts.
func (f *Flow) Texts() Texts {
	return f.texts
}

// ParseCount parses the start command argument as a positive integer.
func ParseCount(arg string) (int, error) {
	fields := strings.Fields(arg)
	if len(fields) != 1 {
		return 0, errors.New("expected exactly one argument")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errors.New("count must be positive")
	}
	return n, nil
}

// Start handles the start command in any state. The session is reset only
// after the category list has been fetched.
func (f *Flow) Start(ctx context.Context, userID int64, arg string) ([]Reply, error) {
	count, err := ParseCount(arg)
	if err != nil {
		return f.notice(f.texts.CountPrompt), newError(CodeUserInput, "invalid count "+strconv.Quote(arg), err)
	}

	categories, err := f.catalog.ListCategories(ctx)
	if err != nil {
		return f.notice(f.texts.UpstreamFailure), newError(CodeUpstreamUnavailable, "list categories", err)
	}
	if len(categories) == 0 {
		return f.notice(f.texts.UpstreamFailure), newError(CodeUpstreamUnavailable, "empty category list", nil)
	}

	sess := f.store.Reset(userID, StateAwaitingCategory)
	f.store.SetTemp(userID, KeyRequestedCount, count)
	ctx = logger.WithConversation(ctx, sess.ID)
	logger.Info(ctx, "recipes", "conversation.start",
		slog.String("status", "ok"),
		slog.String("state", string(StateAwaitingCategory)),
		slog.Int("requested", count),
		slog.Int("available", len(categories)),
	)

	options := make([]string, len(categories))
	for i, c := range categories {
		options[i] = string(c)
	}
	return []Reply{{Text: f.texts.ChooseCategory, Options: options}}, nil
}

// ChooseCategory handles free text while awaiting a category.
func (f *Flow) ChooseCategory(ctx context.Context, userID int64, text string) ([]Reply, error) {
	sess := f.store.Get(userID)
	if sess.State != StateAwaitingCategory {
		return nil, nil
	}
	ctx = logger.WithConversation(ctx, sess.ID)

	count, ok := f.store.GetTempInt(userID, KeyRequestedCount)
	if !ok || count < 1 {
		return f.expire(userID)
	}

	category := strings.TrimSpace(text)
	if category == "" {
		return f.notice(f.texts.EmptyCategory), newError(CodeEmptySelection, "blank category", nil)
	}

	summaries, err := f.catalog.ListByCategory(ctx, category)
	if err != nil {
		return f.notice(f.texts.UpstreamFailure), newError(CodeUpstreamUnavailable, "list category "+strconv.Quote(category), err)
	}
	if len(summaries) == 0 {
		return f.notice(f.texts.EmptyCategory), newError(CodeEmptySelection, "no recipes in "+strconv.Quote(category), nil)
	}

	picked := f.sample(summaries, count)
	ids := make([]string, len(picked))
	names := make([]string, len(picked))
	for i, s := range picked {
		ids[i] = s.ID
		names[i] = s.Name
	}
	names = f.translateAll(ctx, names)

	f.store.Update(userID, func(s *state.Session) {
		s.State = StateAwaitingRecipeRequest
		s.TempData[KeySelectedIDs] = ids
	})
	logger.Info(ctx, "recipes", "conversation.category",
		slog.String("status", "ok"),
		slog.String("state", string(StateAwaitingRecipeRequest)),
		slog.String("category", logger.SanitizeLimit(category, 64)),
		slog.Int("requested", count),
		slog.Int("available", len(summaries)),
		slog.Int("selected", len(ids)),
	)

	return []Reply{{Text: renderSelection(f.texts, names), Options: []string{f.texts.FetchButton}}}, nil
}

// FetchDetails looks up every selected recipe and renders its messages in
// selection order. The session is cleared only on success.
func (f *Flow) FetchDetails(ctx context.Context, userID int64) ([]Reply, error) {
	sess := f.store.Get(userID)
	if sess.State != StateAwaitingRecipeRequest {
		return nil, nil
	}
	ctx = logger.WithConversation(ctx, sess.ID)

	ids, ok := f.store.GetTempStrings(userID, KeySelectedIDs)
	if !ok || len(ids) == 0 {
		return f.expire(userID)
	}

	details, err := f.lookupAll(ctx, ids)
	if err != nil {
		return f.notice(f.texts.UpstreamFailure), newError(CodeUpstreamUnavailable, "lookup recipes", err)
	}

	replies := make([]Reply, 0, len(details))
	for _, d := range details {
		for _, part := range renderRecipe(f.texts, f.localize(ctx, d)) {
			replies = append(replies, Reply{
				Text:           part,
				HTML:           true,
				RemoveKeyboard: true,
			})
		}
	}

	f.store.Clear(userID)
	logger.Info(ctx, "recipes", "conversation.complete",
		slog.String("status", "ok"),
		slog.String("state", string(state.StateIdle)),
		slog.Int("selected", len(ids)),
	)
	return replies, nil
}

// Cancel drops the user's conversation.
func (f *Flow) Cancel(ctx context.Context, userID int64) []Reply {
	if !f.store.InProgress(userID) {
		return []Reply{{Text: f.texts.NothingToCancel, RemoveKeyboard: true}}
	}
	sess := f.store.Get(userID)
	f.store.Clear(userID)
	logger.Info(logger.WithConversation(ctx, sess.ID), "recipes", "conversation.cancel",
		slog.String("status", "cancelled"),
		slog.String("state", string(sess.State)),
	)
	return []Reply{{Text: f.texts.Cancelled, RemoveKeyboard: true}}
}

func (f *Flow) notice(text string) []Reply {
	return []Reply{{Text: text}}
}

func (f *Flow) expire(userID int64) ([]Reply, error) {
	f.store.Clear(userID)
	return []Reply{{Text: f.texts.SessionExpired, RemoveKeyboard: true}},
		newError(CodeSessionExpired, "conversation data missing", nil)
}

func (f *Flow) sample(items []catalog.RecipeSummary, n int) []catalog.RecipeSummary {
	if f.rand == nil {
		return sample(rand.IntN, items, n)
	}
	f.randMu.Lock()
	defer f.randMu.Unlock()
	return sample(f.rand.IntN, items, n)
}

// lookupAll fetches ids concurrently; results keep the order of ids.
func (f *Flow) lookupAll(ctx context.Context, ids []string) ([]catalog.RecipeDetail, error) {
	out := make([]catalog.RecipeDetail, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.fanOut)
	for i, id := range ids {
		g.Go(func() error {
			d, err := f.catalog.Lookup(gctx, id)
			if err != nil {
				return err
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// localize translates a recipe's name, instructions and ingredient names.
// Measures are kept as published.
func (f *Flow) localize(ctx context.Context, d catalog.RecipeDetail) localizedRecipe {
	ingredients := d.FilledIngredients()
	texts := make([]string, 0, 2+len(ingredients))
	texts = append(texts, d.Name, d.Instructions)
	for _, ing := range ingredients {
		texts = append(texts, ing.Name)
	}
	translated := f.translateAll(ctx, texts)
	for i := range ingredients {
		ingredients[i].Name = translated[2+i]
	}
	return localizedRecipe{
		Name:         translated[0],
		Instructions: translated[1],
		Ingredients:  ingredients,
	}
}

// translateAll translates texts concurrently. A failed string keeps its
// source text.
func (f *Flow) translateAll(ctx context.Context, texts []string) []string {
	out := make([]string, len(texts))
	var (
		g      errgroup.Group
		failMu sync.Mutex
		failed int
		first  error
	)
	g.SetLimit(f.fanOut)
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			out[i] = text
			continue
		}
		g.Go(func() error {
			translated, err := f.translator.Translate(ctx, text, f.lang)
			if err != nil || strings.TrimSpace(translated) == "" {
				out[i] = text
				failMu.Lock()
				failed++
				if first == nil {
					first = err
				}
				failMu.Unlock()
				return nil
			}
			out[i] = translated
			return nil
		})
	}
	_ = g.Wait()

	if failed > 0 {
		attrs := []slog.Attr{
			slog.String("status", "degraded"),
			slog.String("lang", f.lang),
			slog.Int("failed", failed),
			slog.Int("total", len(texts)),
		}
		if first != nil {
			attrs = append(attrs, slog.String("err", logger.SanitizeLimit(first.Error(), 256)))
		}
		logger.Warn(ctx, "recipes", "translate.degraded", attrs...)
	}
	return out
}
