package recipes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/m3rciful/mealbot/internal/catalog"
)

var errUpstream = errors.New("connection refused")

type fakeCatalog struct {
	mu sync.Mutex

	categories    []catalog.Category
	categoriesErr error
	byCategory    map[string][]catalog.RecipeSummary
	listErr       error
	details       map[string]catalog.RecipeDetail
	lookupErr     map[string]error
	// lookupDelay lets tests reorder lookup completion.
	lookupDelay func(id string) time.Duration

	categoryCalls int
	listCalls     int
	lookups       []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories: []catalog.Category{"Beef", "Dessert", "Seafood"},
		byCategory: map[string][]catalog.RecipeSummary{},
		details:    map[string]catalog.RecipeDetail{},
		lookupErr:  map[string]error{},
	}
}

// withRecipes registers n recipes in category with ids "<prefix>1".."<prefix>n".
func (f *fakeCatalog) withRecipes(category, prefix string, n int) *fakeCatalog {
	list := make([]catalog.RecipeSummary, n)
	for i := range list {
		id := fmt.Sprintf("%s%d", prefix, i+1)
		list[i] = catalog.RecipeSummary{ID: id, Name: "Meal " + id}
		f.details[id] = catalog.RecipeDetail{
			ID:           id,
			Name:         "Meal " + id,
			Instructions: "Cook " + id + ".",
			Ingredients: []catalog.Ingredient{
				{Slot: 1, Name: "Rice", Measure: "1 cup"},
				{Slot: 2, Name: "Salt", Measure: ""},
			},
		}
	}
	f.byCategory[category] = list
	return f
}

func (f *fakeCatalog) ListCategories(context.Context) ([]catalog.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categoryCalls++
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return f.categories, nil
}

func (f *fakeCatalog) ListByCategory(_ context.Context, category string) ([]catalog.RecipeSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byCategory[category], nil
}

func (f *fakeCatalog) Lookup(ctx context.Context, id string) (catalog.RecipeDetail, error) {
	if f.lookupDelay != nil {
		select {
		case <-time.After(f.lookupDelay(id)):
		case <-ctx.Done():
			return catalog.RecipeDetail{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, id)
	if err := f.lookupErr[id]; err != nil {
		return catalog.RecipeDetail{}, err
	}
	d, ok := f.details[id]
	if !ok {
		return catalog.RecipeDetail{}, catalog.ErrNotFound
	}
	return d, nil
}

// fakeTranslator prefixes text with "<lang>:" or fails every call.
type fakeTranslator struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (t *fakeTranslator) Translate(_ context.Context, text, lang string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	if t.fail {
		return "", errUpstream
	}
	return lang + ":" + text, nil
}
