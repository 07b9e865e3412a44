package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(2)
	require.NoError(t, c.Put(ctx, "Beef", "ru", "Говядина"))
	require.NoError(t, c.Put(ctx, "Lamb", "ru", "Баранина"))

	_, ok, _ := c.Get(ctx, "Beef", "ru")
	require.True(t, ok)

	require.NoError(t, c.Put(ctx, "Pork", "ru", "Свинина"))
	require.Equal(t, 2, c.Len())

	_, ok, _ = c.Get(ctx, "Lamb", "ru")
	require.False(t, ok, "Lamb was least recently used")
	got, ok, _ := c.Get(ctx, "Beef", "ru")
	require.True(t, ok)
	require.Equal(t, "Говядина", got)
}

func TestLRUKeysByLanguage(t *testing.T) {
	ctx := context.Background()
	c := NewLRU(0)
	require.NoError(t, c.Put(ctx, "Salt", "ru", "Соль"))
	require.NoError(t, c.Put(ctx, "Salt", "de", "Salz"))
	require.NoError(t, c.Put(ctx, "Salt", "de", "Salz!"))
	require.Equal(t, 2, c.Len())

	got, ok, _ := c.Get(ctx, "Salt", "de")
	require.True(t, ok)
	require.Equal(t, "Salz!", got)
}

// countingTranslator prefixes text with the target language and counts calls.
func countingTranslator(calls *int, err error) Func {
	return func(_ context.Context, text, lang string) (string, error) {
		*calls++
		if err != nil {
			return "", err
		}
		return lang + ":" + text, nil
	}
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, string) (string, bool, error) {
	return "", false, errors.New("db down")
}

func (brokenCache) Put(context.Context, string, string, string) error {
	return errors.New("db down")
}

func TestCachedHitAndMiss(t *testing.T) {
	ctx := context.Background()
	var calls int
	tr := NewCached(countingTranslator(&calls, nil), NewLRU(8))

	out, err := tr.Translate(ctx, "Salt", "ru")
	require.NoError(t, err)
	require.Equal(t, "ru:Salt", out)

	out, err = tr.Translate(ctx, "Salt", "ru")
	require.NoError(t, err)
	require.Equal(t, "ru:Salt", out)
	require.Equal(t, 1, calls)
}

func TestCachedDoesNotStoreFailures(t *testing.T) {
	ctx := context.Background()
	var calls int
	cache := NewLRU(8)
	tr := NewCached(countingTranslator(&calls, errors.New("unreachable")), cache)

	_, err := tr.Translate(ctx, "Salt", "ru")
	require.Error(t, err)
	require.Zero(t, cache.Len())

	_, err = tr.Translate(ctx, "Salt", "ru")
	require.Error(t, err)
	require.Equal(t, 2, calls)
}

func TestCachedSurvivesCacheErrors(t *testing.T) {
	var calls int
	tr := NewCached(countingTranslator(&calls, nil), brokenCache{})
	out, err := tr.Translate(context.Background(), "Salt", "ru")
	require.NoError(t, err)
	require.Equal(t, "ru:Salt", out)
}

func TestNewCachedNilCache(t *testing.T) {
	inner := &upperTranslator{}
	require.Same(t, inner, NewCached(inner, nil))
}

type upperTranslator struct{}

func (*upperTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	return strings.ToUpper(text), nil
}

func TestFuncSatisfiesTranslator(t *testing.T) {
	var tr Translator = Func(func(_ context.Context, text, lang string) (string, error) {
		return text + "@" + lang, nil
	})
	out, err := tr.Translate(context.Background(), "Salt", "ru")
	require.NoError(t, err)
	require.Equal(t, "Salt@ru", out)
}

func TestSourceHash(t *testing.T) {
	h := sourceHash("Salt")
	require.Len(t, h, 64)
	require.Equal(t, h, sourceHash("Salt"))
	require.NotEqual(t, h, sourceHash("salt"))
}
