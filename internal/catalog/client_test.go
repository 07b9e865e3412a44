package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestListCategories(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/list.php", r.URL.Path)
		require.Equal(t, "list", r.URL.Query().Get("c"))
		_, _ = w.Write([]byte(`{"meals":[{"strCategory":"Beef"},{"strCategory":" "},{"strCategory":"Seafood"}]}`))
	})

	got, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Category{"Beef", "Seafood"}, got)
}

func TestListByCategoryEscapesAndHandlesNullMeals(t *testing.T) {
	var seen string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query().Get("c")
		if seen == "Nothing Here" {
			_, _ = w.Write([]byte(`{"meals":null}`))
			return
		}
		_, _ = w.Write([]byte(`{"meals":[
			{"strMeal":"Baked salmon","strMealThumb":"t1","idMeal":"52959"},
			{"strMeal":"Kedgeree","strMealThumb":"t2","idMeal":"52887"}
		]}`))
	})

	got, err := c.ListByCategory(context.Background(), "Seafood")
	require.NoError(t, err)
	require.Equal(t, []RecipeSummary{
		{ID: "52959", Name: "Baked salmon", Thumb: "t1"},
		{ID: "52887", Name: "Kedgeree", Thumb: "t2"},
	}, got)

	got, err = c.ListByCategory(context.Background(), "Nothing Here")
	require.NoError(t, err)
	require.Empty(t, got)
	require.Equal(t, "Nothing Here", seen)
}

func TestLookupParsesIngredientSlots(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "52959", r.URL.Query().Get("i"))
		_, _ = w.Write([]byte(`{"meals":[{
			"idMeal":"52959","strMeal":"Baked salmon","strCategory":"Seafood","strArea":"British",
			"strInstructions":"Bake it.",
			"strIngredient1":"Salmon","strMeasure1":"2 fillets",
			"strIngredient2":"Lemon","strMeasure2":null,
			"strIngredient3":"  ","strMeasure3":" ",
			"strIngredient4":"Salt","strMeasure4":"pinch ",
			"strIngredient5":"","strMeasure5":"",
			"strIngredient20":null,"strMeasure20":null,
			"dateModified":null
		}]}`))
	})

	d, err := c.Lookup(context.Background(), "52959")
	require.NoError(t, err)
	require.Equal(t, "Baked salmon", d.Name)
	require.Equal(t, "British", d.Area)
	require.Equal(t, "Bake it.", d.Instructions)
	require.Len(t, d.Ingredients, 5)
	require.Equal(t, Ingredient{Slot: 3, Name: "  ", Measure: " "}, d.Ingredients[2])

	filled := d.FilledIngredients()
	require.Equal(t, []Ingredient{
		{Slot: 1, Name: "Salmon", Measure: "2 fillets"},
		{Slot: 2, Name: "Lemon", Measure: ""},
		{Slot: 4, Name: "Salt", Measure: "pinch"},
	}, filled)
}

func TestLookupNotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"meals":null}`))
	})
	_, err := c.Lookup(context.Background(), "1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNon2xxReturnsHTTPStatusError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	_, err := c.ListCategories(context.Background())
	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusBadGateway, statusErr.HTTPStatusCode())
	require.Contains(t, statusErr.Body, "upstream down")
}

func TestMalformedJSON(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	_, err := c.ListByCategory(context.Background(), "Beef")
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode response")
}

func TestNewClientAppendsSlash(t *testing.T) {
	c := NewClient(WithBaseURL("http://example.org/api"))
	require.Equal(t, "http://example.org/api/", c.baseURL)
	require.Equal(t, DefaultBaseURL, NewClient().baseURL)
}
