package translate

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseGoogleResponseJoinsSegments(t *testing.T) {
	raw := []byte(`[[["Запечённый лосось. ","Baked salmon. ",null,null,10],["Вкусно","Tasty",null,null,10]],null,"en"]`)
	out, err := parseGoogleResponse(raw)
	require.NoError(t, err)
	require.Equal(t, "Запечённый лосось. Вкусно", out)
}

func TestParseGoogleResponseEmpty(t *testing.T) {
	_, err := parseGoogleResponse([]byte(`[null,null,"en"]`))
	require.ErrorIs(t, err, ErrEmptyTranslation)

	_, err = parseGoogleResponse([]byte(`[]`))
	require.ErrorIs(t, err, ErrEmptyTranslation)

	_, err = parseGoogleResponse([]byte(`{"error":1}`))
	require.Error(t, err)
}

func TestGoogleTranslateRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "gtx", r.URL.Query().Get("client"))
		require.Equal(t, "auto", r.URL.Query().Get("sl"))
		require.Equal(t, "ru", r.URL.Query().Get("tl"))
		require.Equal(t, "t", r.URL.Query().Get("dt"))
		body, _ := io.ReadAll(r.Body)
		form, err := url.ParseQuery(string(body))
		require.NoError(t, err)
		require.Equal(t, "Fish & chips", form.Get("q"))
		_, _ = w.Write([]byte(`[[["Рыба с картошкой","Fish & chips",null,null,3]],null,"en"]`))
	}))
	defer srv.Close()

	g := NewGoogle(WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))
	out, err := g.Translate(context.Background(), "Fish & chips", "ru")
	require.NoError(t, err)
	require.Equal(t, "Рыба с картошкой", out)
}

func TestGoogleTranslateBlankSkipsRequest(t *testing.T) {
	g := NewGoogle(WithEndpoint("http://127.0.0.1:1"))
	out, err := g.Translate(context.Background(), "   ", "ru")
	require.NoError(t, err)
	require.Equal(t, "   ", out)
}

func TestGoogleTranslateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGoogle(WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))
	_, err := g.Translate(context.Background(), "Salt", "ru")
	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}
