package pricecharting

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dittoscan/ditto/internal/resilience"
)

func TestSearch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("t"))
		assert.Equal(t, "Super Metroid SNES", r.URL.Query().Get("q"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"products": [
				{"id": "6910", "product-name": "Super Metroid", "console-name": "Super Nintendo"},
				{"id": "6911", "product-name": "Super Metroid [Player's Choice]", "console-name": "Super Nintendo"}
			]
		}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.Search(context.Background(), "Super Metroid SNES")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "6910", got[0].ID)
	assert.Equal(t, "Super Metroid", got[0].ProductName)
	assert.Equal(t, "Super Nintendo", got[0].ConsoleName)
}

func TestProduct_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/product", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("t"))
		assert.Equal(t, "6910", r.URL.Query().Get("id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "6910",
			"product-name": "Super Metroid",
			"console-name": "Super Nintendo",
			"loose-price": 4500,
			"cib-price": 15000,
			"genre": "Action"
		}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	got, err := client.Product(context.Background(), "6910")

	require.NoError(t, err)
	assert.Equal(t, "Super Metroid", got.ProductName)
	require.NotNil(t, got.LoosePrice)
	assert.Equal(t, 4500, *got.LoosePrice)
	require.NotNil(t, got.CIBPrice)
	assert.Equal(t, 15000, *got.CIBPrice)
	assert.Nil(t, got.NewPrice, "unlisted bases stay nil")
	assert.Equal(t, "https://www.pricecharting.com/game/6910", got.URL())
}

func TestSearch_HTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","error-message":"invalid token"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "Super Metroid")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.False(t, resilience.IsTransient(err), "auth failures must not be retried")
}

func TestProduct_TransientStatus(t *testing.T) {
	t.Parallel()

	for _, code := range []int{http.StatusTooManyRequests, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		client := NewClient("test-key", WithBaseURL(srv.URL))
		_, err := client.Product(context.Background(), "6910")

		require.Error(t, err)
		assert.True(t, resilience.IsTransient(err), "HTTP %d should be retryable", code)

		var terr *resilience.TransientError
		require.True(t, errors.As(err, &terr))
		assert.Equal(t, code, terr.StatusCode)
		srv.Close()
	}
}

func TestSearch_MalformedResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := client.Search(context.Background(), "Super Metroid")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal")
}
