package products

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchShoppingResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/request", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "google", r.FormValue("engine"))
		assert.Equal(t, "grey fabric sofa buy", r.FormValue("q"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"shopping_results": [
				{"title": "Grey Fabric Sofa", "link": "https://shop.example.com/sofa", "price": "$499", "source": "Example Shop", "rating": 4.5}
			]
		}`))
	}))
	defer srv.Close()

	product, err := NewClient(srv.URL, "test-key").Search(context.Background(), "grey fabric sofa")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Grey Fabric Sofa", product.Title)
	assert.Equal(t, "https://shop.example.com/sofa", product.Link)
	assert.Equal(t, "$499", product.Price)
	assert.Equal(t, "Example Shop", product.Source)
}

func TestSearchShoppingLinkFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"popular_products": [{"title": "Oak Coffee Table"}]}`))
	}))
	defer srv.Close()

	product, err := NewClient(srv.URL, "test-key").Search(context.Background(), "oak coffee table")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Contains(t, product.Link, "https://www.google.com/search?tbm=shop&q=")
	assert.Contains(t, product.Link, "Oak+Coffee+Table")
	assert.Equal(t, "Price not available", product.Price)
}

func TestSearchOrganicFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"organic": [
				{"title": "Rattan Armchair Review", "link": "https://blog.example.com/rattan", "displayed_link": "blog.example.com", "snippet": "A fine chair."}
			]
		}`))
	}))
	defer srv.Close()

	product, err := NewClient(srv.URL, "test-key").Search(context.Background(), "rattan armchair")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "Rattan Armchair Review", product.Title)
	assert.Equal(t, "Visit site for price", product.Price)
	assert.Equal(t, "blog.example.com", product.Source)
}

func TestSearchNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	product, err := NewClient(srv.URL, "test-key").Search(context.Background(), "nonexistent item")
	require.NoError(t, err)
	assert.Nil(t, product)
}

func TestSearchByImageURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "google_lens", r.FormValue("engine"))
		assert.Equal(t, "https://cdn.example.com/sofa.png", r.FormValue("url"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"shopping_results": [{"title": "Lookalike Sofa", "product_link": "https://shop.example.com/lookalike", "extracted_price": 329.99}]}`))
	}))
	defer srv.Close()

	product, err := NewClient(srv.URL, "test-key").SearchByImageURL(context.Background(), "https://cdn.example.com/sofa.png")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "https://shop.example.com/lookalike", product.Link)
	assert.Equal(t, "329.99", product.Price)
}
