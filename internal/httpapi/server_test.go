package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/nikolayk812/storefront/internal/apimodel"
	"github.com/nikolayk812/storefront/internal/catalog"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/httpapi"
	"github.com/nikolayk812/storefront/internal/repository/memory"
	"github.com/nikolayk812/storefront/internal/service"
	"github.com/nikolayk812/storefront/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

type stubCatalog struct{}

func (stubCatalog) Products(_ context.Context, limit int) ([]domain.Product, error) {
	products := []domain.Product{
		{ID: 7, Title: "Mug", Price: decimal.RequireFromString("9.99"), Category: "kitchen"},
		{ID: 8, Title: "Cup", Price: decimal.RequireFromString("3"), Category: "kitchen"},
	}
	if limit > 0 && limit < len(products) {
		products = products[:limit]
	}
	return products, nil
}

func (stubCatalog) ProductsByCategory(_ context.Context, category string) ([]domain.Product, error) {
	if category == "down" {
		return nil, errors.Join(catalog.ErrUnavailable, errors.New("timeout"))
	}
	return []domain.Product{{ID: 1, Title: "Shirt", Category: category}}, nil
}

func (stubCatalog) Categories(context.Context) ([]string, error) {
	return []string{"kitchen", "men's clothing"}, nil
}

func (stubCatalog) Product(_ context.Context, id int64) (domain.Product, error) {
	if id != 7 {
		return domain.Product{}, catalog.ErrProductNotFound
	}
	return domain.Product{ID: 7, Title: "Mug", Price: decimal.RequireFromString("9.99")}, nil
}

type testEnv struct {
	srv    *httptest.Server
	client *http.Client
	store  *memory.Store
}

func newTestEnv(t *testing.T, opts ...httpapi.Option) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()

	svc, err := service.NewCart(store, currency.USD, logger)
	require.NoError(t, err)

	provider, err := session.NewProvider(store, session.CookieConfig{}, logger)
	require.NoError(t, err)

	api, err := httpapi.NewServer(svc, stubCatalog{}, provider, append(opts, httpapi.WithLogger(logger))...)
	require.NoError(t, err)

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testEnv{
		srv:    srv,
		client: &http.Client{Jar: jar},
		store:  store,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.srv.URL+path, reader)
	require.NoError(t, err)

	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func TestCartFlow(t *testing.T) {
	env := newTestEnv(t)

	var cart apimodel.CartJSON
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/cart", nil, &cart))
	assert.Empty(t, cart.Items)

	add := apimodel.AddItemRequest{ProductID: 7, Title: "Mug", Price: decimal.RequireFromString("9.99"), Image: "/mug.png", Quantity: 1}

	var item apimodel.CartItemJSON
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/cart/items", add, &item))
	assert.EqualValues(t, 7, item.ProductID)
	assert.EqualValues(t, 1, item.Quantity)
	assert.Equal(t, "USD", item.Currency)

	add.Quantity = 2
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/cart/items", add, &item))
	assert.EqualValues(t, 3, item.Quantity)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/cart", nil, &cart))
	require.Len(t, cart.Items, 1)
	assert.EqualValues(t, 3, cart.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("29.97").Equal(cart.Total))

	var updated apimodel.UpdatedJSON
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, "/api/cart/items/7", apimodel.UpdateItemRequest{Quantity: 5}, &updated))
	assert.EqualValues(t, 1, updated.Updated)

	var removed apimodel.RemovedJSON
	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/cart/items/42", nil, &removed))
	require.NotNil(t, removed.Removed)
	assert.Zero(t, *removed.Removed)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/cart", nil, &removed))
	require.NotNil(t, removed.Removed)
	assert.EqualValues(t, 1, *removed.Removed)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/cart", nil, &cart))
	assert.Empty(t, cart.Items)
}

func TestUpdateToZeroRemovesLine(t *testing.T) {
	env := newTestEnv(t)

	add := apimodel.AddItemRequest{ProductID: 7, Title: "Mug", Price: decimal.RequireFromString("9.99")}
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/cart/items", add, nil))

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPatch, "/api/cart/items/7", apimodel.UpdateItemRequest{Quantity: 0}, nil))

	var cart apimodel.CartJSON
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/cart", nil, &cart))
	assert.Empty(t, cart.Items)
}

func TestClearWithoutCartReturnsNull(t *testing.T) {
	env := newTestEnv(t)

	var removed apimodel.RemovedJSON
	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/cart", nil, &removed))
	assert.Nil(t, removed.Removed)
}

func TestCartErrors(t *testing.T) {
	env := newTestEnv(t)

	var apiErr apimodel.ErrorJSON
	status := env.do(t, http.MethodPatch, "/api/cart/items/7", apimodel.UpdateItemRequest{Quantity: 2}, &apiErr)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "CART_NOT_FOUND", apiErr.Error.Code)

	status = env.do(t, http.MethodDelete, "/api/cart/items/7", nil, &apiErr)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "CART_NOT_FOUND", apiErr.Error.Code)

	status = env.do(t, http.MethodPatch, "/api/cart/items/seven", apimodel.UpdateItemRequest{Quantity: 2}, &apiErr)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "productId must be an integer", apiErr.Error.Message)

	status = env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": 7, "bogus": true}, &apiErr)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "malformed request body", apiErr.Error.Message)

	status = env.do(t, http.MethodPost, "/api/cart/items", apimodel.AddItemRequest{ProductID: 7}, &apiErr)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "title is required", apiErr.Error.Message)
}

func TestSessionCookieScopesCart(t *testing.T) {
	env := newTestEnv(t)

	add := apimodel.AddItemRequest{ProductID: 7, Title: "Mug", Price: decimal.RequireFromString("9.99")}
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/cart/items", add, nil))

	// a second browser gets its own cart
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	other := &testEnv{srv: env.srv, client: &http.Client{Jar: jar}}

	var cart apimodel.CartJSON
	require.Equal(t, http.StatusOK, other.do(t, http.MethodGet, "/api/cart", nil, &cart))
	assert.Empty(t, cart.Items)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/cart", nil, &cart))
	assert.Len(t, cart.Items, 1)
}

func TestProducts(t *testing.T) {
	env := newTestEnv(t)

	var products []domain.Product
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/products?limit=1", nil, &products))
	assert.Len(t, products, 1)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/products?category=kitchen", nil, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Shirt", products[0].Title)

	var categories []string
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/products/categories", nil, &categories))
	assert.Equal(t, []string{"kitchen", "men's clothing"}, categories)

	var product domain.Product
	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/products/7", nil, &product))
	assert.Equal(t, "Mug", product.Title)

	var apiErr apimodel.ErrorJSON
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/products/99", nil, &apiErr))
	assert.Equal(t, "NOT_FOUND", apiErr.Error.Code)

	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/api/products?category=down", nil, &apiErr))
	assert.Equal(t, "UNAVAILABLE", apiErr.Error.Code)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/products?limit=-1", nil, &apiErr))
}

func TestHealthAndReadiness(t *testing.T) {
	env := newTestEnv(t, httpapi.WithReadiness(func(context.Context) error {
		return errors.New("db down")
	}))

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", nil, nil))
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/readyz", nil, nil))
}
