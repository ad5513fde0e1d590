// Package catalog reads products from a fakestore-compatible HTTP API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnavailable     = errors.New("catalog unavailable")
)

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("catalog base url[%s] is not absolute", baseURL)
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

func (c *Client) Products(ctx context.Context, limit int) ([]domain.Product, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var products []domain.Product
	if err := c.get(ctx, "/products", query, &products); err != nil {
		return nil, err
	}

	return products, nil
}

func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/products/category/"+category, nil, &products); err != nil {
		return nil, err
	}

	return products, nil
}

func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := c.get(ctx, "/products/categories", nil, &categories); err != nil {
		return nil, err
	}

	return categories, nil
}

func (c *Client) Product(ctx context.Context, id int64) (domain.Product, error) {
	var product *domain.Product
	if err := c.get(ctx, "/products/"+strconv.FormatInt(id, 10), nil, &product); err != nil {
		return domain.Product{}, err
	}

	// fakestore answers 200 with an empty body for unknown ids
	if product == nil || product.ID == 0 {
		return domain.Product{}, ErrProductNotFound
	}

	return *product, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := *c.baseURL
	u.Path += path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Join(ErrUnavailable, fmt.Errorf("httpClient.Do: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrProductNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return errors.Join(ErrUnavailable, fmt.Errorf("GET %s: status %d", path, resp.StatusCode))
	}

	if resp.ContentLength == 0 {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Join(ErrUnavailable, fmt.Errorf("json.Decode: %w", err))
	}

	return nil
}

var _ port.ProductCatalog = (*Client)(nil)
