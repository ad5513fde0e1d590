// Package cartclient mirrors a browser's cart in memory and keeps it in step with the cart HTTP API.
package cartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nikolayk812/storefront/internal/apimodel"
	"github.com/nikolayk812/storefront/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// CartAPI is the remote cart of the current browser.
type CartAPI interface {
	GetCart(ctx context.Context) ([]domain.CartItem, error)
	AddToCart(ctx context.Context, item domain.NewCartItem) (domain.CartItem, error)
	UpdateCartItem(ctx context.Context, productID int64, quantity int32) (int64, error)
	RemoveFromCart(ctx context.Context, productID int64) (int64, error)
	// ClearCart reports found=false when the browser had no cart yet.
	ClearCart(ctx context.Context) (removed int64, found bool, err error)
}

// APIError is a non-2xx answer of the cart API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cart api: %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Code {
	case apimodel.CodeCartNotFound:
		return domain.ErrCartNotFound
	case apimodel.CodeInvalidArgument:
		return domain.ErrInvalidArgument
	}
	return nil
}

// Client talks to the cart API. Its cookie jar holds the session cookie, so one Client is one browser.
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
		return nil, fmt.Errorf("cart api base url[%s] is not absolute", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookiejar.New: %w", err)
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout:   timeout,
			Jar:       jar,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

func (c *Client) GetCart(ctx context.Context) ([]domain.CartItem, error) {
	var cart apimodel.CartJSON
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &cart); err != nil {
		return nil, err
	}

	items := make([]domain.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, item.Domain())
	}

	return items, nil
}

func (c *Client) AddToCart(ctx context.Context, item domain.NewCartItem) (domain.CartItem, error) {
	req := apimodel.AddItemRequest{
		ProductID: item.ProductID,
		Title:     item.Title,
		Price:     item.Price.Amount,
		Image:     item.Image,
		Quantity:  item.Quantity,
	}

	var added apimodel.CartItemJSON
	if err := c.do(ctx, http.MethodPost, "/api/cart/items", req, &added); err != nil {
		return domain.CartItem{}, err
	}

	return added.Domain(), nil
}

func (c *Client) UpdateCartItem(ctx context.Context, productID int64, quantity int32) (int64, error) {
	var resp apimodel.UpdatedJSON
	if err := c.do(ctx, http.MethodPatch, itemPath(productID), apimodel.UpdateItemRequest{Quantity: quantity}, &resp); err != nil {
		return 0, err
	}

	return resp.Updated, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, productID int64) (int64, error) {
	var resp apimodel.RemovedJSON
	if err := c.do(ctx, http.MethodDelete, itemPath(productID), nil, &resp); err != nil {
		return 0, err
	}

	if resp.Removed == nil {
		return 0, nil
	}
	return *resp.Removed, nil
}

func (c *Client) ClearCart(ctx context.Context) (int64, bool, error) {
	var resp apimodel.RemovedJSON
	if err := c.do(ctx, http.MethodDelete, "/api/cart", nil, &resp); err != nil {
		return 0, false, err
	}

	if resp.Removed == nil {
		return 0, false, nil
	}
	return *resp.Removed, true, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u := *c.baseURL
	u.Path += path

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpClient.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("json.Decode: %w", err)
	}

	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Code: "UNKNOWN", Message: http.StatusText(resp.StatusCode)}

	var body apimodel.ErrorJSON
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return apiErr
	}
	if body.Error.Code != "" {
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
	}

	return apiErr
}

func itemPath(productID int64) string {
	return "/api/cart/items/" + strconv.FormatInt(productID, 10)
}

var _ CartAPI = (*Client)(nil)
