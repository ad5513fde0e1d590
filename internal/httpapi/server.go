// Package httpapi exposes the cart and catalog over JSON/HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nikolayk812/storefront/internal/apimodel"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// CartService is the cart API the handlers call. Implemented by service.Cart.
type CartService interface {
	GetCart(ctx context.Context, sessionID string) ([]domain.CartItem, error)
	AddToCart(ctx context.Context, sessionID string, item domain.NewCartItem) (domain.CartItem, error)
	UpdateCartItem(ctx context.Context, sessionID string, productID int64, quantity int32) (int64, error)
	RemoveFromCart(ctx context.Context, sessionID string, productID int64) (int64, error)
	ClearCart(ctx context.Context, sessionID string) (int64, bool, error)
}

// SessionMiddleware resolves the session token into the request context.
type SessionMiddleware interface {
	Middleware(next http.Handler) http.Handler
}

type Server struct {
	cart     CartService
	catalog  port.ProductCatalog
	sessions SessionMiddleware
	ready    func(ctx context.Context) error
	logger   *slog.Logger
}

type Option func(*Server)

// WithReadiness sets the check behind /readyz, typically a database ping.
func WithReadiness(check func(ctx context.Context) error) Option {
	return func(s *Server) {
		s.ready = check
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewServer(cart CartService, catalog port.ProductCatalog, sessions SessionMiddleware, opts ...Option) (*Server, error) {
	if cart == nil {
		return nil, fmt.Errorf("cart service is nil")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session middleware is nil")
	}

	s := &Server{
		cart:     cart,
		catalog:  catalog,
		sessions: sessions,
		ready:    func(context.Context) error { return nil },
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Server) Handler() http.Handler {
	cartMux := http.NewServeMux()
	cartMux.HandleFunc("GET /api/cart", s.handleGetCart)
	cartMux.HandleFunc("DELETE /api/cart", s.handleClearCart)
	cartMux.HandleFunc("POST /api/cart/items", s.handleAddItem)
	cartMux.HandleFunc("PATCH /api/cart/items/{productId}", s.handleUpdateItem)
	cartMux.HandleFunc("DELETE /api/cart/items/{productId}", s.handleRemoveItem)

	mux := http.NewServeMux()
	mux.Handle("/api/cart", s.sessions.Middleware(cartMux))
	mux.Handle("/api/cart/", s.sessions.Middleware(cartMux))

	mux.HandleFunc("GET /api/products", s.handleListProducts)
	mux.HandleFunc("GET /api/products/categories", s.handleCategories)
	mux.HandleFunc("GET /api/products/{id}", s.handleGetProduct)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("GET /readyz", s.handleReady)

	return otelhttp.NewHandler(mux, "storefront")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.ready(r.Context()); err != nil {
		s.logger.WarnContext(r.Context(), "readiness check failed", slog.Any("err", err))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WarnContext(r.Context(), "response encode failed", slog.Any("err", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := httpStatusFromError(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err))
	}

	s.writeJSON(w, r, status, apimodel.ErrorJSON{Error: apimodel.ErrorBody{Code: code, Message: message}})
}
