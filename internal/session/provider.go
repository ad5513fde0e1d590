// Package session issues the anonymous session token that scopes every cart.
//
// The token lives in an HTTP-only cookie. Provider.Middleware resolves it once per request and
// carries it in the request context; handlers pass it on explicitly to the cart service.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront/internal/apimodel"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

const (
	DefaultCookieName = "session_id"
	DefaultMaxAge     = 30 * 24 * time.Hour
)

type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

type Provider struct {
	repo   port.SessionRepository
	cfg    CookieConfig
	logger *slog.Logger
	now    func() time.Time
}

func NewProvider(repo port.SessionRepository, cfg CookieConfig, logger *slog.Logger) (*Provider, error) {
	if repo == nil {
		return nil, fmt.Errorf("repo is nil")
	}
	if cfg.Name == "" {
		cfg.Name = DefaultCookieName
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Provider{
		repo:   repo,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}, nil
}

// SessionID returns the token from the request cookie when it names a live session. Otherwise
// it issues a new token, records it and sets the cookie on w. Repository errors are returned unchanged.
func (p *Provider) SessionID(w http.ResponseWriter, r *http.Request) (string, error) {
	if id, ok := FromContext(r.Context()); ok {
		return id, nil
	}

	if c, err := r.Cookie(p.cfg.Name); err == nil && c.Value != "" {
		known, err := p.repo.GetSession(r.Context(), c.Value)
		switch {
		case err == nil && !known.Expired(p.now().UTC()):
			return c.Value, nil
		case err == nil, errors.Is(err, domain.ErrSessionNotFound):
			p.logger.InfoContext(r.Context(), "session cookie not recognized, issuing a new one")
		default:
			return "", err
		}
	}

	now := p.now().UTC()
	s := domain.Session{
		Token:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(p.cfg.MaxAge),
	}

	if err := p.repo.CreateSession(r.Context(), s); err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     p.cfg.Name,
		Value:    s.Token,
		Path:     "/",
		MaxAge:   int(p.cfg.MaxAge.Seconds()),
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   p.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})

	p.logger.DebugContext(r.Context(), "session issued", slog.String("session_id", s.Token))

	return s.Token, nil
}

// Middleware resolves the session before next runs. A session failure ends the request with 500.
func (p *Provider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := p.SessionID(w, r)
		if err != nil {
			p.logger.ErrorContext(r.Context(), "session resolve failed", slog.Any("err", err))
			writeSessionError(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

func writeSessionError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)

	_ = json.NewEncoder(w).Encode(apimodel.ErrorJSON{Error: apimodel.ErrorBody{
		Code:    apimodel.CodeInternal,
		Message: "could not resolve the session",
	}})
}

type ctxKey struct{}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
