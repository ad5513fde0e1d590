package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/port"
)

type sessionRepository struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewSession(pool *pgxpool.Pool) (port.SessionRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &sessionRepository{
		q:    db.New(pool),
		pool: pool,
	}, nil
}

// CreateSession records the token. Recording an already known token is a no-op.
func (r *sessionRepository) CreateSession(ctx context.Context, session domain.Session) error {
	if session.Token == "" {
		return fmt.Errorf("token is empty")
	}

	err := r.q.CreateSession(ctx, db.CreateSessionParams{
		Token:     session.Token,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("q.CreateSession: %w", err)
	}

	return nil
}

func (r *sessionRepository) GetSession(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, fmt.Errorf("token is empty")
	}

	row, err := r.q.GetSession(ctx, token)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("q.GetSession: %w", err)
	}

	return domain.Session{
		Token:     row.Token,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (int64, error) {
		if _, err := q.DeleteExpiredCarts(ctx, now); err != nil {
			return 0, fmt.Errorf("q.DeleteExpiredCarts: %w", err)
		}

		deleted, err := q.DeleteExpiredSessions(ctx, now)
		if err != nil {
			return 0, fmt.Errorf("q.DeleteExpiredSessions: %w", err)
		}

		return deleted, nil
	})
}
