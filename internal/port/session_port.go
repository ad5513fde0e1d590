package port

import (
	"context"
	"time"

	"github.com/nikolayk812/storefront/internal/domain"
)

type SessionRepository interface {
	CreateSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context, token string) (domain.Session, error)
	// DeleteExpired removes sessions expired at the given time together with their carts.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
