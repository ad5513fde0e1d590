package repository_test

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *cartRepositorySuite) TestCreateSession() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()
	now := time.Now().UTC().Truncate(time.Microsecond)

	session := domain.Session{
		Token:     gofakeit.UUID(),
		CreatedAt: now,
		ExpiresAt: now.Add(30 * 24 * time.Hour),
	}

	require.NoError(t, suite.sessionRepo.CreateSession(ctx, session))

	// recording the same token again keeps the original expiry
	again := session
	again.ExpiresAt = now.Add(time.Hour)
	require.NoError(t, suite.sessionRepo.CreateSession(ctx, again))

	got, err := suite.sessionRepo.GetSession(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Token, got.Token)
	assert.True(t, session.ExpiresAt.Equal(got.ExpiresAt))

	_, err = suite.sessionRepo.GetSession(ctx, gofakeit.UUID())
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	err = suite.sessionRepo.CreateSession(ctx, domain.Session{})
	require.EqualError(t, err, "token is empty")
}

func (suite *cartRepositorySuite) TestDeleteExpired() {
	defer suite.deleteAll()

	t := suite.T()
	ctx := t.Context()
	now := time.Now().UTC()

	expired := domain.Session{Token: gofakeit.UUID(), CreatedAt: now.Add(-31 * 24 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	active := domain.Session{Token: gofakeit.UUID(), CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	for _, s := range []domain.Session{expired, active} {
		require.NoError(t, suite.sessionRepo.CreateSession(ctx, s))
		_, err := suite.repo.AddItem(ctx, s.Token, randomCartItem())
		require.NoError(t, err)
	}

	deleted, err := suite.sessionRepo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = suite.sessionRepo.GetSession(ctx, expired.Token)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = suite.repo.FindCart(ctx, expired.Token)
	require.ErrorIs(t, err, domain.ErrCartNotFound)

	cart, err := suite.repo.FindCart(ctx, active.Token)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}
