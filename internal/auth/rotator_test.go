package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/product-service/internal/domain"
)

func TestRotator_Rotate(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	tm := newTestTokenManager(t, clock)
	accounts := newTestAccounts()
	acc := seedAccount(t, accounts, "a@x.com", "s1", domain.RoleUser)
	rotator := NewRotator(tm, accounts)

	original, err := tm.Issue(acc)
	require.NoError(t, err)

	clock.Advance(time.Minute)
	rotated, got, err := rotator.Rotate(ctx, original.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, acc.ID, got.ID)
	require.Empty(t, got.PasswordHash)
	require.NotEqual(t, original.AccessToken, rotated.AccessToken)
	require.NotEqual(t, original.RefreshToken, rotated.RefreshToken)

	identity, err := tm.ParseAccess(rotated.AccessToken)
	require.NoError(t, err)
	require.Equal(t, acc.ID, identity.AccountID)

	_, err = tm.ParseAccess(original.AccessToken)
	require.NoError(t, err, "rotation does not invalidate earlier access tokens")
}

func TestRotator_ReflectsRoleChange(t *testing.T) {
	ctx := context.Background()
	tm := newTestTokenManager(t, nil)
	accounts := newTestAccounts()
	acc := seedAccount(t, accounts, "a@x.com", "s1", domain.RoleAdmin)
	rotator := NewRotator(tm, accounts)

	pair, err := tm.Issue(acc)
	require.NoError(t, err)

	acc.Role = domain.RoleUser
	require.NoError(t, accounts.Update(ctx, acc))

	rotated, _, err := rotator.Rotate(ctx, pair.RefreshToken)
	require.NoError(t, err)
	identity, err := tm.ParseAccess(rotated.AccessToken)
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, identity.Role)
}

func TestRotator_Rejections(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	tm := newTestTokenManager(t, clock)
	accounts := newTestAccounts()
	acc := seedAccount(t, accounts, "a@x.com", "s1", domain.RoleUser)
	rotator := NewRotator(tm, accounts)

	pair, err := tm.Issue(acc)
	require.NoError(t, err)

	_, _, err = rotator.Rotate(ctx, "garbage")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = rotator.Rotate(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, accounts.Delete(ctx, acc.ID))
	_, _, err = rotator.Rotate(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken, "a deleted account looks like a bad token")

	acc2 := seedAccount(t, accounts, "b@x.com", "s2", domain.RoleUser)
	pair2, err := tm.Issue(acc2)
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)
	_, _, err = rotator.Rotate(ctx, pair2.RefreshToken)
	require.ErrorIs(t, err, ErrTokenExpired)
}
