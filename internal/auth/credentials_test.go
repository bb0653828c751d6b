package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/product-service/internal/domain"
)

func TestCredentialVerifier_Verify(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccounts()
	seeded := seedAccount(t, accounts, "a@x.com", "s1", domain.RoleUser)
	verifier := NewCredentialVerifier(accounts, newTestHasher())

	acc, err := verifier.Verify(ctx, "a@x.com", "s1")
	require.NoError(t, err)
	require.Equal(t, seeded.ID, acc.ID)
	require.Empty(t, acc.PasswordHash, "hash never leaves the verifier")

	acc, err = verifier.Verify(ctx, "  a@x.com ", "s1")
	require.NoError(t, err)
	require.Equal(t, seeded.ID, acc.ID)
}

func TestCredentialVerifier_Opacity(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccounts()
	seedAccount(t, accounts, "a@x.com", "s1", domain.RoleUser)
	verifier := NewCredentialVerifier(accounts, newTestHasher())

	_, unknownErr := verifier.Verify(ctx, "nobody@x.com", "s1")
	_, wrongErr := verifier.Verify(ctx, "a@x.com", "wrong")

	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	require.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestCredentialVerifier_EmptyInput(t *testing.T) {
	ctx := context.Background()
	verifier := NewCredentialVerifier(newTestAccounts(), newTestHasher())

	_, err := verifier.Verify(ctx, "", "s1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = verifier.Verify(ctx, "a@x.com", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCredentialVerifier_CaseSensitiveEmail(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccounts()
	seedAccount(t, accounts, "a@x.com", "s1", domain.RoleUser)
	verifier := NewCredentialVerifier(accounts, newTestHasher())

	_, err := verifier.Verify(ctx, "A@X.COM", "s1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

type failingAccounts struct{ err error }

func (f failingAccounts) GetByEmail(context.Context, string) (*domain.Account, error) {
	return nil, f.err
}

func TestCredentialVerifier_StoreFailure(t *testing.T) {
	storeErr := errors.New("connection reset")
	verifier := NewCredentialVerifier(failingAccounts{err: storeErr}, newTestHasher())

	_, err := verifier.Verify(context.Background(), "a@x.com", "s1")
	require.ErrorIs(t, err, storeErr)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("s1")
	require.NoError(t, err)
	require.NotEqual(t, "s1", hash)
	require.True(t, h.Compare(hash, "s1"))
	require.False(t, h.Compare(hash, "s2"))
	require.False(t, h.Compare("not-a-hash", "s1"))

	require.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	require.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).cost)
}

func TestCredentialVerifier_Throttle(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccounts()
	seedAccount(t, accounts, "a@x.com", "s1", domain.RoleUser)
	throttle := newCountingThrottle(2)
	verifier := NewCredentialVerifier(accounts, newTestHasher(), WithThrottle(throttle))

	_, err := verifier.Verify(ctx, "a@x.com", "bad")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Equal(t, 1, throttle.count("a@x.com"))

	_, err = verifier.Verify(ctx, "a@x.com", "s1")
	require.NoError(t, err)
	require.Zero(t, throttle.count("a@x.com"), "success clears the counter")

	for i := 0; i < 2; i++ {
		_, err = verifier.Verify(ctx, "a@x.com", "bad")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err = verifier.Verify(ctx, "a@x.com", "s1")
	require.ErrorIs(t, err, ErrTooManyAttempts, "correct password is refused while locked out")
	require.Equal(t, 2, throttle.count("a@x.com"))

	for i := 0; i < 2; i++ {
		_, err = verifier.Verify(ctx, "ghost@x.com", "bad")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err = verifier.Verify(ctx, "ghost@x.com", "bad")
	require.ErrorIs(t, err, ErrTooManyAttempts)
}

type brokenThrottle struct{}

func (brokenThrottle) Allow(context.Context, string) error { return errors.New("redis down") }
func (brokenThrottle) Fail(context.Context, string) error  { return errors.New("redis down") }
func (brokenThrottle) Reset(context.Context, string) error { return errors.New("redis down") }

func TestCredentialVerifier_ThrottleOutageDoesNotLockOut(t *testing.T) {
	ctx := context.Background()
	accounts := newTestAccounts()
	seedAccount(t, accounts, "a@x.com", "s1", domain.RoleUser)
	verifier := NewCredentialVerifier(accounts, newTestHasher(), WithThrottle(brokenThrottle{}))

	_, err := verifier.Verify(ctx, "a@x.com", "s1")
	require.NoError(t, err)
	_, err = verifier.Verify(ctx, "a@x.com", "bad")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
