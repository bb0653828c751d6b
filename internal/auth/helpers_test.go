package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/repository"
	"github.com/spec-kit/product-service/internal/repository/memory"
)

func newTestHasher() *PasswordHasher {
	return NewPasswordHasher(bcrypt.MinCost)
}

func seedAccount(t *testing.T, repo repository.AccountRepository, email, password string, role domain.Role) *domain.Account {
	t.Helper()
	hash, err := newTestHasher().Hash(password)
	require.NoError(t, err)

	acc := &domain.Account{Email: email, PasswordHash: hash, Role: role}
	require.NoError(t, repo.Create(context.Background(), acc))
	return acc
}

func newTestAccounts() repository.AccountRepository {
	return memory.NewAccountRepository()
}

type countingThrottle struct {
	mu       sync.Mutex
	max      int
	failures map[string]int
}

func newCountingThrottle(max int) *countingThrottle {
	return &countingThrottle{max: max, failures: map[string]int{}}
}

func (t *countingThrottle) Allow(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failures[email] >= t.max {
		return ErrTooManyAttempts
	}
	return nil
}

func (t *countingThrottle) Fail(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[email]++
	return nil
}

func (t *countingThrottle) Reset(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, email)
	return nil
}

func (t *countingThrottle) count(email string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[email]
}
