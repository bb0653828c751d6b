// Package memory keeps records in process memory. It backs the "memory" store
// driver used for local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/repository"
)

type accountRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.Account
	byEmail map[string]string
}

// NewAccountRepository returns an empty in-memory account store.
func NewAccountRepository() repository.AccountRepository {
	return &accountRepository{
		byID:    make(map[string]domain.Account),
		byEmail: make(map[string]string),
	}
}

func (r *accountRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[account.Email]; taken {
		return repository.ErrDuplicateEmail
	}

	now := time.Now().UTC()
	account.ID = uuid.NewString()
	account.CreatedAt = now
	account.UpdatedAt = now

	r.byID[account.ID] = *account
	r.byEmail[account.Email] = account.ID
	return nil
}

func (r *accountRepository) Update(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[account.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if owner, taken := r.byEmail[account.Email]; taken && owner != account.ID {
		return repository.ErrDuplicateEmail
	}

	account.CreatedAt = current.CreatedAt
	account.UpdatedAt = time.Now().UTC()

	delete(r.byEmail, current.Email)
	r.byEmail[account.Email] = account.ID
	r.byID[account.ID] = *account
	return nil
}

func (r *accountRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.byEmail, current.Email)
	delete(r.byID, id)
	return nil
}

func (r *accountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	account := r.byID[id]
	return &account, nil
}

func (r *accountRepository) List(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]domain.Account, 0, len(r.byID))
	for _, account := range r.byID {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}
