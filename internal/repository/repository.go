package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/product-service/internal/domain"
)

var (
	// ErrNotFound is returned when an identifier or email does not resolve.
	// Malformed identifiers resolve to ErrNotFound as well.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an email is already taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// AccountRepository defines persistence access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
}

// ProductRepository defines persistence access for products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}
