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

type productRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository returns an empty in-memory product store.
func NewProductRepository() repository.ProductRepository {
	return &productRepository{items: make(map[string]domain.Product)}
}

func (r *productRepository) Create(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.items[product.ID] = *product
	return nil
}

func (r *productRepository) Update(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[product.ID]
	if !ok {
		return repository.ErrNotFound
	}
	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	r.items[product.ID] = *product
	return nil
}

func (r *productRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *productRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &product, nil
}

func (r *productRepository) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	return products, nil
}
