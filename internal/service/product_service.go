package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/repository"
	apperrors "github.com/spec-kit/product-service/pkg/errorutil"
)

// ProductService manages the product catalogue.
type ProductService struct {
	products repository.ProductRepository
}

// ProductInput is the full set of writable product fields.
type ProductInput struct {
	Name        string
	Price       *float64
	Description string
}

// NewProductService builds the service.
func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// Create validates and stores a new product.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	product, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.MapError(err)
	}
	return product, nil
}

// Update replaces the writable fields of an existing product.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	product, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	product.ID = id
	if err := s.products.Update(ctx, product); err != nil {
		return nil, mapProductError(err, id)
	}
	return product, nil
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, mapProductError(err, id)
	}
	return product, nil
}

// List returns the whole catalogue.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return products, nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return mapProductError(err, id)
	}
	return nil
}

func (in ProductInput) toProduct() (*domain.Product, error) {
	var violations []string
	name := strings.TrimSpace(in.Name)
	description := strings.TrimSpace(in.Description)
	if name == "" {
		violations = append(violations, "name is required")
	}
	switch {
	case in.Price == nil:
		violations = append(violations, "price is required")
	case math.IsNaN(*in.Price) || math.IsInf(*in.Price, 0) || *in.Price < 0:
		violations = append(violations, "price must be a non-negative number")
	}
	if description == "" {
		violations = append(violations, "description is required")
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError("invalid product", violations...)
	}
	return &domain.Product{Name: name, Price: *in.Price, Description: description}, nil
}

func mapProductError(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("product", map[string]any{"product_id": id})
	}
	return apperrors.MapError(err)
}
