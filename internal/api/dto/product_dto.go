package dto

import (
	"time"

	"github.com/spec-kit/product-service/internal/domain"
)

// ProductRequest payload for creating and replacing products.
type ProductRequest struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Description string   `json:"description"`
}

// ProductResponse public view of a product.
type ProductResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewProductResponse maps a product to its public view.
func NewProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
