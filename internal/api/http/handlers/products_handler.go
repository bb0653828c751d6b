package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/product-service/internal/api/dto"
	"github.com/spec-kit/product-service/internal/service"
	apperrors "github.com/spec-kit/product-service/pkg/errorutil"
)

// ProductsHandler exposes the product catalogue.
type ProductsHandler struct {
	products *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(productService *service.ProductService) *ProductsHandler {
	return &ProductsHandler{products: productService}
}

// List handles GET /products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	products, err := h.products.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, dto.NewProductResponse(&products[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /products/:productId.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	product, err := h.products.Get(c.UserContext(), c.Params("productId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Create handles POST /products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", "body must be a JSON object")
	}
	product, err := h.products.Create(c.UserContext(), productInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.CreatedResponse{ID: product.ID})
}

// Update handles PUT /products/:productId.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", "body must be a JSON object")
	}
	product, err := h.products.Update(c.UserContext(), c.Params("productId"), productInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Delete handles DELETE /products/:productId.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	if err := h.products.Delete(c.UserContext(), c.Params("productId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func productInput(req dto.ProductRequest) service.ProductInput {
	return service.ProductInput{Name: req.Name, Price: req.Price, Description: req.Description}
}
