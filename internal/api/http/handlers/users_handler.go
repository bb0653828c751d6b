package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/product-service/internal/api/dto"
	"github.com/spec-kit/product-service/internal/auth"
	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/service"
	apperrors "github.com/spec-kit/product-service/pkg/errorutil"
)

// UsersHandler exposes account and token endpoints.
type UsersHandler struct {
	accounts *service.AccountService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accountService *service.AccountService) *UsersHandler {
	return &UsersHandler{accounts: accountService}
}

// Register handles POST /users.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", "body must be a JSON object")
	}

	account, err := h.accounts.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Password: req.PasswordValue(),
		Name:     req.Name,
		Surname:  req.Surname,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.CreatedResponse{ID: account.ID})
}

// Login handles POST /users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", "body must be a JSON object")
	}

	pair, err := h.accounts.Login(c.UserContext(), req.Email, req.PasswordValue())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTokenPairResponse(pair))
}

// RefreshTokens handles POST /users/refreshTokens.
func (h *UsersHandler) RefreshTokens(c *fiber.Ctx) error {
	var req dto.RefreshTokensRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", "body must be a JSON object")
	}

	pair, err := h.accounts.Refresh(c.UserContext(), req.Token())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTokenPairResponse(pair))
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	accounts, err := h.accounts.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, dto.NewUserResponse(&accounts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	account, err := h.accounts.Get(c.UserContext(), identity.AccountID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(account)})
}

// UpdateMe handles PUT /users/me.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", "body must be a JSON object")
	}

	account, err := h.accounts.UpdateSelf(c.UserContext(), identity.AccountID, profileUpdate(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(account)})
}

// DeleteMe handles DELETE /users/me.
func (h *UsersHandler) DeleteMe(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	if err := h.accounts.Delete(c.UserContext(), identity.AccountID, identity.AccountID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Get handles GET /users/:userId.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	account, err := h.accounts.Get(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(account)})
}

// Update handles PUT /users/:userId.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	var req dto.AdminUpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", "body must be a JSON object")
	}

	account, err := h.accounts.UpdateByAdmin(c.UserContext(), identity.AccountID, c.Params("userId"), service.AdminUpdate{
		ProfileUpdate: profileUpdate(req.UpdateProfileRequest),
		Role:          req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(account)})
}

// Delete handles DELETE /users/:userId.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	if err := h.accounts.Delete(c.UserContext(), identity.AccountID, c.Params("userId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func profileUpdate(req dto.UpdateProfileRequest) service.ProfileUpdate {
	return service.ProfileUpdate{
		Email:    req.Email,
		Password: req.PasswordValue(),
		Name:     req.Name,
		Surname:  req.Surname,
	}
}

func requireIdentity(c *fiber.Ctx) (*domain.Identity, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return identity, nil
}
