package dto

import (
	"time"

	"github.com/spec-kit/product-service/internal/domain"
)

// UserRegisterRequest payload for new users. "secret" is accepted as an
// alias of "password". Any role sent by the client is ignored.
type UserRegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Secret   string `json:"secret"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
}

// PasswordValue returns the password, falling back to the alias.
func (r UserRegisterRequest) PasswordValue() string {
	if r.Password != "" {
		return r.Password
	}
	return r.Secret
}

// UserLoginRequest payload for login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Secret   string `json:"secret"`
}

// PasswordValue returns the password, falling back to the alias.
func (r UserLoginRequest) PasswordValue() string {
	if r.Password != "" {
		return r.Password
	}
	return r.Secret
}

// RefreshTokensRequest payload for token rotation.
type RefreshTokensRequest struct {
	RefreshToken        string `json:"refreshToken"`
	CurrentRefreshToken string `json:"currentRefreshToken"`
}

// Token returns the refresh token, falling back to the alias.
func (r RefreshTokensRequest) Token() string {
	if r.RefreshToken != "" {
		return r.RefreshToken
	}
	return r.CurrentRefreshToken
}

// UpdateProfileRequest is the owner's partial update. It has no role field.
type UpdateProfileRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Secret   *string `json:"secret"`
	Name     *string `json:"name"`
	Surname  *string `json:"surname"`
}

// PasswordValue returns the password, falling back to the alias.
func (r UpdateProfileRequest) PasswordValue() *string {
	if r.Password != nil {
		return r.Password
	}
	return r.Secret
}

// AdminUpdateUserRequest is an administrative partial update.
type AdminUpdateUserRequest struct {
	UpdateProfileRequest
	Role *domain.Role `json:"role"`
}

// CreatedResponse is returned by creating endpoints.
type CreatedResponse struct {
	ID string `json:"id"`
}

// TokenPairResponse is returned by login and refresh.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Name      string      `json:"name,omitempty"`
	Surname   string      `json:"surname,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// NewUserResponse maps an account to its public view.
func NewUserResponse(a *domain.Account) UserResponse {
	return UserResponse{
		ID:        a.ID,
		Email:     a.Email,
		Role:      a.Role,
		Name:      a.Name,
		Surname:   a.Surname,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// NewTokenPairResponse maps a token pair.
func NewTokenPairResponse(p domain.TokenPair) TokenPairResponse {
	return TokenPairResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}
