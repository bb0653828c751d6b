package auth

import (
	"errors"

	"github.com/spec-kit/product-service/internal/domain"
)

var (
	// ErrForbidden is returned when the caller lacks the required role.
	ErrForbidden = errors.New("insufficient role")
	// ErrNoIdentity means a role check ran without a preceding auth gate.
	// It is a wiring bug and must never be treated as allowed.
	ErrNoIdentity = errors.New("role check without authenticated identity")
)

// Authorize compares the caller's role against the required one.
func Authorize(identity *domain.Identity, required domain.Role) error {
	if identity == nil {
		return ErrNoIdentity
	}
	if identity.Role != required {
		return ErrForbidden
	}
	return nil
}
