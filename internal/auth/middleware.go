package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/observability"
	apperrors "github.com/spec-kit/product-service/pkg/errorutil"
)

const identityKey = "auth_identity"

// Gates builds the fiber handlers that authenticate and authorize requests.
// Routes compose them explicitly, e.g. Bearer() then RequireRole(Admin).
type Gates struct {
	tokens  *TokenManager
	basic   *BasicVerifier
	metrics *observability.Metrics
}

// NewGates constructs the gates.
func NewGates(tokens *TokenManager, basic *BasicVerifier, metrics *observability.Metrics) *Gates {
	return &Gates{tokens: tokens, basic: basic, metrics: metrics}
}

// Bearer verifies the access token and attaches the identity.
func (g *Gates) Bearer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			g.metrics.RecordAuth("bearer", "missing")
			return apperrors.NewUnauthorized("missing authorization header")
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			g.metrics.RecordAuth("bearer", "malformed")
			return apperrors.NewUnauthorized("invalid authorization header")
		}

		identity, err := g.tokens.ParseAccess(strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				g.metrics.RecordAuth("bearer", "expired")
				return apperrors.NewUnauthorized("token expired")
			}
			g.metrics.RecordAuth("bearer", "rejected")
			return apperrors.NewUnauthorized("invalid token")
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// Basic verifies Basic credentials and attaches the identity the same way
// Bearer does, so handlers do not care which gate ran.
func (g *Gates) Basic() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			g.metrics.RecordAuth("basic", "missing")
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="restricted"`)
			return apperrors.NewUnauthorized("missing authorization header")
		}

		identity, err := g.basic.Verify(c.UserContext(), authHeader)
		if err != nil {
			if errors.Is(err, ErrTooManyAttempts) {
				g.metrics.RecordAuth("basic", "throttled")
				return apperrors.NewTooManyRequests("too many failed login attempts")
			}
			if errors.Is(err, ErrInvalidCredentials) {
				g.metrics.RecordAuth("basic", "rejected")
				c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="restricted"`)
				return apperrors.NewUnauthorized("credentials are not ok")
			}
			return apperrors.MapError(err)
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// RequireRole lets the request through only if the attached identity holds
// the role. It must run after Bearer or Basic.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		switch err := Authorize(identity, role); {
		case err == nil:
			return c.Next()
		case errors.Is(err, ErrForbidden):
			return apperrors.NewForbidden("insufficient role")
		default:
			return apperrors.NewInternalError(err)
		}
	}
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*domain.Identity)
	return identity, ok && identity != nil
}
