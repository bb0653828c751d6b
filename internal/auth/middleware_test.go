package auth

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/product-service/internal/domain"
	apperrors "github.com/spec-kit/product-service/pkg/errorutil"
)

func newGateApp(t *testing.T) (*fiber.App, *TokenManager, *domain.Account, *domain.Account) {
	t.Helper()
	accounts := newTestAccounts()
	user := seedAccount(t, accounts, "user@x.com", "s1", domain.RoleUser)
	admin := seedAccount(t, accounts, "admin@x.com", "root", domain.RoleAdmin)

	tm := newTestTokenManager(t, nil)
	gates := NewGates(tm, NewBasicVerifier(NewCredentialVerifier(accounts, newTestHasher())), nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
		},
	})
	whoami := func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(identity.AccountID)
	}
	app.Get("/me", gates.Bearer(), whoami)
	app.Get("/admin", gates.Bearer(), RequireRole(domain.RoleAdmin), whoami)
	app.Post("/basic", gates.Basic(), whoami)
	app.Get("/misconfigured", RequireRole(domain.RoleAdmin), whoami)

	return app, tm, user, admin
}

func TestGates_Bearer(t *testing.T) {
	app, tm, user, admin := newGateApp(t)
	userPair, err := tm.Issue(user)
	require.NoError(t, err)
	adminPair, err := tm.Issue(admin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"no header", "/me", "", fiber.StatusUnauthorized},
		{"wrong scheme", "/me", "Token " + userPair.AccessToken, fiber.StatusUnauthorized},
		{"garbage token", "/me", "Bearer garbage", fiber.StatusUnauthorized},
		{"refresh token as bearer", "/me", "Bearer " + userPair.RefreshToken, fiber.StatusUnauthorized},
		{"user ok", "/me", "Bearer " + userPair.AccessToken, fiber.StatusOK},
		{"lowercase scheme", "/me", "bearer " + userPair.AccessToken, fiber.StatusOK},
		{"user on admin route", "/admin", "Bearer " + userPair.AccessToken, fiber.StatusForbidden},
		{"admin on admin route", "/admin", "Bearer " + adminPair.AccessToken, fiber.StatusOK},
		{"admin route without token", "/admin", "", fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestGates_Basic(t *testing.T) {
	app, _, _, admin := newGateApp(t)

	req := httptest.NewRequest(fiber.MethodPost, "/basic", nil)
	req.Header.Set(fiber.HeaderAuthorization, basicHeader("admin@x.com", "root"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, admin.ID, string(body))

	for _, header := range []string{"", basicHeader("admin@x.com", "bad"), "Basic ???"} {
		req := httptest.NewRequest(fiber.MethodPost, "/basic", nil)
		if header != "" {
			req.Header.Set(fiber.HeaderAuthorization, header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, resp.Header.Get(fiber.HeaderWWWAuthenticate), "Basic")
	}
}

func TestRequireRole_WithoutGateFailsClosed(t *testing.T) {
	app, _, _, _ := newGateApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/misconfigured", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestGates_BasicSharesLoginThrottle(t *testing.T) {
	accounts := newTestAccounts()
	admin := seedAccount(t, accounts, "admin@x.com", "root", domain.RoleAdmin)
	throttle := newCountingThrottle(3)
	verifier := NewCredentialVerifier(accounts, newTestHasher(), WithThrottle(throttle))
	gates := NewGates(newTestTokenManager(t, nil), NewBasicVerifier(verifier), nil)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Post("/basic", gates.Basic(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	send := func(password string) int {
		req := httptest.NewRequest(fiber.MethodPost, "/basic", nil)
		req.Header.Set(fiber.HeaderAuthorization, basicHeader("admin@x.com", password))
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	for i := 0; i < 3; i++ {
		require.Equal(t, fiber.StatusUnauthorized, send("guess"))
	}
	require.Equal(t, 3, throttle.count(admin.Email))

	for i := 0; i < 5; i++ {
		require.Equal(t, fiber.StatusTooManyRequests, send("guess"))
	}
	require.Equal(t, fiber.StatusTooManyRequests, send("root"), "locked out even with the right password")
	require.Equal(t, 3, throttle.count(admin.Email))

	require.NoError(t, throttle.Reset(context.Background(), admin.Email))
	require.Equal(t, fiber.StatusNoContent, send("root"))
}
