package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Ready(t *testing.T) {
	ok := DependencyCheck{Name: "store", Ping: func(context.Context) error { return nil }}
	down := DependencyCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }}

	cases := []struct {
		name   string
		checks []DependencyCheck
		status int
	}{
		{"no dependencies", nil, fiber.StatusOK},
		{"all healthy", []DependencyCheck{ok}, fiber.StatusOK},
		{"one down", []DependencyCheck{ok, down}, fiber.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			h := NewHealthHandler("svc", "dev", tc.checks...)
			app.Get("/ready", h.Ready)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ready", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tc.status != fiber.StatusOK {
				details := body["error"].(map[string]any)["details"].(map[string]any)
				require.Equal(t, "ok", details["store"])
				require.Equal(t, "connection refused", details["redis"])
			}
		})
	}
}
