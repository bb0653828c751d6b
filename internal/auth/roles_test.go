package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/product-service/internal/domain"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name     string
		identity *domain.Identity
		required domain.Role
		want     error
	}{
		{"admin on admin route", &domain.Identity{AccountID: "1", Role: domain.RoleAdmin}, domain.RoleAdmin, nil},
		{"user on admin route", &domain.Identity{AccountID: "2", Role: domain.RoleUser}, domain.RoleAdmin, ErrForbidden},
		{"unknown role on admin route", &domain.Identity{AccountID: "3", Role: "Guest"}, domain.RoleAdmin, ErrForbidden},
		{"user on user route", &domain.Identity{AccountID: "4", Role: domain.RoleUser}, domain.RoleUser, nil},
		{"no identity", nil, domain.RoleAdmin, ErrNoIdentity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.identity, tc.required)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRoleValid(t *testing.T) {
	require.True(t, domain.RoleUser.Valid())
	require.True(t, domain.RoleAdmin.Valid())
	require.False(t, domain.Role("admin").Valid())
	require.False(t, domain.Role("").Valid())
}
