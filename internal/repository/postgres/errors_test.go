package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/product-service/internal/repository"
)

func TestMapError(t *testing.T) {
	other := errors.New("conn closed")

	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, repository.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), repository.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, repository.ErrDuplicateEmail},
		{"malformed uuid", &pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation}, repository.ErrNotFound},
		{"other pg error", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, nil},
		{"passthrough", other, other},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(tc.in)
			switch {
			case tc.in == nil:
				require.NoError(t, got)
			case tc.want == nil:
				require.Same(t, tc.in, got)
			default:
				require.ErrorIs(t, got, tc.want)
			}
		})
	}
}
