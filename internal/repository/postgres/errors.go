package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/product-service/internal/repository"
)

// mapError translates driver errors into repository sentinels. A malformed
// uuid is reported by Postgres as invalid_text_representation and is treated
// like a missing row.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return repository.ErrDuplicateEmail
		case pgerrcode.InvalidTextRepresentation:
			return repository.ErrNotFound
		}
	}
	return err
}
