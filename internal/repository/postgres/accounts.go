package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/repository"
)

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) repository.AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id, email, password_hash, role, name, surname, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (email, password_hash, role, name, surname)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.Name,
		account.Surname,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	return mapError(err)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts SET email=$1, password_hash=$2, role=$3, name=$4, surname=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.Name,
		account.Surname,
		account.ID,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	return mapError(err)
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email=$1`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *accountRepository) List(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *account)
	}
	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Name,
		&account.Surname,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	return &account, nil
}
