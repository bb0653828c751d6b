package auth

import (
	"context"
	"errors"

	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/repository"
)

// AccountsByID is the lookup the rotator needs.
type AccountsByID interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
}

// Rotator exchanges a valid refresh token for a brand-new token pair.
//
// The old refresh token is superseded, not revoked: it stays usable until its
// own expiry because no token state is kept server side.
type Rotator struct {
	tokens   *TokenManager
	accounts AccountsByID
}

// NewRotator builds a rotator.
func NewRotator(tokens *TokenManager, accounts AccountsByID) *Rotator {
	return &Rotator{tokens: tokens, accounts: accounts}
}

// Rotate verifies the refresh token, reloads the account so role changes and
// deletions take effect, and issues a new pair. Every rejection, including a
// deleted account, is reported as ErrInvalidToken or ErrTokenExpired.
func (r *Rotator) Rotate(ctx context.Context, refreshToken string) (domain.TokenPair, *domain.Account, error) {
	subject, err := r.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return domain.TokenPair{}, nil, err
	}

	account, err := r.accounts.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.TokenPair{}, nil, ErrInvalidToken
		}
		return domain.TokenPair{}, nil, err
	}

	pair, err := r.tokens.Issue(account)
	if err != nil {
		return domain.TokenPair{}, nil, err
	}
	sanitized := account.Sanitized()
	return pair, &sanitized, nil
}
