package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/repository"
)

// ErrInvalidCredentials is the single outcome for an unknown email and a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AccountsByEmail is the lookup the credential verifier needs.
type AccountsByEmail interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// SecretComparer confirms a plaintext secret against a stored hash.
type SecretComparer interface {
	Hash(plain string) (string, error)
	Compare(hashed, plain string) bool
}

// VerifierOption customizes a CredentialVerifier.
type VerifierOption func(*CredentialVerifier)

// WithThrottle limits failed attempts per email. Every caller of Verify, the
// login endpoint and the Basic-Auth gate alike, shares the same counter.
func WithThrottle(throttle LoginThrottle) VerifierOption {
	return func(v *CredentialVerifier) {
		if throttle != nil {
			v.throttle = throttle
		}
	}
}

// WithVerifierLogger sets the logger used for throttle backend failures.
func WithVerifierLogger(logger *zap.Logger) VerifierOption {
	return func(v *CredentialVerifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// CredentialVerifier checks an email/password pair against stored accounts.
type CredentialVerifier struct {
	accounts AccountsByEmail
	secrets  SecretComparer
	throttle LoginThrottle
	logger   *zap.Logger

	decoyOnce sync.Once
	decoyHash string
}

// NewCredentialVerifier builds a verifier. Without WithThrottle attempts are
// not limited.
func NewCredentialVerifier(accounts AccountsByEmail, secrets SecretComparer, opts ...VerifierOption) *CredentialVerifier {
	v := &CredentialVerifier{
		accounts: accounts,
		secrets:  secrets,
		throttle: NoopThrottle(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify returns the matching account with its password hash stripped,
// ErrInvalidCredentials, or ErrTooManyAttempts once the email is locked out.
// Unknown emails still pay for one hash comparison so response timing does
// not reveal which emails exist.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*domain.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if err := v.throttle.Allow(ctx, email); err != nil {
		if errors.Is(err, ErrTooManyAttempts) {
			return nil, err
		}
		// a throttle outage must not lock everybody out
		v.logger.Warn("login throttle unavailable", zap.Error(err))
	}

	account, err := v.match(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			if ferr := v.throttle.Fail(ctx, email); ferr != nil {
				v.logger.Warn("record failed login", zap.Error(ferr))
			}
		}
		return nil, err
	}

	if err := v.throttle.Reset(ctx, email); err != nil {
		v.logger.Warn("reset login throttle", zap.Error(err))
	}
	return account, nil
}

func (v *CredentialVerifier) match(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := v.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			v.secrets.Compare(v.decoy(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !v.secrets.Compare(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	sanitized := account.Sanitized()
	return &sanitized, nil
}

func (v *CredentialVerifier) decoy() string {
	v.decoyOnce.Do(func() {
		v.decoyHash, _ = v.secrets.Hash("decoy-password-for-unknown-accounts")
	})
	return v.decoyHash
}
