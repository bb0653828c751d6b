package auth

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/spec-kit/product-service/internal/domain"
)

// ParseBasicHeader decodes an "Authorization: Basic ..." value into its email
// and password. The password may itself contain colons.
func ParseBasicHeader(header string) (string, string, error) {
	scheme, encoded, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Basic") {
		return "", "", ErrInvalidCredentials
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	email, password, ok := strings.Cut(string(raw), ":")
	if !ok || email == "" || password == "" {
		return "", "", ErrInvalidCredentials
	}
	return email, password, nil
}

// BasicVerifier authenticates requests carrying Basic credentials.
type BasicVerifier struct {
	credentials *CredentialVerifier
}

// NewBasicVerifier builds a verifier on top of the credential verifier.
func NewBasicVerifier(credentials *CredentialVerifier) *BasicVerifier {
	return &BasicVerifier{credentials: credentials}
}

// Verify decodes the header and checks the credentials.
func (b *BasicVerifier) Verify(ctx context.Context, header string) (*domain.Identity, error) {
	email, password, err := ParseBasicHeader(header)
	if err != nil {
		return nil, err
	}
	account, err := b.credentials.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &domain.Identity{AccountID: account.ID, Role: account.Role}, nil
}
