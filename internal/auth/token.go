package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/product-service/internal/domain"
)

var (
	// ErrInvalidToken covers malformed, mis-signed and wrong-type tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrSigningKey is returned when a signing secret is missing.
	ErrSigningKey = errors.New("signing secret not configured")
)

// TokenType distinguishes access from refresh tokens inside the claims.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims describes JWT payload.
type Claims struct {
	Role domain.Role `json:"role,omitempty"`
	Type TokenType   `json:"typ"`
	jwt.RegisteredClaims
}

// TokenConfig carries the signing material loaded at startup.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenOption customizes a TokenManager.
type TokenOption func(*TokenManager)

// WithClock replaces the wall clock used for issuing and verifying tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(tm *TokenManager) {
		tm.now = now
	}
}

// TokenManager handles issuing and validating JWT access and refresh tokens.
// It holds no per-request state and is safe for concurrent use.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	now           func() time.Time
}

// NewTokenManager builds a new manager. Missing secrets or a refresh TTL that
// does not outlive the access TTL are configuration errors.
func NewTokenManager(cfg TokenConfig, opts ...TokenOption) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrSigningKey
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}
	if cfg.RefreshTTL <= cfg.AccessTTL {
		return nil, errors.New("refresh token ttl must exceed access token ttl")
	}

	tm := &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm, nil
}

// Issue signs a fresh access/refresh pair for the account.
func (tm *TokenManager) Issue(account *domain.Account) (domain.TokenPair, error) {
	if account == nil || account.ID == "" {
		return domain.TokenPair{}, errors.New("issue tokens: account without id")
	}

	now := tm.now()
	access, accessExp, err := tm.sign(tm.accessSecret, TokenTypeAccess, account.ID, account.Role, now, tm.accessTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshExp, err := tm.sign(tm.refreshSecret, TokenTypeRefresh, account.ID, "", now, tm.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// ParseAccess verifies an access token and returns the identity it asserts.
func (tm *TokenManager) ParseAccess(tokenStr string) (*domain.Identity, error) {
	claims, err := tm.parse(tokenStr, tm.accessSecret, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	if !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return &domain.Identity{AccountID: claims.Subject, Role: claims.Role}, nil
}

// ParseRefresh verifies a refresh token and returns its subject.
func (tm *TokenManager) ParseRefresh(tokenStr string) (string, error) {
	claims, err := tm.parse(tokenStr, tm.refreshSecret, TokenTypeRefresh)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (tm *TokenManager) sign(secret []byte, typ TokenType, subject string, role domain.Role, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, ErrSigningKey
	}

	expiresAt := now.Add(ttl)
	claims := &Claims{
		Role: role,
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tm.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, claims.ExpiresAt.Time, nil
}

// parse validates signature, expiry and token type. A token is rejected at
// the exact instant of its expiry.
func (tm *TokenManager) parse(tokenStr string, secret []byte, want TokenType) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrSigningKey
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	}
	if tm.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tm.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Type != want || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
