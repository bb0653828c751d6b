package domain

import "time"

// Identity is the authenticated caller attached to a request by an auth gate.
type Identity struct {
	AccountID string
	Role      Role
}

// TokenPair is the result of a login or a refresh token rotation.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}
