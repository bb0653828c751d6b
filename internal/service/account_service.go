package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/product-service/internal/auth"
	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/events"
	"github.com/spec-kit/product-service/internal/observability"
	"github.com/spec-kit/product-service/internal/repository"
	apperrors "github.com/spec-kit/product-service/pkg/errorutil"
)

// AccountService coordinates registration, login, token rotation and
// account management.
type AccountService struct {
	accounts   repository.AccountRepository
	hasher     *auth.PasswordHasher
	verifier   *auth.CredentialVerifier
	tokens     *auth.TokenManager
	rotator    *auth.Rotator
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// AccountDependencies bundles collaborators for the account service.
type AccountDependencies struct {
	AccountRepo repository.AccountRepository
	Hasher      *auth.PasswordHasher
	Tokens      *auth.TokenManager
	Throttle    auth.LoginThrottle
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// RegisterInput describes a self-registration request.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Surname  string
}

// ProfileUpdate carries optional changes; nil fields are left as they are.
type ProfileUpdate struct {
	Email    *string
	Password *string
	Name     *string
	Surname  *string
}

// AdminUpdate is a ProfileUpdate that may also change the role.
type AdminUpdate struct {
	ProfileUpdate
	Role *domain.Role
}

// NewAccountService builds the service.
func NewAccountService(deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	verifier := auth.NewCredentialVerifier(deps.AccountRepo, deps.Hasher,
		auth.WithThrottle(deps.Throttle),
		auth.WithVerifierLogger(logger),
	)
	return &AccountService{
		accounts:   deps.AccountRepo,
		hasher:     deps.Hasher,
		verifier:   verifier,
		tokens:     deps.Tokens,
		rotator:    auth.NewRotator(deps.Tokens, deps.AccountRepo),
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// Credentials exposes the verifier so the Basic-Auth gate shares it, login
// throttle included.
func (s *AccountService) Credentials() *auth.CredentialVerifier {
	return s.verifier
}

// Register creates a User account. The role is never taken from input.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	email := strings.TrimSpace(in.Email)
	var violations []string
	if msg := validateEmail(email); msg != "" {
		violations = append(violations, msg)
	}
	if in.Password == "" {
		violations = append(violations, "password is required")
	} else if msg := validatePasswordLength(in.Password); msg != "" {
		violations = append(violations, msg)
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", violations...)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	account := &domain.Account{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Name:         strings.TrimSpace(in.Name),
		Surname:      strings.TrimSpace(in.Surname),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, mapAccountError(err, "")
	}

	s.publish(ctx, events.Event{Type: events.EventAccountRegistered, AccountID: account.ID, ActorID: account.ID})
	sanitized := account.Sanitized()
	return &sanitized, nil
}

// Login checks credentials and issues a fresh token pair.
func (s *AccountService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	account, err := s.verifier.Verify(ctx, email, password)
	switch {
	case errors.Is(err, auth.ErrTooManyAttempts):
		s.metrics.RecordAuth("login", "throttled")
		return domain.TokenPair{}, apperrors.NewTooManyRequests("too many failed login attempts")
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.metrics.RecordAuth("login", "rejected")
		s.publish(ctx, events.Event{Type: events.EventLoginFailed, Payload: events.LoginFailedPayload{
			EmailHash: hashEmail(email),
			Reason:    "invalid_credentials",
		}})
		return domain.TokenPair{}, apperrors.NewUnauthorized("credentials are not ok")
	case err != nil:
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}

	pair, err := s.tokens.Issue(account)
	if err != nil {
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}

	s.metrics.RecordAuth("login", "success")
	s.publish(ctx, events.Event{Type: events.EventLoginSucceeded, AccountID: account.ID, ActorID: account.ID})
	return pair, nil
}

// Refresh rotates a refresh token into a new pair.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		s.metrics.RecordAuth("refresh", "rejected")
		return domain.TokenPair{}, apperrors.NewUnauthorized("refresh token required")
	}

	pair, account, err := s.rotator.Rotate(ctx, strings.TrimSpace(refreshToken))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			s.metrics.RecordAuth("refresh", "expired")
			return domain.TokenPair{}, apperrors.NewUnauthorized("refresh token expired")
		case errors.Is(err, auth.ErrInvalidToken):
			s.metrics.RecordAuth("refresh", "rejected")
			return domain.TokenPair{}, apperrors.NewUnauthorized("invalid refresh token")
		}
		return domain.TokenPair{}, apperrors.NewInternalError(err)
	}

	s.metrics.RecordAuth("refresh", "success")
	s.publish(ctx, events.Event{Type: events.EventTokensRotated, AccountID: account.ID, ActorID: account.ID})
	return pair, nil
}

// Get returns a single account without its hash.
func (s *AccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, mapAccountError(err, id)
	}
	sanitized := account.Sanitized()
	return &sanitized, nil
}

// List returns every account without hashes.
func (s *AccountService) List(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range accounts {
		accounts[i] = accounts[i].Sanitized()
	}
	return accounts, nil
}

// UpdateSelf applies a profile update on behalf of the account owner.
// There is no way to change the role through this path.
func (s *AccountService) UpdateSelf(ctx context.Context, id string, in ProfileUpdate) (*domain.Account, error) {
	return s.update(ctx, id, id, in, nil)
}

// UpdateByAdmin applies an administrative update, possibly changing the role.
func (s *AccountService) UpdateByAdmin(ctx context.Context, actorID, id string, in AdminUpdate) (*domain.Account, error) {
	if in.Role != nil && !in.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid account update", "role must be one of User, Admin")
	}
	return s.update(ctx, actorID, id, in.ProfileUpdate, in.Role)
}

func (s *AccountService) update(ctx context.Context, actorID, id string, in ProfileUpdate, role *domain.Role) (*domain.Account, error) {
	var violations []string
	if in.Email != nil {
		if msg := validateEmail(strings.TrimSpace(*in.Email)); msg != "" {
			violations = append(violations, msg)
		}
	}
	if in.Password != nil {
		if *in.Password == "" {
			violations = append(violations, "password must not be empty")
		} else if msg := validatePasswordLength(*in.Password); msg != "" {
			violations = append(violations, msg)
		}
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationError("invalid account update", violations...)
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, mapAccountError(err, id)
	}

	var fields []string
	if in.Email != nil {
		account.Email = strings.TrimSpace(*in.Email)
		fields = append(fields, "email")
	}
	if in.Name != nil {
		account.Name = strings.TrimSpace(*in.Name)
		fields = append(fields, "name")
	}
	if in.Surname != nil {
		account.Surname = strings.TrimSpace(*in.Surname)
		fields = append(fields, "surname")
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		account.PasswordHash = hash
		fields = append(fields, "password")
	}
	roleChanged := false
	if role != nil && *role != account.Role {
		account.Role = *role
		roleChanged = true
		fields = append(fields, "role")
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, mapAccountError(err, id)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventAccountUpdated,
		AccountID: account.ID,
		ActorID:   actorID,
		Payload:   events.AccountUpdatedPayload{Fields: fields, RoleChanged: roleChanged},
	})
	sanitized := account.Sanitized()
	return &sanitized, nil
}

// Delete removes an account.
func (s *AccountService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		return mapAccountError(err, id)
	}
	s.publish(ctx, events.Event{Type: events.EventAccountDeleted, AccountID: id, ActorID: actorID})
	return nil
}

// EnsureAdmin makes sure an Admin account with the given email exists.
// An existing account is promoted, never demoted, and keeps its password.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) (*domain.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.New("admin bootstrap requires email and password")
	}

	existing, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == domain.RoleAdmin {
			sanitized := existing.Sanitized()
			return &sanitized, nil
		}
		existing.Role = domain.RoleAdmin
		if err := s.accounts.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.Info("promoted bootstrap account to admin", zap.String("account_id", existing.ID))
		sanitized := existing.Sanitized()
		return &sanitized, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	account := &domain.Account{Email: email, PasswordHash: hash, Role: domain.RoleAdmin}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("created bootstrap admin account", zap.String("account_id", account.ID))
	s.publish(ctx, events.Event{Type: events.EventAccountRegistered, AccountID: account.ID})
	sanitized := account.Sanitized()
	return &sanitized, nil
}

func (s *AccountService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func mapAccountError(err error, id string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		details := map[string]any{}
		if id != "" {
			details["user_id"] = id
		}
		return apperrors.NewNotFound("user", details)
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperrors.NewConflict("email already registered", nil)
	}
	return apperrors.MapError(err)
}

// bcrypt only looks at the first 72 bytes and refuses longer input.
const maxPasswordBytes = 72

func validatePasswordLength(password string) string {
	if len(password) > maxPasswordBytes {
		return "password must be at most 72 bytes"
	}
	return ""
}

// validateEmail returns a violation message or "" when the address is usable.
func validateEmail(email string) string {
	if email == "" {
		return "email is required"
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "email is not valid"
	}
	return ""
}

func hashEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(email)))
	return hex.EncodeToString(sum[:8])
}
