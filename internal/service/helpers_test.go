package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/product-service/internal/auth"
	"github.com/spec-kit/product-service/internal/events"
	"github.com/spec-kit/product-service/internal/repository"
	"github.com/spec-kit/product-service/internal/repository/memory"
	apperrors "github.com/spec-kit/product-service/pkg/errorutil"
)

type accountFixture struct {
	svc        *AccountService
	repo       repository.AccountRepository
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	events     *eventRecorder
}

type eventRecorder struct {
	mu   sync.Mutex
	seen []events.Event
}

func (r *eventRecorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, e)
	return nil
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.seen))
	for _, e := range r.seen {
		out = append(out, e.Type)
	}
	return out
}

type countingThrottle struct {
	mu       sync.Mutex
	max      int
	failures map[string]int
}

func newCountingThrottle(max int) *countingThrottle {
	return &countingThrottle{max: max, failures: map[string]int{}}
}

func (t *countingThrottle) Allow(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failures[email] >= t.max {
		return auth.ErrTooManyAttempts
	}
	return nil
}

func (t *countingThrottle) Fail(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[email]++
	return nil
}

func (t *countingThrottle) Reset(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, email)
	return nil
}

func newAccountFixture(t *testing.T, throttle auth.LoginThrottle) *accountFixture {
	t.Helper()
	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		AccessSecret:  "svc-access",
		RefreshSecret: "svc-refresh",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
		Issuer:        "product-service",
	})
	require.NoError(t, err)

	repo := memory.NewAccountRepository()
	dispatcher := events.NewInMemoryDispatcher(nil)
	recorder := &eventRecorder{}
	for _, et := range events.AllAccountEvents() {
		dispatcher.Subscribe(et, recorder.handle)
	}

	svc := NewAccountService(AccountDependencies{
		AccountRepo: repo,
		Hasher:      auth.NewPasswordHasher(bcrypt.MinCost),
		Tokens:      tokens,
		Throttle:    throttle,
		Dispatcher:  dispatcher,
	})
	return &accountFixture{svc: svc, repo: repo, tokens: tokens, dispatcher: dispatcher, events: recorder}
}

func requireDomainStatus(t *testing.T, err error, status int) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, status, domainErr.HTTPStatus, err.Error())
	return domainErr
}

func strPtr(s string) *string { return &s }
