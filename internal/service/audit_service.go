package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/product-service/internal/events"
)

// AuditService writes account and token events to the audit log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllAccountEvents() {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Time("timestamp", event.Timestamp),
	}
	if event.AccountID != "" {
		fields = append(fields, zap.String("account_id", event.AccountID))
	}
	if event.ActorID != "" {
		fields = append(fields, zap.String("actor_id", event.ActorID))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}

	switch event.Type {
	case events.EventLoginFailed:
		a.logger.Warn("LoginFailed", fields...)
	default:
		a.logger.Info(string(event.Type), fields...)
	}
	return nil
}
