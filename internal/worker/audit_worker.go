package worker

import (
	"github.com/spec-kit/product-service/internal/service"
)

// StartAuditWorker subscribes the audit handlers to the dispatcher. It starts
// no goroutine: the dispatcher runs handlers synchronously on Publish.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
