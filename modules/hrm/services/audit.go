package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
	"github.com/iota-uz/hrdesk/modules/hrm/infrastructure/persistence"
)

const auditTimeout = 5 * time.Second

// AuditLog records every committed change. Subscribe Handle to the event bus.
type AuditLog struct {
	store  persistence.AuditStore
	logger *logrus.Logger
}

func NewAuditLog(store persistence.AuditStore, logger *logrus.Logger) *AuditLog {
	return &AuditLog{store: store, logger: logger}
}

func (a *AuditLog) Handle(ev *record.ChangedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	entry := a.logger.WithFields(logrus.Fields{
		"resource":  ev.Resource,
		"action":    ev.Action,
		"record-id": ev.RecordID,
		"tenant-id": ev.TenantID,
		"user-id":   ev.UserID,
	})
	if err := a.store.Append(ctx, *ev); err != nil {
		entry.WithError(err).Error("failed to write audit entry")
		return
	}
	entry.Info("record changed")
}
