package persistence

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
)

const insertAuditQuery = `INSERT INTO hrm_audit_log (tenant_id, user_id, resource, record_id, action, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// AuditStore appends record change events.
type AuditStore interface {
	Append(ctx context.Context, ev record.ChangedEvent) error
}

type PgAuditStore struct {
	pool *pgxpool.Pool
}

func NewPgAuditStore(pool *pgxpool.Pool) *PgAuditStore {
	return &PgAuditStore{pool: pool}
}

func (s *PgAuditStore) Append(ctx context.Context, ev record.ChangedEvent) error {
	var userID any
	if ev.UserID != uuid.Nil {
		userID = ev.UserID
	}
	_, err := s.pool.Exec(ctx, insertAuditQuery, ev.TenantID, userID, ev.Resource, ev.RecordID, string(ev.Action), ev.At)
	if err != nil {
		return errors.Wrap(err, "append audit entry")
	}
	return nil
}

// MemoryAuditStore keeps the last Limit entries.
type MemoryAuditStore struct {
	Limit int

	mu      sync.Mutex
	entries []record.ChangedEvent
}

func (s *MemoryAuditStore) Append(_ context.Context, ev record.ChangedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, ev)
	if s.Limit > 0 && len(s.entries) > s.Limit {
		s.entries = s.entries[len(s.entries)-s.Limit:]
	}
	return nil
}

func (s *MemoryAuditStore) Entries() []record.ChangedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]record.ChangedEvent(nil), s.entries...)
}
