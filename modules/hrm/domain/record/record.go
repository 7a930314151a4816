// Package record defines the storage contract shared by every HR resource.
package record

import (
	"context"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrInUse is returned when a record cannot be deleted because other
	// records reference it.
	ErrInUse = errors.New("record is referenced by other records")
)

// Meta is owned by the store. It is embedded by every entity and never part
// of the stored payload.
type Meta struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m Meta) RecordMeta() Meta { return m }

// RowID is the table row identity of a record.
func (m Meta) RowID() string { return strconv.FormatInt(m.ID, 10) }

// MetaKeys are the payload keys reserved for Meta.
var MetaKeys = []string{"id", "created_at", "updated_at"}

// Entity is implemented by embedding Meta.
type Entity interface {
	RecordMeta() Meta
	RowID() string
}

// Checker is implemented by entities with rules spanning several fields.
// It returns field -> message id.
type Checker interface {
	Check() map[string]string
}

// Repository stores records of one resource, scoped to the tenant in ctx.
type Repository[T Entity] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, row T) (T, error)
	Update(ctx context.Context, id int64, row T) (T, error)
	Delete(ctx context.Context, id int64) error
}

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ChangedEvent is published after a mutation committed.
type ChangedEvent struct {
	Resource string
	Action   Action
	RecordID int64
	TenantID uuid.UUID
	UserID   uuid.UUID
	At       time.Time
}
