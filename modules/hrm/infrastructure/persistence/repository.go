package persistence

import "github.com/iota-uz/hrdesk/modules/hrm/domain/record"

// NewRepository returns the in-memory repository when mem is set, the
// PostgreSQL one otherwise.
func NewRepository[T record.Entity](mem *MemoryStore, resource string) record.Repository[T] {
	if mem != nil {
		return NewMemoryRecordRepository[T](mem, resource)
	}
	return NewRecordRepository[T](resource)
}
