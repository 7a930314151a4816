package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
	"github.com/iota-uz/hrdesk/pkg/composables"
)

type memoryKey struct {
	tenant   uuid.UUID
	resource string
}

type memoryRecord struct {
	payload   []byte
	createdAt time.Time
	updatedAt time.Time
}

// MemoryStore keeps every resource in process memory. Payloads go through
// the same JSON encoding as the Postgres store.
type MemoryStore struct {
	mu      sync.RWMutex
	clock   clockwork.Clock
	nextID  int64
	records map[memoryKey]map[int64]memoryRecord
}

func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{clock: clock, records: make(map[memoryKey]map[int64]memoryRecord)}
}

// MemoryRecordRepository is a record.Repository over a MemoryStore.
type MemoryRecordRepository[T record.Entity] struct {
	store    *MemoryStore
	resource string
}

func NewMemoryRecordRepository[T record.Entity](store *MemoryStore, resource string) record.Repository[T] {
	return &MemoryRecordRepository[T]{store: store, resource: resource}
}

func (m *MemoryRecordRepository[T]) key(ctx context.Context) (memoryKey, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return memoryKey{}, err
	}
	return memoryKey{tenant: tenantID, resource: m.resource}, nil
}

func (m *MemoryRecordRepository[T]) List(ctx context.Context) ([]T, error) {
	k, err := m.key(ctx)
	if err != nil {
		return nil, err
	}
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	bucket := m.store.records[k]
	ids := make([]int64, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		rec := bucket[id]
		row, err := decodeRow[T](rec.payload, id, rec.createdAt, rec.updatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *MemoryRecordRepository[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	k, err := m.key(ctx)
	if err != nil {
		return zero, err
	}
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	rec, ok := m.store.records[k][id]
	if !ok {
		return zero, record.ErrNotFound
	}
	return decodeRow[T](rec.payload, id, rec.createdAt, rec.updatedAt)
}

func (m *MemoryRecordRepository[T]) Create(ctx context.Context, row T) (T, error) {
	var zero T
	k, err := m.key(ctx)
	if err != nil {
		return zero, err
	}
	payload, err := encodePayload(row)
	if err != nil {
		return zero, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.nextID++
	id := m.store.nextID
	now := m.store.clock.Now().UTC()
	bucket, ok := m.store.records[k]
	if !ok {
		bucket = make(map[int64]memoryRecord)
		m.store.records[k] = bucket
	}
	bucket[id] = memoryRecord{payload: payload, createdAt: now, updatedAt: now}
	return decodeRow[T](payload, id, now, now)
}

func (m *MemoryRecordRepository[T]) Update(ctx context.Context, id int64, row T) (T, error) {
	var zero T
	k, err := m.key(ctx)
	if err != nil {
		return zero, err
	}
	payload, err := encodePayload(row)
	if err != nil {
		return zero, err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	rec, ok := m.store.records[k][id]
	if !ok {
		return zero, record.ErrNotFound
	}
	rec.payload = payload
	rec.updatedAt = m.store.clock.Now().UTC()
	m.store.records[k][id] = rec
	return decodeRow[T](payload, id, rec.createdAt, rec.updatedAt)
}

func (m *MemoryRecordRepository[T]) Delete(ctx context.Context, id int64) error {
	k, err := m.key(ctx)
	if err != nil {
		return err
	}
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	if _, ok := m.store.records[k][id]; !ok {
		return record.ErrNotFound
	}
	delete(m.store.records[k], id)
	return nil
}
