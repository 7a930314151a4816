package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
	"github.com/iota-uz/hrdesk/pkg/composables"
)

const (
	selectRecordsQuery = `SELECT id, payload, created_at, updated_at FROM hrm_records
		WHERE tenant_id = $1 AND resource = $2 ORDER BY id`
	selectRecordQuery = `SELECT id, payload, created_at, updated_at FROM hrm_records
		WHERE tenant_id = $1 AND resource = $2 AND id = $3`
	insertRecordQuery = `INSERT INTO hrm_records (tenant_id, resource, payload)
		VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`
	updateRecordQuery = `UPDATE hrm_records SET payload = $4, updated_at = now()
		WHERE tenant_id = $1 AND resource = $2 AND id = $3 RETURNING created_at, updated_at`
	deleteRecordQuery = `DELETE FROM hrm_records WHERE tenant_id = $1 AND resource = $2 AND id = $3`
)

// PgRecordRepository stores one resource in the shared hrm_records table.
type PgRecordRepository[T record.Entity] struct {
	resource string
}

func NewRecordRepository[T record.Entity](resource string) record.Repository[T] {
	return &PgRecordRepository[T]{resource: resource}
}

func scope(ctx context.Context) (composables.Querier, uuid.UUID, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, uuid.Nil, err
	}
	q, err := composables.UseTx(ctx)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return q, tenantID, nil
}

func (g *PgRecordRepository[T]) List(ctx context.Context) ([]T, error) {
	q, tenantID, err := scope(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, selectRecordsQuery, tenantID, g.resource)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", g.resource)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var (
			id                   int64
			payload              []byte
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &payload, &createdAt, &updatedAt); err != nil {
			return nil, errors.Wrapf(err, "scan %s", g.resource)
		}
		row, err := decodeRow[T](payload, id, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (g *PgRecordRepository[T]) Get(ctx context.Context, id int64) (T, error) {
	var zero T
	q, tenantID, err := scope(ctx)
	if err != nil {
		return zero, err
	}
	var (
		payload              []byte
		createdAt, updatedAt time.Time
	)
	err = q.QueryRow(ctx, selectRecordQuery, tenantID, g.resource, id).Scan(&id, &payload, &createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, record.ErrNotFound
	}
	if err != nil {
		return zero, errors.Wrapf(err, "get %s %d", g.resource, id)
	}
	return decodeRow[T](payload, id, createdAt, updatedAt)
}

func (g *PgRecordRepository[T]) Create(ctx context.Context, row T) (T, error) {
	var zero T
	q, tenantID, err := scope(ctx)
	if err != nil {
		return zero, err
	}
	payload, err := encodePayload(row)
	if err != nil {
		return zero, err
	}
	var (
		id                   int64
		createdAt, updatedAt time.Time
	)
	if err := q.QueryRow(ctx, insertRecordQuery, tenantID, g.resource, payload).Scan(&id, &createdAt, &updatedAt); err != nil {
		return zero, errors.Wrapf(err, "create %s", g.resource)
	}
	return decodeRow[T](payload, id, createdAt, updatedAt)
}

func (g *PgRecordRepository[T]) Update(ctx context.Context, id int64, row T) (T, error) {
	var zero T
	q, tenantID, err := scope(ctx)
	if err != nil {
		return zero, err
	}
	payload, err := encodePayload(row)
	if err != nil {
		return zero, err
	}
	var createdAt, updatedAt time.Time
	err = q.QueryRow(ctx, updateRecordQuery, tenantID, g.resource, id, payload).Scan(&createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, record.ErrNotFound
	}
	if err != nil {
		return zero, errors.Wrapf(err, "update %s %d", g.resource, id)
	}
	return decodeRow[T](payload, id, createdAt, updatedAt)
}

func (g *PgRecordRepository[T]) Delete(ctx context.Context, id int64) error {
	q, tenantID, err := scope(ctx)
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx, deleteRecordQuery, tenantID, g.resource, id)
	if err != nil {
		return errors.Wrapf(err, "delete %s %d", g.resource, id)
	}
	if tag.RowsAffected() == 0 {
		return record.ErrNotFound
	}
	return nil
}
