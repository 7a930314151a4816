package persistence

import (
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/tidwall/sjson"

	"github.com/iota-uz/hrdesk/modules/hrm/domain/record"
)

// encodePayload marshals row without the store-owned meta keys.
func encodePayload[T record.Entity](row T) ([]byte, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return nil, errors.Wrap(err, "marshal payload")
	}
	for _, key := range record.MetaKeys {
		payload, err = sjson.DeleteBytes(payload, key)
		if err != nil {
			return nil, errors.Wrapf(err, "strip %s", key)
		}
	}
	return payload, nil
}

// decodeRow rebuilds a row from its payload and the store columns.
func decodeRow[T record.Entity](payload []byte, id int64, createdAt, updatedAt time.Time) (T, error) {
	var row T
	if err := json.Unmarshal(payload, &row); err != nil {
		return row, errors.Wrapf(err, "unmarshal record %d", id)
	}
	meta, err := json.Marshal(record.Meta{ID: id, CreatedAt: createdAt, UpdatedAt: updatedAt})
	if err != nil {
		return row, err
	}
	if err := json.Unmarshal(meta, &row); err != nil {
		return row, errors.Wrapf(err, "apply meta to record %d", id)
	}
	return row, nil
}
