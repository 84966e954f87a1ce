package storage

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/ruteri/share-engine/interfaces"
)

func marshalRecord(record *interfaces.ShareRecord) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: nil share record", interfaces.ErrInvalidArgument)
	}
	if err := validateID(record.ID()); err != nil {
		return nil, err
	}
	return json.Marshal(record)
}

func unmarshalRecord(data []byte) (*interfaces.ShareRecord, error) {
	var record interfaces.ShareRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: failed to decode stored share record: %w", interfaces.ErrInvalidArgument, err)
	}
	return &record, nil
}

// validateID accepts only UUIDs so ids are safe to use as paths and keys.
func validateID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return fmt.Errorf("%w: share id %q is not a canonical UUID", interfaces.ErrInvalidArgument, id)
	}
	return nil
}
