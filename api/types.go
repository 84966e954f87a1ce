package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ruteri/share-engine/interfaces"
)

// EncodeRequest asks the server to split a value into a fresh share record.
type EncodeRequest struct {
	// Value is a JSON string or number. Numbers keep full precision.
	Value json.RawMessage `json:"value"`

	// FieldName labels the encoded value in the audit trail.
	FieldName string `json:"fieldName"`

	// Store persists the new record when true.
	Store bool `json:"store,omitempty"`
}

// PlainValue decodes Value into a string or json.Number.
func (r *EncodeRequest) PlainValue() (any, error) {
	if len(r.Value) == 0 {
		return nil, fmt.Errorf("%w: missing value", interfaces.ErrInvalidArgument)
	}

	dec := json.NewDecoder(bytes.NewReader(r.Value))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidArgument, err)
	}
	switch v.(type) {
	case string, json.Number:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: value must be a string or a number", interfaces.ErrInvalidArgument)
	}
}

// RecordRef points at a share record, either inline or by stored id.
// An inline record takes precedence over an id.
type RecordRef struct {
	ID     string                  `json:"id,omitempty"`
	Record *interfaces.ShareRecord `json:"record,omitempty"`
}

// EqualityRequest compares two records.
type EqualityRequest struct {
	A     RecordRef `json:"a"`
	B     RecordRef `json:"b"`
	Store bool      `json:"store,omitempty"`
}

// CombineRequest lists the inputs of an AND or an aggregation.
// Inline records come first, followed by records loaded by id.
type CombineRequest struct {
	Records []*interfaces.ShareRecord `json:"records,omitempty"`
	IDs     []string                  `json:"ids,omitempty"`
	Store   bool                      `json:"store,omitempty"`
}

// RecordResponse carries a share record in its wire format.
type RecordResponse struct {
	Record *interfaces.ShareRecord `json:"record"`
	Stored bool                    `json:"stored"`
}

// DecodeResponse carries a reconstructed field element in decimal.
type DecodeResponse struct {
	Value string `json:"value"`
}

// PartyViewResponse carries the share one party holds for a record.
type PartyViewResponse struct {
	ID    string `json:"id"`
	Party int    `json:"party"`
	Share string `json:"share"` // 64 hex characters
}
