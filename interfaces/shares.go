package interfaces

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"time"

	ethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/ruteri/share-engine/shamir"
)

// ShareRecordType is the constant type tag of serialized share records.
const ShareRecordType = "mpc_share"

// ShareHexLength is the length of a serialized party share: 32 bytes, zero padded.
const ShareHexLength = 2 * shamir.ElementSize

// ShareRecord holds the party shares of one encoded value.
//
// A record is immutable: fields are unexported and accessors return copies.
// Comparison and aggregation produce new records.
type ShareRecord struct {
	id         string
	shares     []*big.Int // shares[i] belongs to party i+1, evaluated at x = i+1
	fieldName  string
	createdAt  time.Time
	partyCount int
	threshold  int
}

// NewShareRecord validates and wraps party shares into a record.
// shares[i] is the share of party i+1. Every share must lie in [0, P) and the
// threshold must be between 1 and the number of shares.
func NewShareRecord(id string, shares []*big.Int, fieldName string, createdAt time.Time, threshold int) (*ShareRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty share id", ErrInvalidArgument)
	}
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: share record without shares", ErrInvalidArgument)
	}
	if threshold < 1 || threshold > len(shares) {
		return nil, fmt.Errorf("%w: threshold %d with %d parties", ErrInvalidThreshold, threshold, len(shares))
	}

	copied := make([]*big.Int, len(shares))
	for i, share := range shares {
		if !shamir.Secp256k1.Contains(share) {
			return nil, fmt.Errorf("%w: party %d share outside the field", ErrInvalidArgument, i+1)
		}
		copied[i] = new(big.Int).Set(share)
	}

	return &ShareRecord{
		id:         id,
		shares:     copied,
		fieldName:  fieldName,
		createdAt:  createdAt,
		partyCount: len(shares),
		threshold:  threshold,
	}, nil
}

// ID returns the record identifier.
func (r *ShareRecord) ID() string { return r.id }

// FieldName returns the semantic label of the encoded value.
func (r *ShareRecord) FieldName() string { return r.fieldName }

// CreatedAt returns the creation timestamp.
func (r *ShareRecord) CreatedAt() time.Time { return r.createdAt }

// PartyCount returns the number of party shares in the record.
func (r *ShareRecord) PartyCount() int { return r.partyCount }

// Threshold returns the number of shares needed for reconstruction.
func (r *ShareRecord) Threshold() int { return r.threshold }

// PartyShare returns a copy of the share held by party (1-based).
func (r *ShareRecord) PartyShare(party int) (*big.Int, error) {
	if party < 1 || party > r.partyCount {
		return nil, fmt.Errorf("%w: party %d not in 1..%d", ErrInvalidArgument, party, r.partyCount)
	}
	return new(big.Int).Set(r.shares[party-1]), nil
}

// Shares returns copies of all party shares as evaluation points.
func (r *ShareRecord) Shares() []shamir.Share {
	out := make([]shamir.Share, len(r.shares))
	for i, share := range r.shares {
		out[i] = shamir.Share{Index: i + 1, Value: new(big.Int).Set(share)}
	}
	return out
}

// Audit describes the record without any secret material.
func (r *ShareRecord) Audit() AuditEntry {
	return AuditEntry{
		ID:         r.id,
		Type:       ShareRecordType,
		FieldName:  r.fieldName,
		CreatedAt:  r.createdAt.UTC(),
		Timestamp:  r.createdAt.UnixMilli(),
		PartyCount: r.partyCount,
		Threshold:  r.threshold,
	}
}

// AuditEntry is the descriptive metadata of a share record.
type AuditEntry struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	FieldName  string    `json:"fieldName"`
	CreatedAt  time.Time `json:"createdAt"`
	Timestamp  int64     `json:"timestamp"`
	PartyCount int       `json:"partyCount"`
	Threshold  int       `json:"threshold"`
}

type shareRecordJSON struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Shares   map[string]string  `json:"shares"`
	Metadata shareRecordMetaJSON `json:"metadata"`
}

type shareRecordMetaJSON struct {
	FieldName  string `json:"fieldName"`
	Timestamp  int64  `json:"timestamp"`
	PartyCount int    `json:"partyCount"`
	Threshold  int    `json:"threshold"`
}

func partyKey(party int) string {
	return "party" + strconv.Itoa(party)
}

// MarshalJSON encodes the record in its wire format.
func (r *ShareRecord) MarshalJSON() ([]byte, error) {
	shares := make(map[string]string, len(r.shares))
	for i, share := range r.shares {
		shares[partyKey(i+1)] = EncodeShareHex(share)
	}

	return json.Marshal(shareRecordJSON{
		ID:     r.id,
		Type:   ShareRecordType,
		Shares: shares,
		Metadata: shareRecordMetaJSON{
			FieldName:  r.fieldName,
			Timestamp:  r.createdAt.UnixMilli(),
			PartyCount: r.partyCount,
			Threshold:  r.threshold,
		},
	})
}

// UnmarshalJSON decodes and validates a record from its wire format.
func (r *ShareRecord) UnmarshalJSON(data []byte) error {
	var wire shareRecordJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	if wire.Type != ShareRecordType {
		return fmt.Errorf("%w: unexpected record type %q", ErrInvalidArgument, wire.Type)
	}
	if wire.Metadata.PartyCount < 1 {
		return fmt.Errorf("%w: invalid party count %d", ErrInvalidArgument, wire.Metadata.PartyCount)
	}
	if len(wire.Shares) != wire.Metadata.PartyCount {
		return fmt.Errorf("%w: %d shares for party count %d", ErrInvalidArgument, len(wire.Shares), wire.Metadata.PartyCount)
	}

	shares := make([]*big.Int, wire.Metadata.PartyCount)
	for i := range shares {
		encoded, ok := wire.Shares[partyKey(i+1)]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrInvalidArgument, partyKey(i+1))
		}
		share, err := DecodeShareHex(encoded)
		if err != nil {
			return fmt.Errorf("%s: %w", partyKey(i+1), err)
		}
		shares[i] = share
	}

	record, err := NewShareRecord(wire.ID, shares, wire.Metadata.FieldName, time.UnixMilli(wire.Metadata.Timestamp), wire.Metadata.Threshold)
	if err != nil {
		return err
	}
	*r = *record
	return nil
}

// EncodeShareHex renders a field element as 64 lowercase hex characters.
func EncodeShareHex(v *big.Int) string {
	return hex.EncodeToString(ethmath.PaddedBigBytes(v, shamir.ElementSize))
}

// DecodeShareHex parses a 64 character hex share and checks it is a field element.
func DecodeShareHex(s string) (*big.Int, error) {
	if len(s) != ShareHexLength {
		return nil, fmt.Errorf("%w: share must be %d hex characters, got %d", ErrInvalidArgument, ShareHexLength, len(s))
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex share: %v", ErrInvalidArgument, err)
	}

	v := new(big.Int).SetBytes(raw)
	if !shamir.Secp256k1.Contains(v) {
		return nil, fmt.Errorf("%w: share not below the field prime", ErrInvalidArgument)
	}
	return v, nil
}
