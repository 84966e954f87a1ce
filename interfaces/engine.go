package interfaces

import "math/big"

// ShareEngine encodes values into share records and computes over them.
// Implementations must be safe for concurrent use.
type ShareEngine interface {
	// Encode maps a string or number to a field element and splits it into a fresh record.
	// Strings are hashed with SHA-256, numbers are floored and reduced modulo P.
	Encode(value any, fieldName string) (*ShareRecord, error)

	// Decode reconstructs the field element a record encodes.
	Decode(record *ShareRecord) (*big.Int, error)

	// SecureEquality returns a fresh record encoding 1 if both records encode
	// the same field element and 0 otherwise.
	SecureEquality(a, b *ShareRecord) (*ShareRecord, error)

	// SecureAnd returns a fresh record encoding the AND of records that each encode 0 or 1.
	SecureAnd(records []*ShareRecord) (*ShareRecord, error)

	// SecureAggregate returns a fresh record combining the per-party share sums.
	SecureAggregate(records []*ShareRecord) (*ShareRecord, error)

	// AuditTrail describes a record without secret material.
	// A nil record yields an empty AuditEntry.
	AuditTrail(record *ShareRecord) AuditEntry

	// PartyView returns the share a party holds for a record id.
	PartyView(id string, party int) (*big.Int, error)

	// ForgetPartyViews drops the recorded party shares of a record id.
	ForgetPartyViews(id string)
}
