// Package engine implements the share engine: encoding plaintext values into
// Shamir share records and computing over them.
//
// It implements the interfaces.ShareEngine interface:
//
//	type ShareEngine interface {
//	    Encode(value any, fieldName string) (*ShareRecord, error)
//	    Decode(record *ShareRecord) (*big.Int, error)
//	    SecureEquality(a, b *ShareRecord) (*ShareRecord, error)
//	    SecureAnd(records []*ShareRecord) (*ShareRecord, error)
//	    SecureAggregate(records []*ShareRecord) (*ShareRecord, error)
//	    AuditTrail(record *ShareRecord) AuditEntry
//	    PartyView(id string, party int) (*big.Int, error)
//	    ForgetPartyViews(id string)
//	}
//
// # Encoding
//
// Numbers are floored and reduced modulo the secp256k1 prime P, so
// Decode(Encode(n)) == n for 0 <= n < P. Text is hashed with SHA-256 first;
// Decode returns SHA-256(text) mod P and the text itself cannot be recovered.
// Encoding the same text twice yields records with different shares that
// decode to the same integer.
//
// # Comparison
//
// SecureEquality subtracts the shares of the two records party by party and
// opens the resulting sharing of the difference. The inputs are never
// reconstructed, however all parties live in one process so the equality bit
// is visible to the engine before it is re-encoded. CompareShares returns it
// directly.
//
// SecureAnd decodes boolean records and re-encodes their conjunction.
//
// # Aggregation
//
// SecureAggregate sums shares per party. In AggregateLinear mode the sums form
// a sharing of the total modulo P. AggregateLegacySplit reproduces a naive
// half/half split of the combined party sums, which does not decode to the
// total.
//
// # Party Views
//
// With a PartyViewStore configured, the engine records every party's share of
// each record it creates, keyed by record id.
//
// # Usage Example
//
//	eng, err := engine.New(engine.Config{PartyViews: storage.NewMemoryPartyViewStore()})
//	if err != nil {
//	    return err
//	}
//
//	stored, _ := eng.Encode("AB12CD34", "verificationCode")
//	presented, _ := eng.Encode("AB12CD34", "verificationCode")
//
//	result, _ := eng.SecureEquality(stored, presented)
//	bit, _ := eng.Decode(result) // 1
package engine
