// Package interfaces defines core interfaces and types for the share engine
// service, separating interface definitions from implementations.
//
// # Share Records
//
// ShareRecord is the unit of storage and interchange: a set of party shares of
// one field element together with its metadata (id, field name, creation time,
// party count and threshold). Records are immutable once created. The JSON
// form is the only persisted format:
//
//	{
//	  "id": "5b0e...",
//	  "type": "mpc_share",
//	  "shares": {"party1": "<64 hex>", "party2": "<64 hex>"},
//	  "metadata": {"fieldName": "dob", "timestamp": 1700000000000, "partyCount": 2, "threshold": 2}
//	}
//
// # Engine Interface
//
// ShareEngine: encode, decode, secure equality, secure AND, secure aggregation,
// audit trail and party view lookups over share records.
//
// # Storage Interfaces
//
// ShareStore: persists serialized share records by id across multiple backend
// types (memory, file, S3, Vault, IPFS, Postgres).
//
// ShareStoreFactory: creates stores from URI strings and combines them into a
// redundant multi-store.
//
// PartyViewStore: concurrency-safe id -> party -> share map backing the party
// view API.
package interfaces
