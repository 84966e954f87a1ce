// Package sharehandler implements the HTTP API and client of the share engine.
//
// Key components:
//   - Handler: Serves encode, decode, equality, and, aggregate, record lookup,
//     deletion, audit and party view requests
//   - Client: Calls those endpoints and maps error statuses back to the
//     interfaces sentinel errors
//
// Records are exchanged in their JSON wire format. Requests may reference
// stored records by id when the handler is configured with a ShareStore.
//
// Error statuses:
//   - 400 for malformed records, invalid values and threshold violations
//   - 404 for unknown records and party views
//   - 503 when no store is configured or every backend is unavailable
package sharehandler
