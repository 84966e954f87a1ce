/*
Package api holds the wire types and server configuration of the share engine HTTP API.

The request handlers and the matching client live in the sharehandler
subpackage. The server that mounts them lives in the httpserver package.

# Request Types

  - EncodeRequest - Split a plaintext value into a share record
  - RecordRef - Refer to a record inline or by its storage id
  - EqualityRequest - Compare two records
  - CombineRequest - Inputs to AND and aggregation

Every operation that produces a record accepts a Store flag. When set, the new
record is written to the configured share store and the response carries
Stored: true.
*/
package api
