// Package common holds process-wide helpers shared by the binaries.
package common

// PackageName is the metrics namespace of the service.
const PackageName = "share_engine"

// Version is set at build time with -ldflags "-X github.com/ruteri/share-engine/common.Version=..."
var Version = "dev"
