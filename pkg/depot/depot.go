// Package depot holds module-level metadata.
package depot

// Version is the current Depot release version.
const Version = "0.1.0"
