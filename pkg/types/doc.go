// Package types defines the Store and Table interfaces, entity types,
// query descriptors, and standard errors for the Depot storage system.
package types
