// Package main provides the depot CLI: a local emulation of a managed,
// table-oriented datastore service for the Folio portfolio tracker.
package main

func main() {
	Execute()
}
