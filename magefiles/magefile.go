//go:build mage

// Package main provides build targets for the depot project using Mage.
//
// Usage:
//
//	mage build      Compile depot binary to bin/
//	mage test       Run all tests
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install depot to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/sh"
)

const (
	binaryName = "depot"
	binaryDir  = "bin"
	cmdDir     = "./cmd/depot"
)

// Build compiles the depot binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Lint runs golangci-lint over the module.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	return os.RemoveAll(binaryDir)
}

// Install installs the depot binary to GOPATH/bin.
func Install() error {
	return sh.RunV("go", "install", cmdDir)
}
