//go:build integration

// Package integration provides integration tests for reading archives
// from a real web server.
//
// These tests require Docker and spin up an nginx container using
// testcontainers. Run with: go test -tags=integration ./integration/...
package integration
