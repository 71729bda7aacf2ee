// Package waxtype holds the types and sentinel errors shared by the wax
// packages. The root package re-exports them.
package waxtype
