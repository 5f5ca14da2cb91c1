// Package filesystem provides implementations of the types.FS interface:
// one backed by the OS filesystem for production use and one backed by
// afero for in-memory testing.
package filesystem
