// Package bundle implements the confshare operations: packaging an
// assistant configuration directory into a versioned bundle, applying a
// bundle to a target directory, and the supporting lifecycle commands
// (update checks, version bumps, listing, removal, validation).
//
// All operations run against the types.FS abstraction and report their
// outcome per artifact, so a partially applied bundle still yields a
// complete account of what was written, skipped, renamed or left
// pending.
package bundle
