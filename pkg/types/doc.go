// Package types holds the small shared types used across confshare:
// the filesystem interface the core operates through and the artifact
// category enumeration shared by the manifest, packer and apply engine.
package types
