package main

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort      = "Package and share assistant tool configuration"
	MsgPackShort      = "Package a configuration directory into a bundle"
	MsgApplyShort     = "Apply a bundle to a configuration directory"
	MsgUpdateShort    = "Update a bundle from another location"
	MsgBumpShort      = "Increment a bundle's version"
	MsgListShort      = "List bundles in the share directory"
	MsgRemoveShort    = "Remove a bundle from the share directory"
	MsgValidateShort  = "Check a bundle for problems"
	MsgGenConfigShort = "Print a starter configuration file"
	MsgVersionShort   = "Print version information"

	// Status messages
	MsgDryRunNotice    = "DRY RUN MODE - No changes were made"
	MsgNoBundlesFound  = "No bundles found."
	MsgPackedFormat    = "Packaged bundle '%s' %s with %d artifact(s)"
	MsgAppliedFormat   = "Applied bundle '%s' %s to %s: %d artifact(s)"
	MsgPendingFormat   = "%d conflict(s) need a decision, re-run with --resolve %s=<overwrite|skip|rename>"
	MsgSanitizedFormat = "Sanitized %d secret(s), fill in %s before applying"
	MsgMissingVars     = "Unresolved variable(s): %s (add them to %s in the target)"
	MsgUpToDate        = "Bundle '%s' is up to date (%s)"
	MsgUpdatedFormat   = "Updated bundle '%s' from %s to %s"
	MsgUpdateAvailable = "Update available for '%s': %s -> %s"
	MsgBumpedFormat    = "Bumped bundle '%s' to %s"
	MsgRemovedFormat   = "Removed bundle '%s'"
	MsgValidFormat     = "Bundle '%s' is valid"
	MsgInvalidFormat   = "Bundle '%s' has %d problem(s)"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun       = "Preview changes without executing them"
	MsgFlagSource       = "Configuration directory to package from or apply to"
	MsgFlagShare        = "Directory bundles are written to and applied from"
	MsgFlagVersion      = "Bundle version"
	MsgFlagDescription  = "Bundle description"
	MsgFlagAuthor       = "Bundle author"
	MsgFlagInclude      = "Limit a category to the given names, e.g. commands=deploy,lint (repeatable)"
	MsgFlagExclude      = "Exclude names from a category, e.g. commands=lint (repeatable)"
	MsgFlagSkipSanitize = "Do not replace secret-like values with placeholders"
	MsgFlagForce        = "Overwrite an existing bundle"
	MsgFlagTarget       = "Directory to apply into (defaults to the source directory)"
	MsgFlagHooksMode    = "Hook merge mode: smart, replace or skip"
	MsgFlagOnConflict   = "Conflict policy: ask, overwrite, skip or rename"
	MsgFlagResolve      = "Resolve one ask-mode conflict, e.g. commands/deploy=overwrite (repeatable)"
	MsgFlagEnvFile      = "File with VAR=value lines used to restore placeholders"
	MsgFlagFrom         = "Bundle directory to update from"
	MsgFlagCheck        = "Only check whether an update is available"
	MsgFlagApply        = "Re-apply the bundle to the configuration directory after updating"
)
