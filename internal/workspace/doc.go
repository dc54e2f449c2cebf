// Package workspace manages checkout directories for package builds, supporting
// both ephemeral (timestamped) and persistent (fixed-path) modes.
//
// Ephemeral mode creates timestamped directories (e.g., pkgbuilder-20260830-122336)
// suitable for one-off builds, cleaning up completely after use.
//
// Persistent mode uses a fixed directory path (e.g., /var/lib/pkgbuilder/src) that
// persists across builds, enabling incremental source updates instead of fresh clones.
package workspace
