// Package gitsrc fetches package sources with go-git and describes checkout
// state (nearest tag, distance, abbreviated hash, commit count) for version
// derivation. Transient fetch failures are retried according to the
// configured backoff policy; auth, not-found, and protocol errors are
// classified as permanent.
package gitsrc
