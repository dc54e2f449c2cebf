// Package recipe defines the packaging descriptor format: package metadata,
// a git source, dependency declarations, build steps, and install artifacts.
//
// Recipes are yaml documents. Loading expands environment variables in the
// raw document, applies defaults (auto version policy, "v" tag prefix,
// 0755/0644 artifact modes by kind), and validates structure before use.
package recipe
