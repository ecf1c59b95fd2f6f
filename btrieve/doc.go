// Package btrieve ties the legacy-file decoder, key engine, and
// SQL-backed store into a driver facade that emulates the original
// record-manager call semantics: a single Handle per open store, tracking
// current position and the last key cursor across calls.
//
// A typical caller imports a legacy file once with ImportLegacyFile, then
// opens and operates against the resulting store with Open and the
// Handle methods.
package btrieve
