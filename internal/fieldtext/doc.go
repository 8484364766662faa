// Package fieldtext resolves per-record text artifacts with encoding
// fallback and sentinel-for-missing semantics.
package fieldtext
