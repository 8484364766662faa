// Package archive unpacks dataset archives into session staging
// directories, fingerprints them, and locates the dataset root holding
// the six required folders.
package archive
