// Package dataset builds the record-correlation index over a postal OCR
// dataset root: one Record per primary envelope scan, with crops and
// text artifacts resolved across the six parallel folders.
package dataset
