// Package testsupport provides shared helpers for building test configs
// and dataset directory fixtures.
package testsupport
