// Package api defines the DTOs shared by the IPC and HTTP surfaces and
// their conversions from the review domain types.
package api
