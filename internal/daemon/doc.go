// Package daemon hosts the review-session registry behind the IPC and
// HTTP surfaces: archive loading, session lifecycle, and the
// single-instance lock.
package daemon
