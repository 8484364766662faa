// Package ipc exposes the daemon over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management, the request/response DTOs, and the
// service that delegates calls to the daemon session registry. The server
// embeds the daemon while the client keeps dialing on a short timeout so
// CLI commands fail fast when the daemon is offline.
package ipc
