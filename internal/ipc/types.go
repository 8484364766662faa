package ipc

import "postmark/internal/api"

// SessionSummary mirrors the HTTP API session DTO for IPC callers.
type SessionSummary = api.SessionSummary

// RecordView mirrors the HTTP API record DTO for IPC callers.
type RecordView = api.RecordView

// Collision mirrors the HTTP API collision DTO for IPC callers.
type Collision = api.Collision

// LoadRequest opens a review session over a dataset archive.
type LoadRequest struct {
	Archive string `json:"archive"`
}

// LoadResponse returns the created session.
type LoadResponse struct {
	Session SessionSummary `json:"session"`
}

// CloseSessionRequest tears down one session. Empty SessionID means the
// current session.
type CloseSessionRequest struct {
	SessionID string `json:"session_id"`
}

// CloseSessionResponse indicates teardown completed.
type CloseSessionResponse struct {
	Closed bool `json:"closed"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents combined daemon and session-registry status.
type StatusResponse struct {
	Running  bool             `json:"running"`
	PID      int              `json:"pid"`
	LockPath string           `json:"lock_path"`
	Sessions []SessionSummary `json:"sessions"`
}

// ViewRequest addresses one session for a record projection. Empty
// SessionID means the current session.
type ViewRequest struct {
	SessionID string `json:"session_id"`
}

// ViewResponse returns the projected record under the cursor.
type ViewResponse struct {
	View RecordView `json:"view"`
}

// GotoRequest moves the cursor to an exact record key.
type GotoRequest struct {
	SessionID string `json:"session_id"`
	Key       string `json:"key"`
}

// GotoResponse returns the projection after a jump and whether the
// requested key matched a record.
type GotoResponse struct {
	View    RecordView `json:"view"`
	Matched bool       `json:"matched"`
}

// AnnotateRequest saves a judgment for the cursor record.
type AnnotateRequest struct {
	SessionID   string `json:"session_id"`
	Label       string `json:"label"`
	Explanation string `json:"explanation"`
}

// KeysRequest lists record keys of a session.
type KeysRequest struct {
	SessionID string `json:"session_id"`
}

// KeysResponse returns record keys in index order.
type KeysResponse struct {
	Keys []string `json:"keys"`
}

// CollisionsRequest lists key collisions recorded while indexing.
type CollisionsRequest struct {
	SessionID string `json:"session_id"`
}

// CollisionsResponse returns the recorded collisions.
type CollisionsResponse struct {
	Collisions []Collision `json:"collisions"`
}

// ExportRequest writes the session's CSV dump. Empty Path means a
// generated file under the export directory.
type ExportRequest struct {
	SessionID string `json:"session_id"`
	Path      string `json:"path"`
}

// ExportResponse reports where the dump landed.
type ExportResponse struct {
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

// ShutdownRequest stops the daemon process.
type ShutdownRequest struct{}

// ShutdownResponse indicates shutdown was initiated.
type ShutdownResponse struct {
	Stopped bool `json:"stopped"`
}
