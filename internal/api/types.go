package api

import "time"

// SessionSummary describes one review session for status displays.
type SessionSummary struct {
	ID          string    `json:"id"`
	Archive     string    `json:"archive"`
	Fingerprint string    `json:"fingerprint"`
	Root        string    `json:"root"`
	State       string    `json:"state"`
	Records     int       `json:"records"`
	Annotated   int       `json:"annotated"`
	Collisions  int       `json:"collisions"`
	Cursor      int       `json:"cursor"`
	CreatedAt   time.Time `json:"created_at"`
	Current     bool      `json:"current"`
}

// RecordView is the displayed projection of one record: artifact paths,
// text fields resolved through the field reader, and any annotation.
type RecordView struct {
	Key      string `json:"key"`
	Position int    `json:"position"`
	Total    int    `json:"total"`
	Header   string `json:"header"`

	Image        string `json:"image,omitempty"`
	PostcodeCrop string `json:"postcode_crop,omitempty"`
	ReceiverCrop string `json:"receiver_crop,omitempty"`

	Postcode string `json:"postcode"`
	Words    string `json:"words"`
	Region   string `json:"region"`

	Annotated   bool   `json:"annotated"`
	Label       string `json:"label,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

// Collision reports a case-insensitive key collapse found during indexing.
type Collision struct {
	Key      string   `json:"key"`
	Survivor string   `json:"survivor"`
	Shadowed []string `json:"shadowed"`
}

// DaemonStatus is the combined daemon and session-registry status.
type DaemonStatus struct {
	Running  bool             `json:"running"`
	PID      int              `json:"pid"`
	LockPath string           `json:"lock_path"`
	Sessions []SessionSummary `json:"sessions"`
}
