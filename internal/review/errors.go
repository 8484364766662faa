package review

import "errors"

// Error kinds used for status mapping across IPC and HTTP surfaces.
const (
	KindConfiguration = "configuration"
	KindEmpty         = "empty"
	KindRejected      = "rejected"
	KindNotFound      = "not_found"
)

// ErrorClassifier allows errors to declare their classification.
// Any error may implement this; callers map kinds to exit codes and
// HTTP statuses.
type ErrorClassifier interface {
	ErrorKind() string
}

// Kind extracts the classification of err, or "" when unclassified.
func Kind(err error) string {
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	return ""
}

type classified struct {
	kind string
	msg  string
}

func (e *classified) Error() string { return e.msg }

func (e *classified) ErrorKind() string { return e.kind }

var (
	// ErrNoRecords is returned for navigation or annotation against an
	// empty session.
	ErrNoRecords = &classified{kind: KindEmpty, msg: "session has no records"}
	// ErrLabelRequired rejects an annotation save without a label.
	ErrLabelRequired = &classified{kind: KindRejected, msg: "annotation label is required"}
	// ErrUnknownLabel rejects a label outside correct/wrong.
	ErrUnknownLabel = &classified{kind: KindRejected, msg: "label must be correct or wrong"}
	// ErrSessionClosed rejects operations on a torn-down session.
	ErrSessionClosed = &classified{kind: KindNotFound, msg: "session is closed"}
	// ErrSessionNotFound is returned by the daemon registry for an
	// unknown session id.
	ErrSessionNotFound = &classified{kind: KindNotFound, msg: "no such session"}
	// ErrRecordNotFound is returned for an unknown record key or a
	// missing record artifact.
	ErrRecordNotFound = &classified{kind: KindNotFound, msg: "no such record"}
)
