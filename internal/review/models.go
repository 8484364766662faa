package review

import (
	"strings"
	"time"

	"postmark/internal/dataset"
)

// Label is a reviewer's judgment on one record.
type Label string

const (
	LabelCorrect Label = "correct"
	LabelWrong   Label = "wrong"
)

// ParseLabel converts user input into a known Label, case-insensitively.
func ParseLabel(value string) (Label, bool) {
	switch Label(strings.ToLower(strings.TrimSpace(value))) {
	case LabelCorrect:
		return LabelCorrect, true
	case LabelWrong:
		return LabelWrong, true
	default:
		return "", false
	}
}

// Annotation is one saved judgment. Explanation is meaningful only for
// LabelWrong; Annotate clears it for any other label.
type Annotation struct {
	Key         string
	Label       Label
	Explanation string
	UpdatedAt   time.Time
}

// State describes whether a session has records to review.
type State string

const (
	// StateEmpty is terminal: navigation and annotation are rejected.
	StateEmpty State = "empty"
	// StateActive means the cursor is valid and all operations apply.
	StateActive State = "active"
)

// View is the pure projection of the record under the cursor combined
// with any annotation saved for its key.
type View struct {
	Record     dataset.Record
	Position   int // 1-based
	Total      int
	Annotation *Annotation
}
