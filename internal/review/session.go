package review

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"postmark/internal/dataset"
	"postmark/internal/logging"
)

// Session is the in-memory state for one review workflow over one loaded
// archive: ordered records, a cursor, and the annotation store. It is
// scoped to a single caller at a time; the daemon registry serializes
// access.
type Session struct {
	ID          string
	Archive     string
	Fingerprint string
	StagingDir  string
	CreatedAt   time.Time

	index  *dataset.Index
	store  *Store
	cursor int
	closed bool
	logger *slog.Logger
}

// NewSession assembles a session over a built index. The staging
// directory (holding the extracted dataset and the annotation store) is
// owned by the session and removed on Close.
func NewSession(id, archivePath, fingerprint, stagingDir string, index *dataset.Index, store *Store, logger *slog.Logger) *Session {
	return &Session{
		ID:          id,
		Archive:     archivePath,
		Fingerprint: fingerprint,
		StagingDir:  stagingDir,
		CreatedAt:   time.Now().UTC(),
		index:       index,
		store:       store,
		logger:      logging.NewComponentLogger(logger, "review"),
	}
}

// State reports Empty for a zero-record session, Active otherwise.
func (s *Session) State() State {
	if s.index.Len() == 0 {
		return StateEmpty
	}
	return StateActive
}

// Len returns the record count.
func (s *Session) Len() int { return s.index.Len() }

// Cursor returns the current cursor position.
func (s *Session) Cursor() int { return s.cursor }

// Root returns the located dataset root.
func (s *Session) Root() string { return s.index.Root }

// Records returns the ordered record sequence.
func (s *Session) Records() []dataset.Record { return s.index.Records }

// Collisions returns the key collisions recorded during indexing.
func (s *Session) Collisions() []dataset.Collision { return s.index.Collisions }

// Annotations returns all saved annotations keyed by record key.
func (s *Session) Annotations(ctx context.Context) (map[string]Annotation, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.store.All(ctx)
}

// AnnotatedCount returns the number of annotated records.
func (s *Session) AnnotatedCount(ctx context.Context) (int, error) {
	if s.closed {
		return 0, ErrSessionClosed
	}
	return s.store.Count(ctx)
}

// Current projects the record under the cursor together with any saved
// annotation for its key. It never mutates state.
func (s *Session) Current(ctx context.Context) (View, error) {
	if s.closed {
		return View{}, ErrSessionClosed
	}
	if s.State() == StateEmpty {
		return View{}, ErrNoRecords
	}
	record := s.index.Records[s.cursor]
	annotation, err := s.store.Get(ctx, record.Key)
	if err != nil {
		return View{}, err
	}
	return View{
		Record:     record,
		Position:   s.cursor + 1,
		Total:      s.index.Len(),
		Annotation: annotation,
	}, nil
}

// Next advances the cursor cyclically and returns the new projection.
func (s *Session) Next(ctx context.Context) (View, error) {
	if s.closed {
		return View{}, ErrSessionClosed
	}
	if s.State() == StateEmpty {
		return View{}, ErrNoRecords
	}
	s.cursor = (s.cursor + 1) % s.index.Len()
	return s.Current(ctx)
}

// Prev moves the cursor back cyclically and returns the new projection.
func (s *Session) Prev(ctx context.Context) (View, error) {
	if s.closed {
		return View{}, ErrSessionClosed
	}
	if s.State() == StateEmpty {
		return View{}, ErrNoRecords
	}
	n := s.index.Len()
	s.cursor = (s.cursor - 1 + n) % n
	return s.Current(ctx)
}

// JumpTo sets the cursor to the record whose display key matches exactly
// and reports whether a match was found. A miss leaves the cursor
// unchanged and is not an error.
func (s *Session) JumpTo(ctx context.Context, key string) (View, bool, error) {
	if s.closed {
		return View{}, false, ErrSessionClosed
	}
	if s.State() == StateEmpty {
		return View{}, false, ErrNoRecords
	}
	matched := false
	for i, record := range s.index.Records {
		if record.Key == key {
			s.cursor = i
			matched = true
			break
		}
	}
	view, err := s.Current(ctx)
	return view, matched, err
}

// Annotate saves a judgment for the record under the cursor. The label
// is required; the explanation is kept only for LabelWrong and cleared
// otherwise. Saving overwrites any prior annotation for the key.
func (s *Session) Annotate(ctx context.Context, labelInput, explanation string) (Annotation, error) {
	if s.closed {
		return Annotation{}, ErrSessionClosed
	}
	if s.State() == StateEmpty {
		return Annotation{}, ErrNoRecords
	}
	if labelInput == "" {
		return Annotation{}, ErrLabelRequired
	}
	label, ok := ParseLabel(labelInput)
	if !ok {
		return Annotation{}, ErrUnknownLabel
	}
	if label != LabelWrong {
		explanation = ""
	}

	record := s.index.Records[s.cursor]
	annotation := Annotation{
		Key:         record.Key,
		Label:       label,
		Explanation: explanation,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.store.Save(ctx, annotation); err != nil {
		return Annotation{}, err
	}
	s.logger.Info("annotation saved",
		logging.String(logging.FieldSessionID, s.ID),
		logging.String(logging.FieldRecordKey, record.Key),
		logging.String("label", string(label)))
	return annotation, nil
}

// Close tears the session down: the annotation store is closed and the
// staging directory (extracted archive included) is removed. Export, if
// wanted, must happen before Close.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	if err := s.store.Close(); err != nil {
		firstErr = fmt.Errorf("close annotation store: %w", err)
	}
	if s.StagingDir != "" {
		if err := os.RemoveAll(s.StagingDir); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("remove staging directory: %w", err)
		}
	}
	s.logger.Info("session closed",
		logging.String(logging.FieldSessionID, s.ID),
		logging.String("staging_dir", s.StagingDir))
	return firstErr
}
