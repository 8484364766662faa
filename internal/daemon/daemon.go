package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"postmark/internal/api"
	"postmark/internal/archive"
	"postmark/internal/config"
	"postmark/internal/dataset"
	"postmark/internal/export"
	"postmark/internal/logging"
	"postmark/internal/review"
)

// Daemon owns the review-session registry and enforces single-instance
// execution. Sessions are created by LoadArchive and torn down by
// CloseSession or daemon shutdown.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock
	running  atomic.Bool

	mu       sync.Mutex
	sessions map[string]*review.Session
	current  string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		sessions: map[string]*review.Session{},
	}, nil
}

// Start acquires the daemon lock.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another postmark daemon instance is already running")
	}
	d.running.Store(true)
	d.logger.Info("postmark daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("postmark daemon stopped")
}

// Close tears down every session (releasing its staging storage) and
// stops the daemon.
func (d *Daemon) Close() error {
	d.mu.Lock()
	sessions := make([]*review.Session, 0, len(d.sessions))
	for _, s := range d.sessions {
		sessions = append(sessions, s)
	}
	d.sessions = map[string]*review.Session{}
	d.current = ""
	d.mu.Unlock()

	var firstErr error
	for _, s := range sessions {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	d.Stop()
	return firstErr
}

// Running reports whether the daemon holds its lock.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status summarizes the daemon and every open session.
func (d *Daemon) Status(ctx context.Context) (api.DaemonStatus, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	summaries := make([]api.SessionSummary, 0, len(d.sessions))
	for id, session := range d.sessions {
		summary, err := api.NewSessionSummary(ctx, session, id == d.current)
		if err != nil {
			return api.DaemonStatus{}, err
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return api.DaemonStatus{
		Running:  d.running.Load(),
		PID:      os.Getpid(),
		LockPath: d.lockPath,
		Sessions: summaries,
	}, nil
}

// LoadArchive unpacks the archive at path into a fresh staging
// directory, locates the dataset root, builds the record index, and
// registers the resulting session as current.
func (d *Daemon) LoadArchive(ctx context.Context, archivePath string) (api.SessionSummary, error) {
	absPath, err := filepath.Abs(archivePath)
	if err != nil {
		return api.SessionSummary{}, fmt.Errorf("resolve archive path: %w", err)
	}

	fingerprint, err := archive.Fingerprint(absPath)
	if err != nil {
		return api.SessionSummary{}, err
	}
	d.warnDuplicateLoad(absPath, fingerprint)

	id := uuid.NewString()
	stagingDir := filepath.Join(d.cfg.Paths.StagingDir, id)
	maxBytes := int64(d.cfg.Review.MaxArchiveMiB) << 20

	if err := archive.Unpack(absPath, stagingDir, maxBytes, d.logger); err != nil {
		_ = os.RemoveAll(stagingDir)
		return api.SessionSummary{}, err
	}

	root, err := archive.Locate(stagingDir)
	if err != nil {
		_ = os.RemoveAll(stagingDir)
		return api.SessionSummary{}, err
	}

	index := dataset.BuildIndex(root, d.logger)
	store, err := review.OpenStore(stagingDir)
	if err != nil {
		_ = os.RemoveAll(stagingDir)
		return api.SessionSummary{}, err
	}

	session := review.NewSession(id, absPath, fingerprint, stagingDir, index, store, d.logger)

	d.mu.Lock()
	d.sessions[id] = session
	d.current = id
	d.mu.Unlock()

	d.logger.Info("session loaded",
		logging.String(logging.FieldSessionID, id),
		logging.String("archive", absPath),
		logging.Int("records", session.Len()),
		logging.String("state", string(session.State())))

	return api.NewSessionSummary(ctx, session, true)
}

func (d *Daemon) warnDuplicateLoad(archivePath, fingerprint string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, session := range d.sessions {
		if session.Fingerprint == fingerprint {
			d.logger.Warn("archive already loaded in another session",
				logging.String("archive", archivePath),
				logging.String(logging.FieldSessionID, session.ID),
				logging.String(logging.FieldEventType, "duplicate_archive_load"),
				logging.String(logging.FieldErrorHint, "close the earlier session if this was unintended"))
			return
		}
	}
}

// CloseSession tears down one session and releases its staging storage.
func (d *Daemon) CloseSession(id string) error {
	d.mu.Lock()
	session, resolved, err := d.lookupLocked(id)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	delete(d.sessions, resolved)
	if d.current == resolved {
		d.current = ""
	}
	d.mu.Unlock()
	return session.Close()
}

// Session resolves id to an open session. An empty id (or "current")
// means the most recently loaded session.
func (d *Daemon) Session(id string) (*review.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	session, _, err := d.lookupLocked(id)
	return session, err
}

func (d *Daemon) lookupLocked(id string) (*review.Session, string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" || trimmed == "current" {
		trimmed = d.current
	}
	if trimmed == "" {
		return nil, "", review.ErrSessionNotFound
	}
	session, ok := d.sessions[trimmed]
	if !ok {
		return nil, "", review.ErrSessionNotFound
	}
	return session, trimmed, nil
}

// Current returns the displayed projection of the cursor record.
func (d *Daemon) Current(ctx context.Context, id string) (api.RecordView, error) {
	return d.project(id, func(s *review.Session) (review.View, error) { return s.Current(ctx) })
}

// Next advances the cursor cyclically.
func (d *Daemon) Next(ctx context.Context, id string) (api.RecordView, error) {
	return d.project(id, func(s *review.Session) (review.View, error) { return s.Next(ctx) })
}

// Prev moves the cursor back cyclically.
func (d *Daemon) Prev(ctx context.Context, id string) (api.RecordView, error) {
	return d.project(id, func(s *review.Session) (review.View, error) { return s.Prev(ctx) })
}

// JumpTo moves the cursor to an exact display key match and reports
// whether the key matched a record.
func (d *Daemon) JumpTo(ctx context.Context, id, key string) (api.RecordView, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	session, _, err := d.lookupLocked(id)
	if err != nil {
		return api.RecordView{}, false, err
	}
	view, matched, err := session.JumpTo(ctx, key)
	if err != nil {
		return api.RecordView{}, false, err
	}
	return api.NewRecordView(view), matched, nil
}

// Annotate saves a judgment for the cursor record and returns the
// refreshed projection.
func (d *Daemon) Annotate(ctx context.Context, id, label, explanation string) (api.RecordView, error) {
	return d.project(id, func(s *review.Session) (review.View, error) {
		if _, err := s.Annotate(ctx, label, explanation); err != nil {
			return review.View{}, err
		}
		return s.Current(ctx)
	})
}

func (d *Daemon) project(id string, op func(*review.Session) (review.View, error)) (api.RecordView, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	session, _, err := d.lookupLocked(id)
	if err != nil {
		return api.RecordView{}, err
	}
	view, err := op(session)
	if err != nil {
		return api.RecordView{}, err
	}
	return api.NewRecordView(view), nil
}

// Keys returns the display keys of a session in index order.
func (d *Daemon) Keys(id string) ([]string, error) {
	session, err := d.Session(id)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, session.Len())
	for _, record := range session.Records() {
		keys = append(keys, record.Key)
	}
	return keys, nil
}

// Collisions returns the key collisions recorded while indexing.
func (d *Daemon) Collisions(id string) ([]api.Collision, error) {
	session, err := d.Session(id)
	if err != nil {
		return nil, err
	}
	return api.NewCollisions(session.Collisions()), nil
}

// ExportTo streams the session's CSV dump to w.
func (d *Daemon) ExportTo(ctx context.Context, id string, w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	session, _, err := d.lookupLocked(id)
	if err != nil {
		return err
	}
	annotations, err := session.Annotations(ctx)
	if err != nil {
		return err
	}
	return export.Write(w, session.Records(), annotations)
}

// ExportFile writes the session's CSV dump under the export directory
// (or to outPath when given) and returns the path and row count.
func (d *Daemon) ExportFile(ctx context.Context, id, outPath string) (string, int, error) {
	d.mu.Lock()
	session, _, err := d.lookupLocked(id)
	if err != nil {
		d.mu.Unlock()
		return "", 0, err
	}
	d.mu.Unlock()

	if outPath == "" {
		stem := dataset.Stem(session.Archive)
		if stem == "" {
			stem = "session"
		}
		name := fmt.Sprintf("%s-%s.csv", stem, time.Now().UTC().Format("20060102T150405Z"))
		outPath = filepath.Join(d.cfg.Paths.ExportDir, name)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", 0, fmt.Errorf("create export directory: %w", err)
	}
	file, err := os.Create(outPath)
	if err != nil {
		return "", 0, fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	if err := d.ExportTo(ctx, id, file); err != nil {
		_ = os.Remove(outPath)
		return "", 0, err
	}
	if err := file.Close(); err != nil {
		return "", 0, fmt.Errorf("flush export file: %w", err)
	}

	d.logger.Info("annotations exported",
		logging.String(logging.FieldSessionID, session.ID),
		logging.String("path", outPath),
		logging.Int("rows", session.Len()))
	return outPath, session.Len(), nil
}

// Artifact resolves the on-disk path of a record's image artifact for
// streaming. Kind is one of image, postcode_crop, receiver_crop.
func (d *Daemon) Artifact(id, key, kind string) (string, error) {
	session, err := d.Session(id)
	if err != nil {
		return "", err
	}
	for _, record := range session.Records() {
		if record.Key != key {
			continue
		}
		var path string
		switch kind {
		case "image":
			path = record.Image
		case "postcode_crop":
			path = record.PostcodeCrop
		case "receiver_crop":
			path = record.ReceiverCrop
		default:
			return "", fmt.Errorf("unknown artifact kind %q", kind)
		}
		if path == "" {
			return "", review.ErrRecordNotFound
		}
		return path, nil
	}
	return "", review.ErrRecordNotFound
}
