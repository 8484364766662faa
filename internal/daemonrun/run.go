package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"postmark/internal/config"
	"postmark/internal/daemon"
	"postmark/internal/ipc"
	"postmark/internal/logging"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the postmark daemon runtime loop: logger, stale staging
// cleanup, session registry, IPC socket, and the optional HTTP API. It
// blocks until a signal arrives or a client requests shutdown.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("postmarkd-%s.log", runID))
	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update postmarkd.log link: %v\n", err)
	}

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	cleanupStaleStaging(logger, cfg)

	d, err := daemon.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, cancel, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	apiServer := daemon.NewAPIServer(cfg, d, logger)
	if apiServer != nil {
		if err := apiServer.Start(signalCtx); err != nil {
			return fmt.Errorf("start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	if err := d.Start(signalCtx); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	<-signalCtx.Done()
	logger.Info("postmark daemon shutting down")
	return nil
}

// cleanupStaleStaging removes staging leftovers from crashed runs.
// Sessions from this run always clean up after themselves; anything
// older than the configured horizon is an orphan.
func cleanupStaleStaging(logger *slog.Logger, cfg *config.Config) {
	horizon := time.Duration(cfg.Review.StaleSessionHours) * time.Hour
	if horizon <= 0 {
		return
	}
	entries, err := os.ReadDir(cfg.Paths.StagingDir)
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-horizon)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(cfg.Paths.StagingDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logger.Warn("failed to remove stale staging directory",
				logging.String("path", path),
				logging.Error(err))
			continue
		}
		logger.Info("removed stale staging directory",
			logging.String("path", path),
			logging.String(logging.FieldEventType, "stale_staging_removed"))
	}
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "postmarkd.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
