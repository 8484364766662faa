package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"postmark/internal/daemon"
	"postmark/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. The
// shutdown callback is invoked when a client requests daemon shutdown.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, shutdown func(), logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	svc := &service{daemon: d, shutdown: shutdown, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Postmark", svc); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually or rerun postmark stop"))
	}
}

type service struct {
	daemon   *daemon.Daemon
	shutdown func()
	logger   *slog.Logger
	ctx      context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String("component", "ipc"))
}

func (s *service) Load(req LoadRequest, resp *LoadResponse) error {
	s.log().Debug("session load requested", logging.String("archive", req.Archive))
	summary, err := s.daemon.LoadArchive(s.ctx, req.Archive)
	if err != nil {
		return err
	}
	resp.Session = summary
	s.log().Info("session loaded via IPC",
		logging.String(logging.FieldEventType, "session_load"),
		logging.String(logging.FieldSessionID, summary.ID))
	return nil
}

func (s *service) CloseSession(req CloseSessionRequest, resp *CloseSessionResponse) error {
	s.log().Debug("session close requested", logging.String(logging.FieldSessionID, req.SessionID))
	if err := s.daemon.CloseSession(req.SessionID); err != nil {
		return err
	}
	resp.Closed = true
	s.log().Info("session closed via IPC",
		logging.String(logging.FieldEventType, "session_close"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status, err := s.daemon.Status(s.ctx)
	if err != nil {
		return err
	}
	resp.Running = status.Running
	resp.PID = status.PID
	resp.LockPath = status.LockPath
	resp.Sessions = status.Sessions
	return nil
}

func (s *service) Current(req ViewRequest, resp *ViewResponse) error {
	view, err := s.daemon.Current(s.ctx, req.SessionID)
	if err != nil {
		return err
	}
	resp.View = view
	return nil
}

func (s *service) Next(req ViewRequest, resp *ViewResponse) error {
	view, err := s.daemon.Next(s.ctx, req.SessionID)
	if err != nil {
		return err
	}
	resp.View = view
	return nil
}

func (s *service) Prev(req ViewRequest, resp *ViewResponse) error {
	view, err := s.daemon.Prev(s.ctx, req.SessionID)
	if err != nil {
		return err
	}
	resp.View = view
	return nil
}

func (s *service) Goto(req GotoRequest, resp *GotoResponse) error {
	view, matched, err := s.daemon.JumpTo(s.ctx, req.SessionID, req.Key)
	if err != nil {
		return err
	}
	resp.View = view
	resp.Matched = matched
	return nil
}

func (s *service) Annotate(req AnnotateRequest, resp *ViewResponse) error {
	view, err := s.daemon.Annotate(s.ctx, req.SessionID, req.Label, req.Explanation)
	if err != nil {
		return err
	}
	resp.View = view
	return nil
}

func (s *service) Keys(req KeysRequest, resp *KeysResponse) error {
	keys, err := s.daemon.Keys(req.SessionID)
	if err != nil {
		return err
	}
	resp.Keys = keys
	return nil
}

func (s *service) Collisions(req CollisionsRequest, resp *CollisionsResponse) error {
	collisions, err := s.daemon.Collisions(req.SessionID)
	if err != nil {
		return err
	}
	resp.Collisions = collisions
	return nil
}

func (s *service) Export(req ExportRequest, resp *ExportResponse) error {
	path, rows, err := s.daemon.ExportFile(s.ctx, req.SessionID, req.Path)
	if err != nil {
		return err
	}
	resp.Path = path
	resp.Rows = rows
	return nil
}

func (s *service) Shutdown(_ ShutdownRequest, resp *ShutdownResponse) error {
	s.log().Info("daemon shutdown requested via IPC",
		logging.String(logging.FieldEventType, "daemon_shutdown"))
	if s.shutdown != nil {
		s.shutdown()
	}
	resp.Stopped = true
	return nil
}
