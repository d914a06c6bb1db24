package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"github.com/willhenshall/hls-transcoder/internal/api"
	"github.com/willhenshall/hls-transcoder/internal/daemon"
	"github.com/willhenshall/hls-transcoder/internal/logging"
	"github.com/willhenshall/hls-transcoder/internal/workflow"
)

// ServiceName is the RPC receiver name clients call methods on.
const ServiceName = "Transcoder"

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
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
	srv := &service{daemon: d, ctx: ctx}
	if err := rpcServer.RegisterName(ServiceName, srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logging.WithComponent(logger, "ipc"),
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
				s.logger.Warn("accept failed", logging.Error(err))
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
		)
	}
}

type service struct {
	daemon *daemon.Daemon
	ctx    context.Context
}

func (s *service) Submit(req SubmitRequest, resp *SubmitResponse) error {
	files := make([]workflow.SubmitFile, 0, len(req.Files))
	for _, file := range req.Files {
		files = append(files, workflow.SubmitFile{Name: file.Name, SourcePath: file.Path})
	}
	id, err := s.daemon.Workflow().Submit(s.ctx, files)
	if err != nil {
		return err
	}
	resp.JobID = id
	return nil
}

func (s *service) Status(req StatusRequest, resp *StatusResponse) error {
	job, err := s.daemon.Workflow().Status(s.ctx, req.JobID)
	if err != nil {
		return err
	}
	resp.Job = api.JobFromStore(job)
	return nil
}

func (s *service) List(_ ListRequest, resp *ListResponse) error {
	snapshots, err := s.daemon.Workflow().List(s.ctx)
	if err != nil {
		return err
	}
	resp.Jobs = make([]api.JobStatus, 0, len(snapshots))
	for _, job := range snapshots {
		resp.Jobs = append(resp.Jobs, api.JobFromStore(job))
	}
	return nil
}

func (s *service) Remove(req RemoveRequest, resp *RemoveResponse) error {
	removed, err := s.daemon.Workflow().Remove(s.ctx, req.JobID)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) Archive(req ArchiveRequest, resp *ArchiveResponse) error {
	path, err := s.daemon.Workflow().ResolveArchive(s.ctx, req.JobID)
	if err != nil {
		return err
	}
	resp.Path = path
	return nil
}

func (s *service) Convert(req ConvertRequest, resp *ConvertResponse) error {
	result, err := s.daemon.Workflow().ConvertInline(s.ctx, workflow.SubmitFile{
		Name:       req.Name,
		SourcePath: req.Path,
	})
	if err != nil {
		return err
	}
	resp.JobID = result.JobID
	resp.PackageName = result.PackageName
	resp.SegmentCount = result.SegmentCount
	resp.Files = make([]InlineFile, 0, len(result.Files))
	for _, file := range result.Files {
		resp.Files = append(resp.Files, InlineFile{Path: file.Path, Data: file.Data})
	}
	return nil
}

func (s *service) DaemonStatus(_ DaemonStatusRequest, resp *DaemonStatusResponse) error {
	status, err := s.daemon.Status(s.ctx)
	if err != nil {
		return err
	}
	resp.Status = status
	return nil
}
