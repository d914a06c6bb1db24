// Command hlstd runs the transcode daemon: it owns the job store, the
// workflow manager, the expiry sweep, and the control socket.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/willhenshall/hls-transcoder/internal/config"
	"github.com/willhenshall/hls-transcoder/internal/daemon"
	"github.com/willhenshall/hls-transcoder/internal/ipc"
	"github.com/willhenshall/hls-transcoder/internal/jobs"
	"github.com/willhenshall/hls-transcoder/internal/logging"
	"github.com/willhenshall/hls-transcoder/internal/services/ffmpeg"
	"github.com/willhenshall/hls-transcoder/internal/workflow"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:    cfg.Logging.Level,
		Format:   cfg.Logging.Format,
		FilePath: cfg.LogFilePath(),
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := jobs.Open()
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return
	}

	encoder := ffmpeg.NewCLI(
		ffmpeg.WithBinary(cfg.FFmpeg.Binary),
		ffmpeg.WithStderrTail(cfg.FFmpeg.StderrTailLines),
	)
	manager := workflow.NewManager(cfg, store, encoder, logger)

	d, err := daemon.New(cfg, store, logger, manager)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, cfg.ResolveSocketPath(), d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		return
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("hlstd shutting down")
}
