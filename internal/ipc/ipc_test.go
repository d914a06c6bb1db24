package ipc_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/willhenshall/hls-transcoder/internal/api"
	"github.com/willhenshall/hls-transcoder/internal/config"
	"github.com/willhenshall/hls-transcoder/internal/daemon"
	"github.com/willhenshall/hls-transcoder/internal/ipc"
	"github.com/willhenshall/hls-transcoder/internal/jobs"
	"github.com/willhenshall/hls-transcoder/internal/logging"
	"github.com/willhenshall/hls-transcoder/internal/testsupport"
	"github.com/willhenshall/hls-transcoder/internal/workflow"
)

func startDaemon(t *testing.T) (*config.Config, *ipc.Client) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t)
	manager := workflow.NewManager(cfg, store, testsupport.NewStubEncoder(2), logging.NewNop())

	d, err := daemon.New(cfg, store, logging.NewNop(), manager)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(d.Stop)

	server, err := ipc.NewServer(context.Background(), cfg.ResolveSocketPath(), d, logging.NewNop())
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	server.Serve()
	t.Cleanup(server.Close)

	client, err := ipc.Dial(cfg.ResolveSocketPath())
	if err != nil {
		t.Fatalf("ipc.Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return cfg, client
}

func writeUpload(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write upload: %v", err)
	}
	return path
}

func waitForTerminal(t *testing.T, client *ipc.Client, id string) api.JobStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Status(ipc.StatusRequest{JobID: id})
		if err == nil {
			switch resp.Job.Status {
			case string(jobs.StatusCompleted), string(jobs.StatusCompletedWithErrors), string(jobs.StatusFailed):
				return resp.Job
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s never finished", id)
	return api.JobStatus{}
}

func TestSubmitStatusArchiveRoundTrip(t *testing.T) {
	_, client := startDaemon(t)

	resp, err := client.Submit(ipc.SubmitRequest{Files: []ipc.SubmitFile{
		{Name: "track.mp3", Path: writeUpload(t, "track.mp3")},
	}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.JobID == "" {
		t.Fatal("empty job id")
	}

	job := waitForTerminal(t, client, resp.JobID)
	if job.Status != string(jobs.StatusCompleted) {
		t.Fatalf("status = %q, want completed (error %q)", job.Status, job.Error)
	}
	if !job.ArchiveReady {
		t.Fatal("archive not ready after completion")
	}
	if len(job.Files) != 1 || job.Files[0].SegmentCount != 6 {
		t.Fatalf("files = %+v", job.Files)
	}
	if job.CreatedAt == "" {
		t.Fatal("createdAt missing")
	}
	if ts := api.ParseTimestamp(job.CreatedAt); ts.IsZero() {
		t.Fatalf("createdAt %q unparsable", job.CreatedAt)
	}

	archive, err := client.Archive(ipc.ArchiveRequest{JobID: resp.JobID})
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if _, err := os.Stat(archive.Path); err != nil {
		t.Fatalf("archive path %q unreadable: %v", archive.Path, err)
	}

	list, err := client.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list.Jobs) != 1 || list.Jobs[0].ID != resp.JobID {
		t.Fatalf("list = %+v", list.Jobs)
	}
}

func TestStatusUnknownJob(t *testing.T) {
	_, client := startDaemon(t)

	_, err := client.Status(ipc.StatusRequest{JobID: "no-such-job"})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestArchiveBeforeCompletion(t *testing.T) {
	_, client := startDaemon(t)

	_, err := client.Archive(ipc.ArchiveRequest{JobID: "no-such-job"})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want not-found", err)
	}
}

func TestRemoveRoundTrip(t *testing.T) {
	_, client := startDaemon(t)

	resp, err := client.Submit(ipc.SubmitRequest{Files: []ipc.SubmitFile{
		{Name: "track.mp3", Path: writeUpload(t, "track.mp3")},
	}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitForTerminal(t, client, resp.JobID)

	removed, err := client.Remove(ipc.RemoveRequest{JobID: resp.JobID})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !removed.Removed {
		t.Fatal("Removed = false for existing job")
	}

	removed, err = client.Remove(ipc.RemoveRequest{JobID: resp.JobID})
	if err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if removed.Removed {
		t.Fatal("Removed = true for absent job")
	}
}

func TestConvertRoundTrip(t *testing.T) {
	_, client := startDaemon(t)

	resp, err := client.Convert(ipc.ConvertRequest{
		Name: "track.mp3",
		Path: writeUpload(t, "track.mp3"),
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if resp.PackageName != "track" {
		t.Fatalf("package = %q", resp.PackageName)
	}
	if resp.SegmentCount != 6 {
		t.Fatalf("segments = %d, want 6", resp.SegmentCount)
	}

	var sawMaster bool
	for _, file := range resp.Files {
		if len(file.Data) == 0 {
			t.Fatalf("file %q arrived empty", file.Path)
		}
		if file.Path == "track/master.m3u8" {
			sawMaster = true
			if !strings.HasPrefix(string(file.Data), "#EXTM3U") {
				t.Fatalf("master playlist content = %q", file.Data)
			}
		}
	}
	if !sawMaster {
		t.Fatalf("in-band package missing master playlist: %+v", resp.Files)
	}
}

func TestDaemonStatusRoundTrip(t *testing.T) {
	cfg, client := startDaemon(t)

	resp, err := client.DaemonStatus()
	if err != nil {
		t.Fatalf("DaemonStatus: %v", err)
	}
	if !resp.Status.Running {
		t.Fatal("Running = false")
	}
	if resp.Status.PID != os.Getpid() {
		t.Fatalf("pid = %d, want %d", resp.Status.PID, os.Getpid())
	}
	if resp.Status.SocketPath != cfg.ResolveSocketPath() {
		t.Fatalf("socket = %q", resp.Status.SocketPath)
	}
	if resp.Status.WorkDir != cfg.Paths.WorkDir {
		t.Fatalf("work dir = %q", resp.Status.WorkDir)
	}
}
