package workflow

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/willhenshall/hls-transcoder/internal/jobs"
	"github.com/willhenshall/hls-transcoder/internal/logging"
	"github.com/willhenshall/hls-transcoder/internal/testsupport"
)

func TestConvertInlineReturnsPackageInBand(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	m, _ := newTestManager(t, cfg, testsupport.NewStubEncoder(2))

	result, err := m.ConvertInline(context.Background(), stageSources(t, "track.mp3")[0])
	if err != nil {
		t.Fatalf("ConvertInline: %v", err)
	}
	if result.PackageName != "track" {
		t.Fatalf("package = %q, want track", result.PackageName)
	}
	if result.SegmentCount != 6 {
		t.Fatalf("segments = %d, want 6", result.SegmentCount)
	}

	byPath := make(map[string][]byte, len(result.Files))
	for _, file := range result.Files {
		byPath[file.Path] = file.Data
	}
	for _, want := range []string{
		"track/master.m3u8",
		"track/low/playlist.m3u8",
		"track/low/segment_000.ts",
		"track/medium/segment_001.ts",
		"track/high/playlist.m3u8",
	} {
		if data, ok := byPath[want]; !ok || len(data) == 0 {
			t.Fatalf("in-band package missing %q (have %d files)", want, len(result.Files))
		}
	}
	// Staged uploads never travel back to the caller.
	for path := range byPath {
		if path == jobs.SourcesDirName+"/track.mp3" {
			t.Fatalf("in-band package leaked staged upload %q", path)
		}
	}
}

func TestConvertInlineCleansUpAfterGrace(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	m, store := newTestManager(t, cfg, testsupport.NewStubEncoder(2))

	result, err := m.ConvertInline(context.Background(), stageSources(t, "track.mp3")[0])
	if err != nil {
		t.Fatalf("ConvertInline: %v", err)
	}

	// The record exists terminal-completed until the grace delay fires.
	job, err := store.Get(context.Background(), result.JobID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if job.Status != jobs.StatusCompleted {
		t.Fatalf("status = %q, want completed", job.Status)
	}
	if job.ArchivePath != "" {
		t.Fatalf("inline job has archive path %q", job.ArchivePath)
	}

	workDir := jobs.WorkDir(cfg.Paths.WorkDir, result.JobID)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		_, getErr := store.Get(context.Background(), result.JobID)
		_, statErr := os.Stat(workDir)
		if errors.Is(getErr, jobs.ErrNotFound) && errors.Is(statErr, os.ErrNotExist) {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("inline job artifacts were not cleaned up after the grace delay")
}

func TestConvertInlineFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	encoder := testsupport.NewStubEncoder(2)
	encoder.FailInputsContaining("track", errors.New("unsupported codec"))
	m, store := newTestManager(t, cfg, encoder)

	result, err := m.ConvertInline(context.Background(), stageSources(t, "track.mp3")[0])
	if err == nil {
		t.Fatalf("ConvertInline succeeded: %+v", result)
	}

	// The failed record is also reclaimed after the grace delay.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		remaining, listErr := store.List(context.Background())
		if listErr == nil && len(remaining) == 0 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("failed inline job was not cleaned up")
}

func TestConvertInlineRequiresRunningManager(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t)
	m := NewManager(cfg, store, testsupport.NewStubEncoder(1), logging.NewNop())

	if _, err := m.ConvertInline(context.Background(), stageSources(t, "track.mp3")[0]); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("err = %v, want ErrNotRunning", err)
	}
}
