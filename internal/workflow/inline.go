package workflow

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/willhenshall/hls-transcoder/internal/fileutil"
	"github.com/willhenshall/hls-transcoder/internal/jobs"
	"github.com/willhenshall/hls-transcoder/internal/logging"
)

// InlineFile is one produced file returned in-band by the synchronous
// mode, with its path relative to the job work dir.
type InlineFile struct {
	Path string
	Data []byte
}

// InlineResult is the synchronous mode's in-band package: the master
// playlist, every variant sub-manifest, and every segment.
type InlineResult struct {
	JobID        string
	PackageName  string
	SegmentCount int
	Files        []InlineFile
}

// ConvertInline runs the package pipeline for exactly one file and
// returns the produced files in memory instead of assembling a
// retrievable archive. The job's on-disk artifacts are deleted after a
// short grace delay rather than synchronously, so cleanup cannot race
// the response being streamed to the caller.
func (m *Manager) ConvertInline(ctx context.Context, file SubmitFile) (*InlineResult, error) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return nil, ErrNotRunning
	}
	m.mu.Unlock()

	id := uuid.NewString()
	workDir := jobs.WorkDir(m.cfg.Paths.WorkDir, id)
	logger := m.logger.With(logging.String(logging.FieldJobID, id))

	staged := filepath.Join(workDir, jobs.SourcesDirName, file.Name)
	if err := fileutil.CopyFile(file.SourcePath, staged); err != nil {
		_ = os.RemoveAll(workDir)
		return nil, fmt.Errorf("stage source %s: %w", file.Name, err)
	}
	if _, err := m.store.Create(ctx, id, []string{file.Name}); err != nil {
		_ = os.RemoveAll(workDir)
		return nil, err
	}

	// Inline conversions compete for the same admission slots as
	// background jobs.
	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		m.cleanupInline(id, workDir)
		return nil, ctx.Err()
	}
	defer func() { <-m.sem }()

	if err := m.store.MarkProcessing(ctx, id); err != nil {
		m.cleanupInline(id, workDir)
		return nil, err
	}

	processing := jobs.FileProcessing
	_ = m.store.UpdateFile(ctx, id, file.Name, jobs.FileUpdate{Status: &processing})

	result, err := m.builder.Build(ctx, file.Name, staged, workDir)
	if err != nil {
		failed := jobs.FileFailed
		message := err.Error()
		_ = m.store.UpdateFile(ctx, id, file.Name, jobs.FileUpdate{Status: &failed, ErrorMessage: &message})
		_ = m.store.Finish(ctx, id, jobs.StatusFailed, "", jobs.AllFilesFailedMessage)
		m.scheduleInlineCleanup(id, workDir)
		return nil, err
	}

	completed := jobs.FileCompleted
	_ = m.store.UpdateFile(ctx, id, file.Name, jobs.FileUpdate{
		Status:       &completed,
		PackageDir:   &result.FolderName,
		SegmentCount: &result.SegmentCount,
	})
	_ = m.store.Finish(ctx, id, jobs.StatusCompleted, "", "")

	files, err := readPackageFiles(workDir, result.FolderName)
	if err != nil {
		m.scheduleInlineCleanup(id, workDir)
		return nil, err
	}

	m.scheduleInlineCleanup(id, workDir)
	logger.Info("inline conversion complete",
		logging.String(logging.FieldFile, file.Name),
		logging.Int("segments", result.SegmentCount),
	)
	return &InlineResult{
		JobID:        id,
		PackageName:  result.FolderName,
		SegmentCount: result.SegmentCount,
		Files:        files,
	}, nil
}

func (m *Manager) cleanupInline(id, workDir string) {
	_ = m.store.Delete(context.Background(), id)
	_ = os.RemoveAll(workDir)
}

func (m *Manager) scheduleInlineCleanup(id, workDir string) {
	grace := time.Duration(m.cfg.Workflow.InlineCleanupGraceSeconds) * time.Second
	time.AfterFunc(grace, func() {
		m.cleanupInline(id, workDir)
	})
}

// readPackageFiles loads every file of the package folder into memory,
// paths relative to the job work dir so the folder name is preserved.
func readPackageFiles(workDir, folder string) ([]InlineFile, error) {
	root := filepath.Join(workDir, folder)
	var out []InlineFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(workDir, path)
		if err != nil {
			return err
		}
		out = append(out, InlineFile{Path: filepath.ToSlash(rel), Data: data})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read package files: %w", err)
	}
	return out, nil
}
