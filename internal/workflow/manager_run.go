package workflow

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/willhenshall/hls-transcoder/internal/jobs"
	"github.com/willhenshall/hls-transcoder/internal/logging"
)

// runJob drives one job through the pipeline: admission slot, the
// sequential file loop, then archiving and the terminal transition.
func (m *Manager) runJob(ctx context.Context, id, workDir string, names []string) {
	logger := m.logger.With(logging.String(logging.FieldJobID, id))

	// Admission: the job stays pending until a slot frees, bounding
	// how many encoder processes run at once.
	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-m.sem }()

	if err := m.store.MarkProcessing(ctx, id); err != nil {
		logger.Warn("failed to mark job processing", logging.Error(err))
		return
	}

	for _, name := range names {
		if ctx.Err() != nil {
			return
		}
		m.processFile(ctx, id, workDir, name, logger)
	}
	if ctx.Err() != nil {
		return
	}

	m.finishJob(ctx, id, workDir, logger)
}

// processFile runs the package build for one file and records the
// outcome. A failure here never aborts the remaining files; partial
// success is the product, not an error condition.
func (m *Manager) processFile(ctx context.Context, id, workDir, name string, logger *slog.Logger) {
	processing := jobs.FileProcessing
	if err := m.store.UpdateFile(ctx, id, name, jobs.FileUpdate{Status: &processing}); err != nil {
		logger.Warn("failed to mark file processing", logging.Args(
			logging.String(logging.FieldFile, name), logging.Error(err))...)
		return
	}

	source := filepath.Join(workDir, jobs.SourcesDirName, name)
	result, err := m.builder.Build(ctx, name, source, workDir)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return
		}
		failed := jobs.FileFailed
		message := err.Error()
		if updateErr := m.store.UpdateFile(ctx, id, name, jobs.FileUpdate{
			Status:       &failed,
			ErrorMessage: &message,
		}); updateErr != nil {
			logger.Warn("failed to record file failure", logging.Args(
				logging.String(logging.FieldFile, name), logging.Error(updateErr))...)
		}
		logger.Warn("file transcode failed", logging.Args(
			logging.String(logging.FieldFile, name), logging.Error(err))...)
		return
	}

	completed := jobs.FileCompleted
	if err := m.store.UpdateFile(ctx, id, name, jobs.FileUpdate{
		Status:       &completed,
		PackageDir:   &result.FolderName,
		SegmentCount: &result.SegmentCount,
	}); err != nil {
		logger.Warn("failed to record file completion", logging.Args(
			logging.String(logging.FieldFile, name), logging.Error(err))...)
	}
}

// finishJob settles the terminal status from the authoritative store
// snapshot and assembles the bundle when at least one file succeeded.
func (m *Manager) finishJob(ctx context.Context, id, workDir string, logger *slog.Logger) {
	job, err := m.store.Get(ctx, id)
	if err != nil {
		// Deleted mid-run; nothing to settle.
		if !errors.Is(err, jobs.ErrNotFound) {
			logger.Warn("failed to load job for settlement", logging.Error(err))
		}
		return
	}

	folders := make([]string, 0, len(job.Files))
	failed := 0
	for _, file := range job.Files {
		switch file.Status {
		case jobs.FileCompleted:
			folders = append(folders, file.PackageDir)
		case jobs.FileFailed:
			failed++
		}
	}

	if len(folders) == 0 {
		if err := m.store.Finish(ctx, id, jobs.StatusFailed, "", jobs.AllFilesFailedMessage); err != nil {
			logger.Warn("failed to settle job", logging.Error(err))
		}
		logger.Info("job failed", logging.Int("files_failed", failed))
		return
	}

	archivePath := filepath.Join(workDir, jobs.BundleName)
	if err := assemble(archivePath, workDir, folders); err != nil {
		// The deliverable is the bundle: archive failure fails the
		// job even though individual files transcoded.
		if finishErr := m.store.Finish(ctx, id, jobs.StatusFailed, "", err.Error()); finishErr != nil {
			logger.Warn("failed to settle job", logging.Error(finishErr))
		}
		logger.Warn("archive assembly failed", logging.Error(err))
		return
	}

	status := jobs.StatusCompleted
	if failed > 0 {
		status = jobs.StatusCompletedWithErrors
	}
	if err := m.store.Finish(ctx, id, status, archivePath, ""); err != nil {
		logger.Warn("failed to settle job", logging.Error(err))
		return
	}
	logger.Info("job finished",
		logging.String("status", string(status)),
		logging.Int("files_completed", len(folders)),
		logging.Int("files_failed", failed),
	)
}
