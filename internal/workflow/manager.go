package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/willhenshall/hls-transcoder/internal/archive"
	"github.com/willhenshall/hls-transcoder/internal/config"
	"github.com/willhenshall/hls-transcoder/internal/fileutil"
	"github.com/willhenshall/hls-transcoder/internal/jobs"
	"github.com/willhenshall/hls-transcoder/internal/logging"
	"github.com/willhenshall/hls-transcoder/internal/packaging"
	"github.com/willhenshall/hls-transcoder/internal/services/ffmpeg"
)

// assemble is swapped in tests to exercise archive failure paths.
var assemble = archive.Assemble

// SubmitFile is one source file in a submission: its original name and
// the local path to read it from.
type SubmitFile struct {
	Name       string
	SourcePath string
}

// Manager coordinates job processing.
type Manager struct {
	cfg     *config.Config
	store   *jobs.Store
	logger  *slog.Logger
	builder *packaging.Builder

	sem chan struct{}

	mu         sync.Mutex
	running    bool
	baseCtx    context.Context
	cancel     context.CancelFunc
	jobCancels map[string]context.CancelFunc
	wg         sync.WaitGroup
}

// NewManager constructs a workflow manager.
func NewManager(cfg *config.Config, store *jobs.Store, client ffmpeg.Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:        cfg,
		store:      store,
		logger:     logging.WithComponent(logger, "workflow"),
		builder:    packaging.NewBuilder(cfg, client, logger),
		sem:        make(chan struct{}, cfg.Workflow.MaxConcurrentJobs),
		jobCancels: make(map[string]context.CancelFunc),
	}
}

// Start begins background processing, including the expiry sweep.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow already running")
	}
	if err := m.cfg.EnsureDirectories(); err != nil {
		return err
	}

	m.baseCtx, m.cancel = context.WithCancel(ctx)
	m.running = true

	m.wg.Add(1)
	go m.sweepLoop(m.baseCtx)
	return nil
}

// Stop terminates background processing and waits for in-flight jobs to
// observe cancellation.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

// Submit creates a job for the given files, stages their content into
// the job's private work dir, and starts background processing. It
// returns the job id immediately; progress is observed by polling.
func (m *Manager) Submit(ctx context.Context, files []SubmitFile) (string, error) {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return "", ErrNotRunning
	}
	baseCtx := m.baseCtx
	m.mu.Unlock()

	if len(files) == 0 {
		return "", errors.New("submission requires at least one file")
	}

	id := uuid.NewString()
	workDir := jobs.WorkDir(m.cfg.Paths.WorkDir, id)
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}

	for _, file := range files {
		staged := filepath.Join(workDir, jobs.SourcesDirName, file.Name)
		if err := fileutil.CopyFile(file.SourcePath, staged); err != nil {
			_ = os.RemoveAll(workDir)
			return "", fmt.Errorf("stage source %s: %w", file.Name, err)
		}
	}

	if _, err := m.store.Create(ctx, id, names); err != nil {
		_ = os.RemoveAll(workDir)
		return "", err
	}

	jobCtx, cancel := context.WithCancel(baseCtx)
	m.mu.Lock()
	m.jobCancels[id] = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.clearJobCancel(id)
		m.runJob(jobCtx, id, workDir, names)
	}()

	m.logger.Info("job submitted",
		logging.String(logging.FieldJobID, id),
		logging.Int("files", len(names)),
	)
	return id, nil
}

// Status returns the job snapshot.
func (m *Manager) Status(ctx context.Context, id string) (*jobs.Job, error) {
	return m.store.Get(ctx, id)
}

// List returns snapshots of all jobs.
func (m *Manager) List(ctx context.Context) ([]*jobs.Job, error) {
	return m.store.List(ctx)
}

// Remove cancels a running job, deletes its record, and removes its
// work dir. The first return value reports whether the job existed.
func (m *Manager) Remove(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	if cancel, ok := m.jobCancels[id]; ok {
		cancel()
		delete(m.jobCancels, id)
	}
	m.mu.Unlock()

	existed := true
	if _, err := m.store.Get(ctx, id); err != nil {
		if !errors.Is(err, jobs.ErrNotFound) {
			return false, err
		}
		existed = false
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return existed, err
	}
	if err := os.RemoveAll(jobs.WorkDir(m.cfg.Paths.WorkDir, id)); err != nil {
		return existed, fmt.Errorf("remove work dir: %w", err)
	}
	if existed {
		m.logger.Info("job removed", logging.String(logging.FieldJobID, id))
	}
	return existed, nil
}

// ResolveArchive returns the archive path for a job that has reached a
// success state and whose bundle is still present on disk.
func (m *Manager) ResolveArchive(ctx context.Context, id string) (string, error) {
	job, err := m.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !job.Status.Succeeded() || job.ArchivePath == "" {
		return "", fmt.Errorf("%w: job %s is %s", ErrArchiveNotReady, id, job.Status)
	}
	if _, err := os.Stat(job.ArchivePath); err != nil {
		return "", fmt.Errorf("%w: bundle missing on disk", ErrArchiveNotReady)
	}
	return job.ArchivePath, nil
}

func (m *Manager) clearJobCancel(id string) {
	m.mu.Lock()
	if cancel, ok := m.jobCancels[id]; ok {
		cancel()
		delete(m.jobCancels, id)
	}
	m.mu.Unlock()
}

func (m *Manager) cancelJobLocked(id string) {
	if cancel, ok := m.jobCancels[id]; ok {
		cancel()
		delete(m.jobCancels, id)
	}
}

func (m *Manager) sweepLoop(ctx context.Context) {
	defer m.wg.Done()

	interval := time.Duration(m.cfg.Workflow.SweepIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.SweepNow(ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.logger.Warn("expiry sweep failed", logging.Error(err))
			}
		}
	}
}

// SweepNow deletes every job older than the configured TTL, cancelling
// any that are still running and removing their work dirs. Age is
// measured from creation, so a slow job can be evicted mid-flight; its
// run loop observes the cancelled context and stops without writing
// back.
func (m *Manager) SweepNow(ctx context.Context) error {
	ttl := time.Duration(m.cfg.Workflow.JobTTLMinutes) * time.Minute
	removed, err := m.store.Sweep(ctx, ttl)
	if err != nil {
		return err
	}
	for _, job := range removed {
		m.mu.Lock()
		m.cancelJobLocked(job.ID)
		m.mu.Unlock()

		workDir := jobs.WorkDir(m.cfg.Paths.WorkDir, job.ID)
		if err := os.RemoveAll(workDir); err != nil {
			m.logger.Warn("failed to remove expired job dir",
				logging.String(logging.FieldJobID, job.ID),
				logging.Error(err),
			)
			continue
		}
		m.logger.Info("expired job evicted",
			logging.String(logging.FieldJobID, job.ID),
			logging.String("status", string(job.Status)),
		)
	}
	return nil
}
