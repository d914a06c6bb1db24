// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/willhenshall/hls-transcoder/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test and timings suited to fast tests.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "jobs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Workflow.MaxConcurrentJobs = 2
	cfg.Workflow.SweepIntervalSeconds = 3600
	cfg.Workflow.InlineCleanupGraceSeconds = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

// WithLadder overrides the quality ladder.
func WithLadder(ladder []config.Rung) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Ladder = ladder
	}
}
