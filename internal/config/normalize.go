package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeFFmpeg()
	c.normalizeLadder()
	c.normalizeWorkflow()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) != "" {
		if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
			return fmt.Errorf("paths.socket_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	if c.FFmpeg.SegmentSeconds <= 0 {
		c.FFmpeg.SegmentSeconds = defaultSegmentSeconds
	}
	if c.FFmpeg.SampleRate <= 0 {
		c.FFmpeg.SampleRate = defaultSampleRate
	}
	if c.FFmpeg.Channels <= 0 {
		c.FFmpeg.Channels = defaultChannels
	}
	if c.FFmpeg.StderrTailLines <= 0 {
		c.FFmpeg.StderrTailLines = defaultStderrTailLines
	}
}

func (c *Config) normalizeLadder() {
	if len(c.Ladder) == 0 {
		c.Ladder = DefaultLadder()
		return
	}
	for i := range c.Ladder {
		c.Ladder[i].Label = strings.TrimSpace(c.Ladder[i].Label)
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.MaxConcurrentJobs <= 0 {
		c.Workflow.MaxConcurrentJobs = defaultMaxConcurrentJobs
	}
	if c.Workflow.SweepIntervalSeconds <= 0 {
		c.Workflow.SweepIntervalSeconds = defaultSweepIntervalSeconds
	}
	if c.Workflow.JobTTLMinutes <= 0 {
		c.Workflow.JobTTLMinutes = defaultJobTTLMinutes
	}
	if c.Workflow.InlineCleanupGraceSeconds <= 0 {
		c.Workflow.InlineCleanupGraceSeconds = defaultInlineCleanupGraceSeconds
	}
}
