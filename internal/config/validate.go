package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLadder(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Paths.WorkDir == c.Paths.LogDir {
		return errors.New("paths.work_dir and paths.log_dir must differ")
	}
	return nil
}

func (c *Config) validateLadder() error {
	seen := make(map[string]struct{}, len(c.Ladder))
	previous := 0
	for i, rung := range c.Ladder {
		if rung.Label == "" {
			return fmt.Errorf("ladder[%d].label must be set", i)
		}
		if _, ok := seen[rung.Label]; ok {
			return fmt.Errorf("ladder label %q appears more than once", rung.Label)
		}
		seen[rung.Label] = struct{}{}
		if rung.BitrateKbps <= 0 {
			return fmt.Errorf("ladder[%d].bitrate_kbps must be positive", i)
		}
		if rung.Bandwidth <= 0 {
			return fmt.Errorf("ladder[%d].bandwidth must be positive", i)
		}
		if rung.BitrateKbps < previous {
			return fmt.Errorf("ladder must be ordered lowest bitrate first (rung %q)", rung.Label)
		}
		previous = rung.BitrateKbps
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.SegmentSeconds > 60 {
		return errors.New("ffmpeg.segment_seconds must be 60 or less")
	}
	if c.FFmpeg.Channels > 2 {
		return errors.New("ffmpeg.channels must be 1 or 2")
	}
	return nil
}
