package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var commandContext = exec.CommandContext

// PlaylistName is the variant sub-manifest written into each output
// directory.
const PlaylistName = "playlist.m3u8"

const (
	segmentPattern = "segment_%03d.ts"
	segmentSuffix  = ".ts"
)

// EncodeRequest describes one variant encode: one source file at one
// target bitrate into one output directory.
type EncodeRequest struct {
	InputPath      string
	OutputDir      string
	BitrateKbps    int
	SegmentSeconds int
	SampleRate     int
	Channels       int
}

// Client defines variant encoding behaviour.
type Client interface {
	// EncodeVariant runs one encode and returns the number of media
	// segments produced on success.
	EncodeVariant(ctx context.Context, req EncodeRequest) (int, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithStderrTail bounds how many diagnostic lines are kept for error
// reporting.
func WithStderrTail(lines int) Option {
	return func(c *CLI) {
		if lines > 0 {
			c.tailLines = lines
		}
	}
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary    string
	tailLines int
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg", tailLines: 20}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// EncodeVariant launches ffmpeg for a single quality variant and counts
// the segments it produced. A non-zero exit maps to ErrEncode with the
// stderr tail attached; a process that never started maps to
// ErrEncodeLaunch. The output directory may be left with partial
// segments on failure; it is reclaimed with the whole job.
func (c *CLI) EncodeVariant(ctx context.Context, req EncodeRequest) (int, error) {
	if strings.TrimSpace(req.InputPath) == "" {
		return 0, errors.New("input path required")
	}
	if strings.TrimSpace(req.OutputDir) == "" {
		return 0, errors.New("output directory required")
	}
	if req.BitrateKbps <= 0 {
		return 0, errors.New("bitrate required")
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure output directory: %w", err)
	}

	args := buildArgs(req)
	tail := newTailWriter(c.tailLines)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	cmd.Stdout = tail
	cmd.Stderr = tail

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail := tail.Tail()
			if detail == "" {
				detail = err.Error()
			}
			return 0, fmt.Errorf("%w: exit status %d: %s", ErrEncode, exitErr.ExitCode(), detail)
		}
		return 0, fmt.Errorf("%w: %v", ErrEncodeLaunch, err)
	}

	count, err := countSegments(req.OutputDir)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: no segments produced in %s", ErrEncode, req.OutputDir)
	}
	return count, nil
}

func buildArgs(req EncodeRequest) []string {
	segmentSeconds := req.SegmentSeconds
	if segmentSeconds <= 0 {
		segmentSeconds = 10
	}
	sampleRate := req.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	channels := req.Channels
	if channels <= 0 {
		channels = 2
	}
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", req.InputPath,
		"-vn",
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%dk", req.BitrateKbps),
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", channels),
		"-f", "hls",
		"-hls_time", fmt.Sprintf("%d", segmentSeconds),
		"-hls_list_size", "0",
		"-hls_segment_filename", filepath.Join(req.OutputDir, segmentPattern),
		filepath.Join(req.OutputDir, PlaylistName),
	}
}

func countSegments(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("count segments: %w", err)
	}
	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), segmentSuffix) {
			count++
		}
	}
	return count, nil
}

var _ Client = (*CLI)(nil)
