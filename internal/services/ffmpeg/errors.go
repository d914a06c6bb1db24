package ffmpeg

import "errors"

var (
	// ErrEncode reports that ffmpeg ran and exited non-zero. Typically
	// input-specific; the wrapped message carries the stderr tail.
	ErrEncode = errors.New("encode failed")
	// ErrEncodeLaunch reports that the ffmpeg process could not be
	// started at all (missing binary, permissions). An environment
	// problem rather than an input problem, though callers treat both
	// as the variant having failed.
	ErrEncodeLaunch = errors.New("encoder failed to launch")
)
