package workflow

import "errors"

var (
	// ErrNotRunning reports that a submission arrived while the
	// manager is stopped.
	ErrNotRunning = errors.New("workflow manager not running")
	// ErrArchiveNotReady reports an archive request for a job that has
	// not reached a success state or whose bundle is missing on disk.
	// A client error, not a server failure.
	ErrArchiveNotReady = errors.New("archive not ready")
)
