package jobs

import "errors"

var (
	// ErrNotFound reports that no job with the requested id exists.
	ErrNotFound = errors.New("job not found")
	// ErrDuplicateJob reports that a job with the same id already exists.
	ErrDuplicateJob = errors.New("job already exists")
	// ErrDuplicateFileName reports that a submission names the same
	// source file twice. File names are the join key for status
	// updates, so duplicates are rejected at creation instead of
	// silently shadowing each other later.
	ErrDuplicateFileName = errors.New("duplicate file name in job")
)
