package jobs

import (
	"path/filepath"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusPending             Status = "pending"
	StatusProcessing          Status = "processing"
	StatusCompleted           Status = "completed"
	StatusCompletedWithErrors Status = "completed_with_errors"
	StatusFailed              Status = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCompletedWithErrors, StatusFailed:
		return true
	}
	return false
}

// Succeeded reports whether the status allows archive retrieval.
func (s Status) Succeeded() bool {
	return s == StatusCompleted || s == StatusCompletedWithErrors
}

// FileStatus represents the lifecycle of one source file within a job.
type FileStatus string

const (
	FilePending    FileStatus = "pending"
	FileProcessing FileStatus = "processing"
	FileCompleted  FileStatus = "completed"
	FileFailed     FileStatus = "failed"
)

// AllFilesFailedMessage is the job-level error message set when no file
// in the job produced a package.
const AllFilesFailedMessage = "all files failed to transcode"

// FileEntry is one source file's progress within a job.
type FileEntry struct {
	Name         string
	Status       FileStatus
	PackageDir   string
	SegmentCount int
	ErrorMessage string
}

// Job identifies one upload batch and its per-file progress.
type Job struct {
	ID             string
	Status         Status
	CreatedAt      time.Time
	CompletedAt    *time.Time
	Files          []FileEntry
	CompletedFiles int
	FailedFiles    int
	ArchivePath    string
	ErrorMessage   string
}

// SourcesDirName is the reserved upload-staging directory inside a job's
// work dir. It is never included in the result archive.
const SourcesDirName = "_sources"

// BundleName is the archive file produced at the job work dir root.
const BundleName = "bundle.zip"

// WorkDir returns the job's private directory under base. No two jobs
// share a work dir because ids are unique.
func WorkDir(base, jobID string) string {
	return filepath.Join(base, jobID)
}

// FileUpdate describes a field-level merge into one FileEntry. Nil
// fields are left untouched.
type FileUpdate struct {
	Status       *FileStatus
	PackageDir   *string
	SegmentCount *int
	ErrorMessage *string
}
