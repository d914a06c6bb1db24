package api

import (
	"os"
	"time"

	"github.com/willhenshall/hls-transcoder/internal/jobs"
)

// timestampFormat is used for RFC3339 timestamps in API payloads.
const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

// JobFromStore converts a store snapshot into its DTO. Archive
// readiness reflects both the job status and the file actually being
// present on disk.
func JobFromStore(job *jobs.Job) JobStatus {
	if job == nil {
		return JobStatus{}
	}

	out := JobStatus{
		ID:             job.ID,
		Status:         string(job.Status),
		CreatedAt:      job.CreatedAt.Format(timestampFormat),
		CompletedFiles: job.CompletedFiles,
		FailedFiles:    job.FailedFiles,
		Error:          job.ErrorMessage,
	}
	if job.CompletedAt != nil {
		out.CompletedAt = job.CompletedAt.Format(timestampFormat)
	}
	if job.Status.Succeeded() && job.ArchivePath != "" {
		if _, err := os.Stat(job.ArchivePath); err == nil {
			out.ArchiveReady = true
		}
	}

	out.Files = make([]FileStatus, 0, len(job.Files))
	for _, file := range job.Files {
		out.Files = append(out.Files, FileStatus{
			Name:         file.Name,
			Status:       string(file.Status),
			PackageDir:   file.PackageDir,
			SegmentCount: file.SegmentCount,
			Error:        file.ErrorMessage,
		})
	}
	return out
}

// ParseTimestamp converts an API timestamp back into a time.Time. Used
// by CLI rendering; zero time on failure.
func ParseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(timestampFormat, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
