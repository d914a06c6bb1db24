// Package api defines transport-friendly DTOs shared by the IPC server
// and CLI.
package api

// FileStatus describes one source file's progress in a
// transport-friendly format.
type FileStatus struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	PackageDir   string `json:"packageDir,omitempty"`
	SegmentCount int    `json:"segmentCount"`
	Error        string `json:"error,omitempty"`
}

// JobStatus describes a job and its files.
type JobStatus struct {
	ID             string       `json:"id"`
	Status         string       `json:"status"`
	CreatedAt      string       `json:"createdAt"`
	CompletedAt    string       `json:"completedAt,omitempty"`
	Files          []FileStatus `json:"files"`
	CompletedFiles int          `json:"completedFiles"`
	FailedFiles    int          `json:"failedFiles"`
	ArchiveReady   bool         `json:"archiveReady"`
	Error          string       `json:"error,omitempty"`
}

// DaemonStatus aggregates daemon runtime information.
type DaemonStatus struct {
	Running         bool           `json:"running"`
	PID             int            `json:"pid"`
	LockFilePath    string         `json:"lockFilePath"`
	SocketPath      string         `json:"socketPath"`
	WorkDir         string         `json:"workDir"`
	FFmpegAvailable bool           `json:"ffmpegAvailable"`
	FFmpegDetail    string         `json:"ffmpegDetail,omitempty"`
	JobStats        map[string]int `json:"jobStats"`
}
