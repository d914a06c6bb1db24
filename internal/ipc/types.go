package ipc

import "github.com/willhenshall/hls-transcoder/internal/api"

// SubmitFile is one file in a submission request.
type SubmitFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// SubmitRequest starts an asynchronous transcode job.
type SubmitRequest struct {
	Files []SubmitFile `json:"files"`
}

// SubmitResponse carries the created job id.
type SubmitResponse struct {
	JobID string `json:"jobId"`
}

// StatusRequest fetches one job's status.
type StatusRequest struct {
	JobID string `json:"jobId"`
}

// StatusResponse contains the job snapshot.
type StatusResponse struct {
	Job api.JobStatus `json:"job"`
}

// ListRequest fetches all jobs.
type ListRequest struct{}

// ListResponse contains job snapshots, newest first.
type ListResponse struct {
	Jobs []api.JobStatus `json:"jobs"`
}

// RemoveRequest deletes a job, cancelling it if still running.
type RemoveRequest struct {
	JobID string `json:"jobId"`
}

// RemoveResponse reports whether the job existed.
type RemoveResponse struct {
	Removed bool `json:"removed"`
}

// ArchiveRequest resolves the bundle path for a finished job.
type ArchiveRequest struct {
	JobID string `json:"jobId"`
}

// ArchiveResponse carries the on-disk bundle path.
type ArchiveResponse struct {
	Path string `json:"path"`
}

// ConvertRequest runs the synchronous single-file mode.
type ConvertRequest struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// InlineFile is one produced file returned in-band. Data is
// base64-encoded on the wire by encoding/json.
type InlineFile struct {
	Path string `json:"path"`
	Data []byte `json:"data"`
}

// ConvertResponse carries the complete package in-band.
type ConvertResponse struct {
	JobID        string       `json:"jobId"`
	PackageName  string       `json:"packageName"`
	SegmentCount int          `json:"segmentCount"`
	Files        []InlineFile `json:"files"`
}

// DaemonStatusRequest fetches daemon runtime information.
type DaemonStatusRequest struct{}

// DaemonStatusResponse contains daemon runtime information.
type DaemonStatusResponse struct {
	Status api.DaemonStatus `json:"status"`
}
