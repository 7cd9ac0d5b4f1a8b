package download

import "errors"

const TaskTypeDownload = "download:video"

// TaskPayload is the unit of work for a download job. SourceJobID is the
// originating extraction job id; relay keys and the artifact folder are
// named by it, while DownloadID tracks the download job's own state.
type TaskPayload struct {
	DownloadID  string `json:"download_id"`
	SourceJobID string `json:"source_job_id"`
	URL         string `json:"url"`
	Format      string `json:"format"`
}

// Request is the first client frame on a streaming session.
type Request struct {
	Format string `json:"format"`
	TaskID string `json:"task_id"`
}

// ProgressFrame is a non-terminal status update forwarded to the client.
type ProgressFrame struct {
	Status   string `json:"status"`
	Progress string `json:"progress"`
}

// CompletedFrame is the single terminal frame of a successful session.
type CompletedFrame struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	URL     string `json:"URL"`
}

// ErrorFrame is the single terminal frame of a failed session.
type ErrorFrame struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrInvalidJobReference rejects streaming requests whose extraction job is
// unknown or has not completed yet.
var ErrInvalidJobReference = errors.New("invalid task id or extraction not yet complete")
