package job

import (
	"strings"

	"vidfetch/internal/platform/ytdlp"
)

// Job is the queue-owned record for one unit of asynchronous work. Workers
// write it; handlers and the progress bridge only read it.
type Job struct {
	JobID  string  `json:"job_id"`
	Kind   Kind    `json:"kind"`
	State  State   `json:"state"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

type Kind string

const (
	KindExtract         Kind = "extract"
	KindDownload        Kind = "download"
	KindDeleteThumbnail Kind = "delete-thumbnail"
	KindDeleteMedia     Kind = "delete-media"
)

type State string

const (
	StatePending State = "pending"
	StateRunning State = "running"
	StateSuccess State = "success"
	StateFailure State = "failure"
	StateRevoked State = "revoked"
	StateRetry   State = "retry"
)

// Terminal reports whether no further transition can occur. Revoked and
// retry are terminal as far as callers of this service are concerned; the
// queue's own retry policy re-runs the task under the same record.
func (s State) Terminal() bool {
	switch s {
	case StateSuccess, StateFailure, StateRevoked, StateRetry:
		return true
	}
	return false
}

// Ready reports whether the job reached a terminal state.
func (j Job) Ready() bool { return j.State.Terminal() }

// Result holds the payload of a successfully finished job.
type Result struct {
	Metadata *ytdlp.Metadata `json:"metadata,omitempty"`
	Download *DownloadDone   `json:"download,omitempty"`
}

// DownloadDone is the completion marker a finished download job records.
type DownloadDone struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusResponse is the externally visible shape for every job snapshot.
type StatusResponse struct {
	TaskID string      `json:"task_id"`
	Status string      `json:"status"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// MapStatus translates a job snapshot into the external status vocabulary:
// pending, completed (with raw result), retry (failure/revoked/retry,
// with error), or the lowercased state for anything else. Total over all
// states; an unknown job id arrives here already snapshotted as pending.
func MapStatus(j Job) StatusResponse {
	switch j.State {
	case StatePending:
		return StatusResponse{TaskID: j.JobID, Status: "pending"}
	case StateSuccess:
		return StatusResponse{TaskID: j.JobID, Status: "completed", Result: resultPayload(j)}
	case StateFailure, StateRevoked, StateRetry:
		return StatusResponse{TaskID: j.JobID, Status: "retry", Error: j.Error}
	default:
		return StatusResponse{TaskID: j.JobID, Status: strings.ToLower(string(j.State))}
	}
}

// MapStatusSummary is MapStatus with a completed extraction result stripped
// to name, duration and format list.
func MapStatusSummary(j Job) StatusResponse {
	resp := MapStatus(j)
	if j.State == StateSuccess && j.Result != nil && j.Result.Metadata != nil {
		resp.Result = j.Result.Metadata.Summarize()
	}
	return resp
}

// MapDownloadStatus is the snapshot shape of the download-details endpoint:
// pending reads as processing and failure as failed.
func MapDownloadStatus(j Job) StatusResponse {
	switch j.State {
	case StatePending:
		return StatusResponse{TaskID: j.JobID, Status: "processing"}
	case StateSuccess:
		return StatusResponse{TaskID: j.JobID, Status: "completed", Result: resultPayload(j)}
	case StateFailure:
		return StatusResponse{TaskID: j.JobID, Status: "failed", Error: j.Error}
	default:
		return StatusResponse{TaskID: j.JobID, Status: strings.ToLower(string(j.State))}
	}
}

func resultPayload(j Job) interface{} {
	if j.Result == nil {
		return nil
	}
	if j.Result.Metadata != nil {
		return j.Result.Metadata
	}
	if j.Result.Download != nil {
		return j.Result.Download
	}
	return nil
}
