package download

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidfetch/internal/core/job"
	"vidfetch/internal/logger"
	rds "vidfetch/internal/platform/redis"
)

// JobReader reads job records. *job.JobService satisfies it.
type JobReader interface {
	Snapshot(ctx context.Context, jobID string) job.Job
	IsReady(ctx context.Context, jobID string) bool
}

// Relay is the bridge-facing side of the progress relay. *redis.Service
// satisfies it; a push-based channel can be substituted without touching
// the bridge's contract.
type Relay interface {
	RelayGet(ctx context.Context, jobID, field string) (value string, ok bool, err error)
}

// Submitter enqueues download jobs. *Service satisfies it.
type Submitter interface {
	Enqueue(ctx context.Context, sourceJobID, url, format string) (string, error)
}

// Sender forwards one frame to the connected client.
type Sender interface {
	Send(v interface{}) error
}

// Bridge relays live download progress from the relay to one streaming
// session until the download job reaches a terminal state or the client
// goes away (cancelling ctx).
type Bridge struct {
	jobs      JobReader
	relay     Relay
	downloads Submitter
	poll      time.Duration
	log       *logger.Logger
}

func NewBridge(jobs JobReader, relay Relay, downloads Submitter) *Bridge {
	return &Bridge{
		jobs:      jobs,
		relay:     relay,
		downloads: downloads,
		poll:      2 * time.Second,
		log:       logger.New("ProgressBridge"),
	}
}

// Run validates the extraction result, submits the download job, and polls
// the relay, forwarding progress frames followed by exactly one completed
// frame. It returns ErrInvalidJobReference before any download job is
// submitted when the extraction result is unavailable, ctx.Err() when the
// client disconnects, the send error when a forward fails, and a descriptive
// error when the download job ends in any state other than success; no
// completed frame is sent in that case.
func (b *Bridge) Run(ctx context.Context, req Request, send Sender) error {
	src := b.jobs.Snapshot(ctx, req.TaskID)
	if src.State != job.StateSuccess || src.Result == nil || src.Result.Metadata == nil {
		return ErrInvalidJobReference
	}
	url := src.Result.Metadata.OriginalURL

	downloadID, err := b.downloads.Enqueue(ctx, req.TaskID, url, req.Format)
	if err != nil {
		return err
	}
	b.log.LogInfof("bridging download job %s for session on %s", downloadID, req.TaskID)

	for !b.jobs.IsReady(ctx, downloadID) {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// A poll without a progress value is skipped, not an error; the
		// worker may not have written anything new yet.
		progress, ok, err := b.relay.RelayGet(ctx, req.TaskID, rds.FieldProgress)
		if err == nil && ok {
			status, _, _ := b.relay.RelayGet(ctx, req.TaskID, rds.FieldStatus)
			if err := send.Send(ProgressFrame{Status: status, Progress: progress}); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.poll):
		}
	}

	final := b.jobs.Snapshot(ctx, downloadID)
	if final.State != job.StateSuccess {
		if final.Error != "" {
			return fmt.Errorf("download failed: %s", final.Error)
		}
		return fmt.Errorf("download ended in state %s", final.State)
	}

	path, ok, _ := b.relay.RelayGet(ctx, req.TaskID, rds.FieldPath)
	if !ok || path == "" {
		return errors.New("download finished without an artifact path")
	}
	return send.Send(CompletedFrame{
		Status:  "completed",
		Message: "Video download finished!",
		URL:     path,
	})
}
