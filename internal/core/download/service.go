package download

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"vidfetch/internal/config"
	"vidfetch/internal/core/job"
	"vidfetch/internal/logger"
	rds "vidfetch/internal/platform/redis"
	"vidfetch/internal/platform/ytdlp"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Downloader writes a media file to disk while reporting progress.
// *ytdlp.Client satisfies it.
type Downloader interface {
	Download(ctx context.Context, spec ytdlp.DownloadSpec, onProgress func(ytdlp.Progress)) error
}

// RelayWriter is the worker-facing side of the progress relay.
// *redis.Service satisfies it.
type RelayWriter interface {
	RelaySet(ctx context.Context, jobID, field, value string) error
	Ping(ctx context.Context) error
}

// Scheduler queues deferred artifact deletion. *retention.Service
// satisfies it.
type Scheduler interface {
	ScheduleMediaCleanup(jobID string) error
}

// Queue enqueues tasks for worker execution. *tasks.Client satisfies it.
type Queue interface {
	Enqueue(task *asynq.Task, queue string, maxRetries int) error
}

type Service struct {
	jobs      *job.JobService
	queue     Queue
	relay     RelayWriter
	media     Downloader
	retention Scheduler
	cfg       config.Config
	log       *logger.Logger
}

func NewService(jobs *job.JobService, queue Queue, relay RelayWriter, media Downloader, retention Scheduler, cfg config.Config) *Service {
	return &Service{
		jobs:      jobs,
		queue:     queue,
		relay:     relay,
		media:     media,
		retention: retention,
		cfg:       cfg,
		log:       logger.New("DownloadService"),
	}
}

// Enqueue submits a download job for the video an extraction job resolved,
// returning the download job's id.
func (s *Service) Enqueue(ctx context.Context, sourceJobID, url, format string) (string, error) {
	id := uuid.New().String()

	payload, _ := json.Marshal(TaskPayload{DownloadID: id, SourceJobID: sourceJobID, URL: url, Format: format})
	if err := s.jobs.InitPending(ctx, id, job.KindDownload); err != nil {
		return "", err
	}
	if err := s.queue.Enqueue(asynq.NewTask(TaskTypeDownload, payload), "default", s.cfg.TaskMaxRetries); err != nil {
		return "", err
	}
	s.log.LogInfof("enqueued download job %s (source %s, format %s)", id, sourceJobID, format)
	return id, nil
}

// HandleTask runs one download on a worker: fetches the selected format
// into the job's media folder, reports progress into the relay, records the
// final artifact path, and schedules the folder's deletion.
func (s *Service) HandleTask(ctx context.Context, task *asynq.Task) error {
	var p TaskPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return err
	}

	// Fail fast when the relay is unreachable: progress would be lost and
	// the bridge would stall on a silent job.
	if err := s.relay.Ping(ctx); err != nil {
		s.log.LogErrorf("relay unreachable for download job %s: %v", p.DownloadID, err)
		return err
	}

	if err := s.jobs.SetRunning(ctx, p.DownloadID, job.KindDownload); err != nil {
		return err
	}

	dir := filepath.Join(s.cfg.VideoDir, p.SourceJobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = s.jobs.Fail(ctx, p.DownloadID, job.KindDownload, err, false)
		return err
	}

	err := s.media.Download(ctx, ytdlp.DownloadSpec{URL: p.URL, Format: p.Format, Dir: dir}, func(pr ytdlp.Progress) {
		s.publishProgress(ctx, p.SourceJobID, pr)
	})
	if err != nil {
		s.log.LogErrorf("download job %s failed: %v", p.DownloadID, err)
		_ = s.jobs.Fail(ctx, p.DownloadID, job.KindDownload, err, willRetry(ctx))
		return err
	}

	name, err := producedFile(dir)
	if err != nil {
		_ = s.jobs.Fail(ctx, p.DownloadID, job.KindDownload, err, false)
		return err
	}

	// The URL the client navigates to for the finished artifact.
	_ = s.relay.RelaySet(ctx, p.SourceJobID, rds.FieldPath, "/videos/"+p.SourceJobID+"/"+name)

	if err := s.retention.ScheduleMediaCleanup(p.SourceJobID); err != nil {
		s.log.LogWarnf("media cleanup not scheduled for %s: %v", p.SourceJobID, err)
	}

	s.log.LogSuccessf("download job %s completed: %s", p.DownloadID, name)
	return s.jobs.Complete(ctx, p.DownloadID, job.KindDownload, job.Result{
		Download: &job.DownloadDone{Status: "completed", Message: "Video download finished!"},
	})
}

func (s *Service) publishProgress(ctx context.Context, sourceJobID string, pr ytdlp.Progress) {
	if pr.Status == "finished" {
		_ = s.relay.RelaySet(ctx, sourceJobID, rds.FieldStatus, "finished")
		return
	}
	_ = s.relay.RelaySet(ctx, sourceJobID, rds.FieldETA, pr.ETA)
	_ = s.relay.RelaySet(ctx, sourceJobID, rds.FieldSpeed, pr.Speed)
	_ = s.relay.RelaySet(ctx, sourceJobID, rds.FieldProgress, pr.Percent)
	_ = s.relay.RelaySet(ctx, sourceJobID, rds.FieldStatus, "downloading")
}

// producedFile returns the single file a download leaves in its folder. The
// extension is not known in advance, so the first regular file wins.
func producedFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			return entry.Name(), nil
		}
	}
	return "", fmt.Errorf("no file produced in %s", dir)
}

func willRetry(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return false
	}
	max, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return false
	}
	return retried < max
}
