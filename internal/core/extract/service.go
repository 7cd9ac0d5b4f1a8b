package extract

import (
	"context"
	"encoding/json"

	"vidfetch/internal/core/job"
	"vidfetch/internal/logger"
	"vidfetch/internal/platform/ytdlp"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const TaskTypeExtract = "extract:info"

type TaskPayload struct {
	JobID string `json:"job_id"`
	URL   string `json:"url"`
}

// Extractor produces video metadata for a URL. *ytdlp.Client satisfies it.
type Extractor interface {
	ExtractInfo(ctx context.Context, url string) (*ytdlp.Metadata, error)
}

// Queue enqueues tasks for worker execution. *tasks.Client satisfies it.
type Queue interface {
	Enqueue(task *asynq.Task, queue string, maxRetries int) error
}

type Service struct {
	jobs       *job.JobService
	queue      Queue
	media      Extractor
	maxRetries int
	log        *logger.Logger
}

func NewService(jobs *job.JobService, queue Queue, media Extractor, maxRetries int) *Service {
	return &Service{jobs: jobs, queue: queue, media: media, maxRetries: maxRetries, log: logger.New("ExtractService")}
}

// Enqueue submits a metadata-extraction job for a canonical video URL and
// returns its id immediately.
func (s *Service) Enqueue(ctx context.Context, url string) (string, error) {
	id := uuid.New().String()

	payload, _ := json.Marshal(TaskPayload{JobID: id, URL: url})
	if err := s.jobs.InitPending(ctx, id, job.KindExtract); err != nil {
		return "", err
	}
	if err := s.queue.Enqueue(asynq.NewTask(TaskTypeExtract, payload), "default", s.maxRetries); err != nil {
		return "", err
	}
	s.log.LogInfof("enqueued extract job %s for %s", id, url)
	return id, nil
}

// HandleTask runs metadata extraction on a worker.
func (s *Service) HandleTask(ctx context.Context, task *asynq.Task) error {
	var p TaskPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return err
	}
	s.log.LogInfof("processing extract job %s for %s", p.JobID, p.URL)
	if err := s.jobs.SetRunning(ctx, p.JobID, job.KindExtract); err != nil {
		return err
	}

	meta, err := s.media.ExtractInfo(ctx, p.URL)
	if err != nil {
		s.log.LogErrorf("extract job %s failed: %v", p.JobID, err)
		_ = s.jobs.Fail(ctx, p.JobID, job.KindExtract, err, willRetry(ctx))
		return err
	}

	s.log.LogSuccessf("extract job %s completed: %s", p.JobID, meta.Title)
	return s.jobs.Complete(ctx, p.JobID, job.KindExtract, job.Result{Metadata: meta})
}

// willRetry reports whether the queue is going to re-run this task after
// the current failure.
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
