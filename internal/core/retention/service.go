package retention

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vidfetch/internal/config"
	"vidfetch/internal/logger"

	"github.com/hibiken/asynq"
)

const (
	TaskTypeDeleteThumbnail = "delete:thumbnail"
	TaskTypeDeleteMedia     = "delete:media"
)

type Payload struct {
	JobID string `json:"job_id"`
}

// Queue schedules deferred tasks. *tasks.Client satisfies it.
type Queue interface {
	EnqueueIn(task *asynq.Task, queue string, maxRetries int, delay time.Duration) error
}

// Service schedules and executes deferred artifact deletion. Deletion jobs
// are scheduled exactly once, when the artifact is created; a vanished
// artifact at execution time is logged, never an error.
type Service struct {
	queue Queue
	cfg   config.Config
	log   *logger.Logger
}

func NewService(queue Queue, cfg config.Config) *Service {
	return &Service{queue: queue, cfg: cfg, log: logger.New("Retention")}
}

// ScheduleThumbnailCleanup queues deletion of a fetched thumbnail after the
// configured thumbnail retention window.
func (s *Service) ScheduleThumbnailCleanup(jobID string) error {
	return s.schedule(TaskTypeDeleteThumbnail, jobID, s.cfg.ThumbnailRetention)
}

// ScheduleMediaCleanup queues deletion of a downloaded media folder after
// the configured media retention window.
func (s *Service) ScheduleMediaCleanup(jobID string) error {
	return s.schedule(TaskTypeDeleteMedia, jobID, s.cfg.MediaRetention)
}

func (s *Service) schedule(taskType, jobID string, delay time.Duration) error {
	payload, _ := json.Marshal(Payload{JobID: jobID})
	if err := s.queue.EnqueueIn(asynq.NewTask(taskType, payload), "default", s.cfg.TaskMaxRetries, delay); err != nil {
		s.log.LogErrorf("schedule %s for job %s: %v", taskType, jobID, err)
		return err
	}
	s.log.LogInfof("scheduled %s for job %s in %s", taskType, jobID, delay)
	return nil
}

// HandleDeleteThumbnail removes the thumbnail whose filename contains the
// job id.
func (s *Service) HandleDeleteThumbnail(ctx context.Context, task *asynq.Task) error {
	var p Payload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return err
	}

	entries, err := os.ReadDir(s.cfg.ThumbnailDir)
	if err != nil {
		s.log.LogWarnf("thumbnail dir unreadable: %v", err)
		return nil
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.Contains(entry.Name(), p.JobID) {
			continue
		}
		full := filepath.Join(s.cfg.ThumbnailDir, entry.Name())
		if err := os.Remove(full); err != nil {
			s.log.LogWarnf("delete thumbnail %s: %v", full, err)
			return nil
		}
		s.log.LogInfof("deleted thumbnail %s", full)
		return nil
	}
	s.log.LogInfof("thumbnail not found for job %s", p.JobID)
	return nil
}

// HandleDeleteMedia removes the media folder named by the job id.
func (s *Service) HandleDeleteMedia(ctx context.Context, task *asynq.Task) error {
	var p Payload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return err
	}

	dir := filepath.Join(s.cfg.VideoDir, p.JobID)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		s.log.LogInfof("media folder not found: %s", dir)
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		s.log.LogWarnf("delete media folder %s: %v", dir, err)
		return nil
	}
	s.log.LogInfof("deleted media folder %s", dir)
	return nil
}
