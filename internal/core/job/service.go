package job

import (
	"context"

	"vidfetch/internal/logger"
)

// Store is the key-value backend job records live in. *redis.Service
// satisfies it; tests use an in-memory map.
type Store interface {
	CacheGet(ctx context.Context, key string, dest interface{}) error
	CacheSet(ctx context.Context, key string, val interface{}, ttlSeconds int) error
}

type JobService struct {
	store Store
	log   *logger.Logger
}

func NewJobService(store Store) *JobService {
	return &JobService{store: store, log: logger.New("JobService")}
}

// Snapshot returns the current record for a job id. An id with no record
// reads as pending; a job not yet visible and a job that never existed are
// indistinguishable here.
func (s *JobService) Snapshot(ctx context.Context, jobID string) Job {
	var j Job
	if err := s.store.CacheGet(ctx, key(jobID), &j); err != nil {
		return Job{JobID: jobID, State: StatePending}
	}
	return j
}

// IsReady reports whether the job reached a terminal state.
func (s *JobService) IsReady(ctx context.Context, jobID string) bool {
	return s.Snapshot(ctx, jobID).Ready()
}

// InitPending records a freshly submitted job.
func (s *JobService) InitPending(ctx context.Context, jobID string, kind Kind) error {
	return s.write(ctx, Job{JobID: jobID, Kind: kind, State: StatePending})
}

// SetRunning marks a job as picked up by a worker.
func (s *JobService) SetRunning(ctx context.Context, jobID string, kind Kind) error {
	return s.write(ctx, Job{JobID: jobID, Kind: kind, State: StateRunning})
}

// Complete records a successful terminal state with its result payload.
func (s *JobService) Complete(ctx context.Context, jobID string, kind Kind, result Result) error {
	return s.write(ctx, Job{JobID: jobID, Kind: kind, State: StateSuccess, Result: &result})
}

// Fail records a failed terminal state. willRetry marks runs the queue's
// retry policy is going to re-execute.
func (s *JobService) Fail(ctx context.Context, jobID string, kind Kind, jobErr error, willRetry bool) error {
	state := StateFailure
	if willRetry {
		state = StateRetry
	}
	msg := ""
	if jobErr != nil {
		msg = jobErr.Error()
	}
	return s.write(ctx, Job{JobID: jobID, Kind: kind, State: state, Error: msg})
}

func (s *JobService) write(ctx context.Context, j Job) error {
	if err := s.store.CacheSet(ctx, key(j.JobID), j, ttl(j.State)); err != nil {
		s.log.LogErrorf("store job %s (%s): %v", j.JobID, j.State, err)
		return err
	}
	return nil
}

func key(id string) string { return "job:" + id }

// ttl picks the record's retention: terminal results expire after the
// fixed result-retention window, in-flight records sooner.
func ttl(s State) int {
	if s.Terminal() {
		return 3600
	}
	return 600
}
