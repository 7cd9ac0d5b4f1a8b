package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vidfetch/internal/logger"

	redisv8 "github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// Relay field names written by the download worker and polled by the
// progress bridge. Keys are namespaced per job id, so concurrent jobs
// never touch each other's entries.
const (
	FieldETA      = "eta"
	FieldSpeed    = "speed"
	FieldProgress = "progress"
	FieldStatus   = "status"
	FieldPath     = "path"
)

// relayTTL bounds how long stale progress entries linger after a job is
// done. The bridge stops reading at terminal state, so expiry is invisible
// to clients.
const relayTTL = 2 * time.Hour

type Options struct {
	Addr     string
	Password string
}

type Service struct {
	client *redisv8.Client
	log    *logger.Logger
}

func New(opts Options) (*Service, error) {
	c := redisv8.NewClient(&redisv8.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DialTimeout: 10 * time.Second,
		ReadTimeout: 10 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Service{client: c, log: logger.New("Redis")}, nil
}

func (s *Service) Close() error            { return s.client.Close() }
func (s *Service) Client() *redisv8.Client { return s.client }

// Ping reports whether the store is reachable, bounded by a 10s timeout.
func (s *Service) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.log.LogErrorf("Redis health check failed: %v", err)
		return fmt.Errorf("redis ping failed: %v", err)
	}

	// Simple write/read test to verify Redis is working
	testKey := "health:test:" + time.Now().Format("20060102150405")
	testValue := "ok"

	if err := s.client.Set(ctx, testKey, testValue, 10*time.Second).Err(); err != nil {
		return fmt.Errorf("redis write test failed: %v", err)
	}
	val, err := s.client.Get(ctx, testKey).Result()
	if err != nil {
		return fmt.Errorf("redis read test failed: %v", err)
	}
	if val != testValue {
		return fmt.Errorf("redis value mismatch: got %s, want %s", val, testValue)
	}
	_ = s.client.Del(ctx, testKey).Err()

	return nil
}

func (s *Service) AsynqRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: s.client.Options().Addr, Password: s.client.Options().Password}
}

// Cache helpers (job records)
func (s *Service) CacheGet(ctx context.Context, key string, dest interface{}) error {
	b, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}

func (s *Service) CacheSet(ctx context.Context, key string, val interface{}, ttlSeconds int) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, time.Duration(ttlSeconds)*time.Second).Err()
}

// Relay helpers (per-job progress scratch space)

func relayKey(jobID, field string) string { return jobID + ":" + field }

// RelaySet writes one progress field for a job.
func (s *Service) RelaySet(ctx context.Context, jobID, field, value string) error {
	return s.client.Set(ctx, relayKey(jobID, field), value, relayTTL).Err()
}

// RelayGet reads one progress field for a job. A missing entry is not an
// error: not every poll carries new progress.
func (s *Service) RelayGet(ctx context.Context, jobID, field string) (string, bool, error) {
	val, err := s.client.Get(ctx, relayKey(jobID, field)).Result()
	if err == redisv8.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
