package extract

import (
	"context"
	"fmt"
	"net/url"

	"vidfetch/internal/core/job"
	"vidfetch/internal/utils/parser"

	"github.com/gofiber/fiber/v2"
)

// Submitter enqueues extraction jobs. *Service satisfies it.
type Submitter interface {
	Enqueue(ctx context.Context, url string) (string, error)
}

// Snapshots reads job records. *job.JobService satisfies it.
type Snapshots interface {
	Snapshot(ctx context.Context, jobID string) job.Job
}

// RelayPinger checks that the relay store is reachable.
type RelayPinger interface {
	Ping(ctx context.Context) error
}

// QueueHealth checks that the task queue is reachable.
type QueueHealth interface {
	Healthy() error
}

type Handler struct {
	service Submitter
	jobs    Snapshots
	relay   RelayPinger
	queue   QueueHealth
}

func NewHandler(service Submitter, jobs Snapshots, relay RelayPinger, queue QueueHealth) *Handler {
	return &Handler{service: service, jobs: jobs, relay: relay, queue: queue}
}

type submitParams struct {
	URL string `form:"url"`
}

// HandleSubmit accepts a video URL, validates it carries a video id, and
// enqueues a metadata-extraction job.
func (h *Handler) HandleSubmit(c *fiber.Ctx) error {
	if h.relay.Ping(c.Context()) != nil || h.queue.Healthy() != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Task processing service is unavailable.",
		})
	}

	var p submitParams
	if err := parser.ParseQuery(c, &p); err != nil || p.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "URL is not formatted properly. Please ensure you are using a valid YouTube video URL.",
		})
	}

	videoID, err := ParseVideoID(p.URL)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "URL is not formatted properly. Please ensure you are using a valid YouTube video URL.",
		})
	}
	canonical := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)

	id, err := h.service.Enqueue(c.Context(), canonical)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Failed to connect to task scheduling service.",
		})
	}
	return c.JSON(fiber.Map{"task_id": id, "status": "processing"})
}

// HandleStatus returns the summarized status snapshot for a job id.
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	j := h.jobs.Snapshot(c.Context(), c.Params("taskID"))
	return c.JSON(job.MapStatusSummary(j))
}

// HandleDetails returns the detailed status snapshot with the raw result.
func (h *Handler) HandleDetails(c *fiber.Ctx) error {
	j := h.jobs.Snapshot(c.Context(), c.Params("taskID"))
	return c.JSON(job.MapStatus(j))
}

// HandleDownloadDetails returns the download-job snapshot.
func (h *Handler) HandleDownloadDetails(c *fiber.Ctx) error {
	j := h.jobs.Snapshot(c.Context(), c.Params("taskID"))
	return c.JSON(job.MapDownloadStatus(j))
}

// ParseVideoID pulls the watch id out of a YouTube URL.
func ParseVideoID(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "youtu.be" {
		id := trimLeadingSlash(u.Path)
		if id == "" {
			return "", fmt.Errorf("no video id in %q", raw)
		}
		return id, nil
	}
	id := u.Query().Get("v")
	if id == "" {
		return "", fmt.Errorf("no video id in %q", raw)
	}
	return id, nil
}

func trimLeadingSlash(p string) string {
	for len(p) > 0 && p[0] == '/' {
		p = p[1:]
	}
	return p
}
