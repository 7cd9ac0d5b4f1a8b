package thumbnail

import (
	"context"
	"strings"

	"vidfetch/internal/core/job"

	"github.com/gofiber/fiber/v2"
)

// Snapshots reads job records. *job.JobService satisfies it.
type Snapshots interface {
	Snapshot(ctx context.Context, jobID string) job.Job
}

type Handler struct {
	service *Service
	jobs    Snapshots
}

func NewHandler(service *Service, jobs Snapshots) *Handler {
	return &Handler{service: service, jobs: jobs}
}

// HandleGet serves the thumbnail for a completed extraction job: fetches
// the image the extraction result references, persists it, schedules its
// deletion, and returns the relative URL.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	id := c.Params("taskID")
	j := h.jobs.Snapshot(c.Context(), id)

	switch j.State {
	case job.StatePending:
		return c.JSON(fiber.Map{"task_id": id, "status": "processing"})
	case job.StateSuccess:
		if j.Result == nil || j.Result.Metadata == nil || j.Result.Metadata.Thumbnail == "" {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"task_id": id, "status": "error", "error": "no thumbnail in extraction result",
			})
		}
		imageURL, err := h.service.Fetch(c.Context(), id, j.Result.Metadata.Thumbnail)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"task_id": id, "status": "error", "error": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"task_id": id, "status": "success", "image_url": imageURL})
	case job.StateFailure, job.StateRevoked, job.StateRetry:
		return c.JSON(fiber.Map{"task_id": id, "status": "retry", "error": j.Error})
	default:
		return c.JSON(fiber.Map{"task_id": id, "status": strings.ToLower(string(j.State))})
	}
}
