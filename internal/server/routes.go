package server

import (
	"vidfetch/internal/core/download"
	"vidfetch/internal/core/extract"
	"vidfetch/internal/core/job"
	"vidfetch/internal/core/thumbnail"
	"vidfetch/internal/health"
	"vidfetch/internal/platform/redis"
	"vidfetch/internal/platform/tasks"

	"github.com/gofiber/fiber/v2"
)

type Dependencies struct {
	Job       *job.JobService
	Extract   *extract.Service
	Download  *download.Service
	Bridge    *download.Bridge
	Thumbnail *thumbnail.Service
	Tasks     *tasks.Client
	Redis     *redis.Service
}

func RegisterRoutes(app *fiber.App, d Dependencies) *health.HealthHandler {
	// Health endpoints
	healthHandler := health.NewHealthHandler(d.Redis, d.Tasks)
	app.Get("/v1/health", health.HealthLimiter(), healthHandler.HandleHealth)

	extractHandler := extract.NewHandler(d.Extract, d.Job, d.Redis, d.Tasks)
	app.Get("/video", extractHandler.HandleSubmit)

	// The streaming session shares the /video/download prefix with the
	// snapshot endpoint; non-upgrade requests on the bare path get 426.
	wsHandler := download.NewWSHandler(d.Bridge)
	app.Get("/video/download", wsHandler.Handler())
	app.Get("/video/download/:taskID", extractHandler.HandleDownloadDetails)

	thumbHandler := thumbnail.NewHandler(d.Thumbnail, d.Job)
	app.Get("/video/thumbnail/:taskID", thumbHandler.HandleGet)

	app.Get("/video/details/:taskID", extractHandler.HandleDetails)
	app.Get("/video/:taskID", extractHandler.HandleStatus)

	return healthHandler
}
