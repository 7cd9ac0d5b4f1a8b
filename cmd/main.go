package main

import (
	"bytes"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/hibiken/asynq"

	"vidfetch/internal/config"
	"vidfetch/internal/core/download"
	"vidfetch/internal/core/extract"
	"vidfetch/internal/core/job"
	"vidfetch/internal/core/retention"
	"vidfetch/internal/core/thumbnail"
	"vidfetch/internal/logger"
	rds "vidfetch/internal/platform/redis"
	"vidfetch/internal/platform/tasks"
	"vidfetch/internal/platform/ytdlp"
	"vidfetch/internal/server"
	"vidfetch/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("[vidfetch] starting at %s (env=%s)\n", cfg.HTTPAddr, cfg.AppEnv)

	logr := logger.New("main")

	if err := os.MkdirAll(cfg.ThumbnailDir, 0o755); err != nil {
		log.Fatal(err)
	}
	if err := os.MkdirAll(cfg.VideoDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// Redis client
	redisSvc, err := rds.New(rds.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer redisSvc.Close()

	// Asynq client and server
	taskClient := tasks.New(redisSvc)
	asynqServer := asynq.NewServer(redisSvc.AsynqRedisOpt(), asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{"default": 1},
	})

	// Core services
	media := ytdlp.NewClient()
	jobSvc := job.NewJobService(redisSvc)
	retentionSvc := retention.NewService(taskClient, cfg)
	extractSvc := extract.NewService(jobSvc, taskClient, media, cfg.TaskMaxRetries)
	downloadSvc := download.NewService(jobSvc, taskClient, redisSvc, media, retentionSvc, cfg)
	thumbnailSvc := thumbnail.NewService(retentionSvc, cfg)
	bridge := download.NewBridge(jobSvc, redisSvc, downloadSvc)

	// Worker mux
	mux := worker.NewMux()
	mux.HandleFunc(extract.TaskTypeExtract, extractSvc.HandleTask)
	mux.HandleFunc(download.TaskTypeDownload, downloadSvc.HandleTask)
	mux.HandleFunc(retention.TaskTypeDeleteThumbnail, retentionSvc.HandleDeleteThumbnail)
	mux.HandleFunc(retention.TaskTypeDeleteMedia, retentionSvc.HandleDeleteMedia)

	// Start worker
	go func() {
		if err := asynqServer.Start(mux.Mux()); err != nil {
			log.Printf("[worker] stopped: %v\n", err)
		}
	}()

	// HTTP server
	app := fiber.New(fiber.Config{
		AppName: "Vidfetch",
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})

	// Only the configured frontend origin may talk to this backend.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.OriginAddr,
		AllowCredentials: true,
		ExposeHeaders:    "*",
	}))

	// Serve produced artifacts
	app.Static("/thumbnails", cfg.ThumbnailDir)
	app.Static("/videos", cfg.VideoDir)

	deps := server.Dependencies{
		Job:       jobSvc,
		Extract:   extractSvc,
		Download:  downloadSvc,
		Bridge:    bridge,
		Thumbnail: thumbnailSvc,
		Tasks:     taskClient,
		Redis:     redisSvc,
	}
	healthHandler := server.RegisterRoutes(app, deps)

	// Mark application as ready after all services are initialized
	go func() {
		time.Sleep(5 * time.Second)
		healthHandler.SetReady()
	}()

	// Graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("Shutting down...")
		asynqServer.Shutdown()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatalf("server listen: %v", err)
	}
}
