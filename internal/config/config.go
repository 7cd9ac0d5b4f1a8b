package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and handed to every component that needs
// it. Nothing reads the environment after Load returns.
type Config struct {
	AppEnv        string
	HTTPAddr      string
	OriginAddr    string
	RedisAddr     string
	RedisPassword string

	// Absolute artifact directories, resolved from THUMBNAIL_PATH / VIDEO_PATH.
	ThumbnailDir string
	VideoDir     string

	// Retention windows for produced artifacts.
	ThumbnailRetention time.Duration
	MediaRetention     time.Duration

	TaskMaxRetries int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an integer, got %q", key, v)
	}
	return i, nil
}

// Load reads the environment (and a .env file when present) into a Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppEnv:        getenv("APP_ENV", "development"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8000"),
		OriginAddr:    os.Getenv("FRONT_END_ORIGIN"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}
	if cfg.OriginAddr == "" {
		return Config{}, fmt.Errorf("environment variable FRONT_END_ORIGIN is missing or empty")
	}
	if cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("environment variable REDIS_ADDR is missing or empty")
	}

	thumbSecs, err := getenvInt("THUMBNAIL_PERSISTENCE_DURATION", 600)
	if err != nil {
		return Config{}, err
	}
	mediaSecs, err := getenvInt("VIDEO_PERSISTENCE_DURATION", 3600)
	if err != nil {
		return Config{}, err
	}
	cfg.ThumbnailRetention = time.Duration(thumbSecs) * time.Second
	cfg.MediaRetention = time.Duration(mediaSecs) * time.Second

	cfg.TaskMaxRetries, err = getenvInt("TASK_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, err
	}

	cfg.ThumbnailDir, err = absDir(getenv("THUMBNAIL_PATH", "thumbnails"))
	if err != nil {
		return Config{}, err
	}
	cfg.VideoDir, err = absDir(getenv("VIDEO_PATH", "videos"))
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func absDir(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	return abs, nil
}
