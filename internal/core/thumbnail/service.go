package thumbnail

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"vidfetch/internal/config"
	"vidfetch/internal/logger"
)

// Scheduler queues deferred thumbnail deletion. *retention.Service
// satisfies it.
type Scheduler interface {
	ScheduleThumbnailCleanup(jobID string) error
}

// Service fetches a video's thumbnail image, persists it under the job id,
// and schedules its deletion.
type Service struct {
	retention Scheduler
	cfg       config.Config
	client    *http.Client
	log       *logger.Logger
}

func NewService(retention Scheduler, cfg config.Config) *Service {
	return &Service{
		retention: retention,
		cfg:       cfg,
		client:    &http.Client{Timeout: 30 * time.Second},
		log:       logger.New("ThumbnailService"),
	}
}

// Fetch downloads the image at imageURL, saves it as <jobID><ext> in the
// thumbnail directory, schedules its deletion, and returns the relative URL
// it is served at. Fetching the same job id again overwrites the same file
// and schedules another deletion.
func (s *Service) Fetch(ctx context.Context, jobID, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build thumbnail request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch thumbnail: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch thumbnail: unexpected status %d", resp.StatusCode)
	}

	ext, err := InferExtension(imageURL, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.cfg.ThumbnailDir, 0o755); err != nil {
		return "", err
	}
	filename := jobID + ext
	full := filepath.Join(s.cfg.ThumbnailDir, filename)

	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	if err := s.retention.ScheduleThumbnailCleanup(jobID); err != nil {
		s.log.LogWarnf("thumbnail cleanup not scheduled for %s: %v", jobID, err)
	}

	s.log.LogInfof("saved thumbnail %s", full)
	return "/thumbnails/" + filename, nil
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/bmp":  ".bmp",
	"image/webp": ".webp",
}

var allowedSuffixes = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}

// InferExtension determines the image extension from the Content-Type
// header, falling back to the URL path suffix.
func InferExtension(rawURL, contentType string) (string, error) {
	ct := contentType
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(strings.ToLower(ct))
	if ext, ok := imageExtensions[ct]; ok {
		return ext, nil
	}

	if u, err := url.Parse(rawURL); err == nil {
		ext := strings.ToLower(path.Ext(u.Path))
		for _, allowed := range allowedSuffixes {
			if ext == allowed {
				return ext, nil
			}
		}
	}

	return "", fmt.Errorf("could not determine image extension for %q", rawURL)
}
