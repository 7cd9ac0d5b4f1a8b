package ytdlp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"vidfetch/internal/logger"

	ytdlplib "github.com/lrstanley/go-ytdlp"
)

// Client drives the yt-dlp binary for metadata extraction and downloads.
// Its internals (format negotiation, muxing) are the tool's business; the
// rest of the service only sees Metadata and Progress values.
type Client struct {
	log *logger.Logger
}

func NewClient() *Client {
	return &Client{log: logger.New("YtDlp")}
}

// ExtractInfo fetches video metadata without downloading anything.
func (c *Client) ExtractInfo(ctx context.Context, url string) (*Metadata, error) {
	dl := ytdlplib.New().
		Quiet().
		NoWarnings().
		SkipDownload().
		DumpSingleJSON()

	res, err := dl.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("extract info: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal([]byte(res.Stdout), &meta); err != nil {
		return nil, fmt.Errorf("decode extractor output: %w", err)
	}
	if meta.OriginalURL == "" {
		meta.OriginalURL = url
	}
	return &meta, nil
}

// DownloadSpec names one format-selected download into a target directory.
type DownloadSpec struct {
	URL    string
	Format string
	Dir    string
}

// Download fetches the selected format merged with best non-webm audio into
// spec.Dir, invoking onProgress as transfer advances.
func (c *Client) Download(ctx context.Context, spec DownloadSpec, onProgress func(Progress)) error {
	dl := ytdlplib.New().
		Format(spec.Format+"+ba[ext!=webm]").
		MergeOutputFormat("mp4").
		Output(filepath.Join(spec.Dir, "%(title)s.%(ext)s"))

	dl.ProgressFunc(500*time.Millisecond, func(update ytdlplib.ProgressUpdate) {
		if onProgress == nil {
			return
		}
		switch update.Status {
		case ytdlplib.ProgressStatusDownloading:
			onProgress(sample(update))
		case ytdlplib.ProgressStatusFinished:
			onProgress(Progress{Status: "finished", Percent: "100.0%"})
		}
	})

	if _, err := dl.Run(ctx, spec.URL); err != nil {
		return fmt.Errorf("download %s: %w", spec.Format, err)
	}
	return nil
}

func sample(update ytdlplib.ProgressUpdate) Progress {
	elapsed := time.Since(update.Started).Seconds()
	var rate float64
	if elapsed > 0 {
		rate = float64(update.DownloadedBytes) / elapsed
	}
	remaining := update.TotalBytes - update.DownloadedBytes

	return Progress{
		Status:  "downloading",
		Percent: fmt.Sprintf("%.1f%%", update.Percent()),
		ETA:     formatETA(remaining, rate),
		Speed:   formatSpeed(rate),
	}
}

// formatETA renders remaining transfer time as mm:ss (or hh:mm:ss), "--:--"
// when the rate is unknown.
func formatETA(remainingBytes int, bytesPerSec float64) string {
	if bytesPerSec <= 0 || remainingBytes < 0 {
		return "--:--"
	}
	secs := int(float64(remainingBytes) / bytesPerSec)
	if secs >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatSpeed(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "--"
	}
	const unit = 1024.0
	switch {
	case bytesPerSec >= unit*unit*unit:
		return fmt.Sprintf("%.2fGiB/s", bytesPerSec/(unit*unit*unit))
	case bytesPerSec >= unit*unit:
		return fmt.Sprintf("%.2fMiB/s", bytesPerSec/(unit*unit))
	case bytesPerSec >= unit:
		return fmt.Sprintf("%.2fKiB/s", bytesPerSec/unit)
	default:
		return fmt.Sprintf("%.0fB/s", bytesPerSec)
	}
}
