package config

import (
	"path/filepath"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("FRONT_END_ORIGIN", "http://localhost:3000")
	t.Setenv("REDIS_ADDR", "127.0.0.1:6379")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ThumbnailRetention != 600*time.Second {
		t.Errorf("ThumbnailRetention = %v, want 600s", cfg.ThumbnailRetention)
	}
	if cfg.MediaRetention != 3600*time.Second {
		t.Errorf("MediaRetention = %v, want 3600s", cfg.MediaRetention)
	}
	if !filepath.IsAbs(cfg.ThumbnailDir) {
		t.Errorf("ThumbnailDir %q should be absolute", cfg.ThumbnailDir)
	}
	if !filepath.IsAbs(cfg.VideoDir) {
		t.Errorf("VideoDir %q should be absolute", cfg.VideoDir)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name string
		set  map[string]string
	}{
		{name: "missing origin", set: map[string]string{"REDIS_ADDR": "127.0.0.1:6379"}},
		{name: "missing redis", set: map[string]string{"FRONT_END_ORIGIN": "http://localhost:3000"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv("FRONT_END_ORIGIN", "")
			t.Setenv("REDIS_ADDR", "")
			for k, v := range test.set {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() should fail when a required variable is missing")
			}
		})
	}
}

func TestLoadInvalidDurations(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "thumbnail duration not integer", key: "THUMBNAIL_PERSISTENCE_DURATION", value: "soon"},
		{name: "video duration not integer", key: "VIDEO_PERSISTENCE_DURATION", value: "1h"},
		{name: "max retries not integer", key: "TASK_MAX_RETRIES", value: "many"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(test.key, test.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() should reject %s=%q", test.key, test.value)
			}
		})
	}
}

func TestLoadCustomValues(t *testing.T) {
	setRequired(t)
	t.Setenv("THUMBNAIL_PERSISTENCE_DURATION", "120")
	t.Setenv("VIDEO_PERSISTENCE_DURATION", "7200")
	t.Setenv("THUMBNAIL_PATH", "/srv/thumbs")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ThumbnailRetention != 120*time.Second {
		t.Errorf("ThumbnailRetention = %v, want 120s", cfg.ThumbnailRetention)
	}
	if cfg.MediaRetention != 7200*time.Second {
		t.Errorf("MediaRetention = %v, want 7200s", cfg.MediaRetention)
	}
	if cfg.ThumbnailDir != "/srv/thumbs" {
		t.Errorf("ThumbnailDir = %q, absolute paths should pass through", cfg.ThumbnailDir)
	}
}
