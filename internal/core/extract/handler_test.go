package extract

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"vidfetch/internal/core/job"
	"vidfetch/internal/platform/ytdlp"

	"github.com/gofiber/fiber/v2"
)

type fakeSubmitter struct {
	id   string
	err  error
	urls []string
}

func (f *fakeSubmitter) Enqueue(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	return f.id, f.err
}

type fakeSnapshots struct{ jobs map[string]job.Job }

func (f *fakeSnapshots) Snapshot(_ context.Context, jobID string) job.Job {
	if j, ok := f.jobs[jobID]; ok {
		return j
	}
	return job.Job{JobID: jobID, State: job.StatePending}
}

type fakePinger struct{ err error }

func (f *fakePinger) Ping(context.Context) error { return f.err }

type fakeQueueHealth struct{ err error }

func (f *fakeQueueHealth) Healthy() error { return f.err }

func testApp(h *Handler) *fiber.App {
	app := fiber.New()
	app.Get("/video", h.HandleSubmit)
	app.Get("/video/details/:taskID", h.HandleDetails)
	app.Get("/video/download/:taskID", h.HandleDownloadDetails)
	app.Get("/video/:taskID", h.HandleStatus)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(b, &body); err != nil {
		t.Fatalf("decode %q: %v", b, err)
	}
	return body
}

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "watch url", url: "https://www.youtube.com/watch?v=abc12345678", want: "abc12345678"},
		{name: "watch url with extras", url: "https://www.youtube.com/watch?v=abc12345678&t=10s", want: "abc12345678"},
		{name: "short url", url: "https://youtu.be/abc12345678", want: "abc12345678"},
		{name: "no video id", url: "https://example.com/watch?x=1", wantErr: true},
		{name: "empty query", url: "https://www.youtube.com/watch", wantErr: true},
		{name: "bare short url", url: "https://youtu.be/", wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseVideoID(test.url)
			if test.wantErr {
				if err == nil {
					t.Errorf("ParseVideoID(%q) should fail", test.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVideoID: %v", err)
			}
			if got != test.want {
				t.Errorf("ParseVideoID = %q, want %q", got, test.want)
			}
		})
	}
}

func TestHandleSubmit(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		relayErr   error
		queueErr   error
		submitErr  error
		wantStatus int
	}{
		{name: "ok", target: "/video?url=" + url.QueryEscape("https://www.youtube.com/watch?v=abc12345678"), wantStatus: fiber.StatusOK},
		{name: "relay down", target: "/video?url=x", relayErr: errors.New("down"), wantStatus: fiber.StatusServiceUnavailable},
		{name: "queue down", target: "/video?url=x", queueErr: errors.New("down"), wantStatus: fiber.StatusServiceUnavailable},
		{name: "missing url", target: "/video", wantStatus: fiber.StatusBadRequest},
		{name: "no video id", target: "/video?url=" + url.QueryEscape("https://example.com/clip"), wantStatus: fiber.StatusBadRequest},
		{name: "enqueue fails", target: "/video?url=" + url.QueryEscape("https://www.youtube.com/watch?v=abc12345678"), submitErr: errors.New("broker down"), wantStatus: fiber.StatusServiceUnavailable},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			submitter := &fakeSubmitter{id: "e1", err: test.submitErr}
			h := NewHandler(submitter, &fakeSnapshots{}, &fakePinger{err: test.relayErr}, &fakeQueueHealth{err: test.queueErr})
			app := testApp(h)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, test.target, nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != test.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, test.wantStatus)
			}
			if test.wantStatus != fiber.StatusOK {
				return
			}
			body := decodeBody(t, resp)
			if body["task_id"] != "e1" || body["status"] != "processing" {
				t.Errorf("unexpected body: %v", body)
			}
			if len(submitter.urls) != 1 || submitter.urls[0] != "https://www.youtube.com/watch?v=abc12345678" {
				t.Errorf("submitted with canonical URL %v", submitter.urls)
			}
		})
	}
}

func TestHandleSubmitCanonicalizesShortURL(t *testing.T) {
	submitter := &fakeSubmitter{id: "e1"}
	h := NewHandler(submitter, &fakeSnapshots{}, &fakePinger{}, &fakeQueueHealth{})
	app := testApp(h)

	target := "/video?url=" + url.QueryEscape("https://youtu.be/abc12345678")
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if len(submitter.urls) != 1 || submitter.urls[0] != "https://www.youtube.com/watch?v=abc12345678" {
		t.Errorf("canonical URL = %v", submitter.urls)
	}
}

func TestHandleStatusShapes(t *testing.T) {
	jobs := &fakeSnapshots{jobs: map[string]job.Job{
		"done": {
			JobID: "done",
			State: job.StateSuccess,
			Result: &job.Result{Metadata: &ytdlp.Metadata{
				Title:          "clip",
				DurationString: "3:15",
				Formats:        []ytdlp.Format{{FormatID: "299", Ext: "mp4"}},
			}},
		},
		"failed": {JobID: "failed", State: job.StateFailure, Error: "boom"},
	}}
	h := NewHandler(&fakeSubmitter{}, jobs, &fakePinger{}, &fakeQueueHealth{})
	app := testApp(h)

	tests := []struct {
		name       string
		target     string
		wantStatus string
	}{
		{name: "unknown id is pending", target: "/video/ghost", wantStatus: "pending"},
		{name: "completed summary", target: "/video/done", wantStatus: "completed"},
		{name: "failure is retry", target: "/video/failed", wantStatus: "retry"},
		{name: "details completed", target: "/video/details/done", wantStatus: "completed"},
		{name: "download unknown is processing", target: "/video/download/ghost", wantStatus: "processing"},
		{name: "download failure is failed", target: "/video/download/failed", wantStatus: "failed"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, test.target, nil))
			if err != nil {
				t.Fatal(err)
			}
			body := decodeBody(t, resp)
			if body["status"] != test.wantStatus {
				t.Errorf("status = %v, want %s", body["status"], test.wantStatus)
			}
		})
	}
}

func TestHandleStatusSummaryStripsMetadata(t *testing.T) {
	jobs := &fakeSnapshots{jobs: map[string]job.Job{
		"done": {
			JobID: "done",
			State: job.StateSuccess,
			Result: &job.Result{Metadata: &ytdlp.Metadata{
				Title:          "clip",
				DurationString: "3:15",
				OriginalURL:    "https://www.youtube.com/watch?v=abc12345678",
				Thumbnail:      "https://img.example/t.jpg",
				Formats:        []ytdlp.Format{{FormatID: "299"}},
			}},
		},
	}}
	h := NewHandler(&fakeSubmitter{}, jobs, &fakePinger{}, &fakeQueueHealth{})
	app := testApp(h)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/video/done", nil))
	if err != nil {
		t.Fatal(err)
	}
	body := decodeBody(t, resp)
	result, ok := body["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("result missing: %v", body)
	}
	if result["name"] != "clip" {
		t.Errorf("summary name = %v", result["name"])
	}
	if _, leaked := result["original_url"]; leaked {
		t.Error("summary must strip the raw metadata fields")
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/video/details/done", nil))
	if err != nil {
		t.Fatal(err)
	}
	body = decodeBody(t, resp)
	result, ok = body["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("result missing: %v", body)
	}
	if result["original_url"] != "https://www.youtube.com/watch?v=abc12345678" {
		t.Error("details must return the raw metadata")
	}
}
