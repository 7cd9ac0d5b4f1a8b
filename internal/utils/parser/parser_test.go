package parser

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

type queryParams struct {
	URL     string `form:"url"`
	Limit   int    `form:"limit"`
	Fresh   bool   `form:"fresh"`
	Skipped string `form:"-"`
	NoTag   string
}

func parse(t *testing.T, target string, out interface{}) error {
	t.Helper()
	app := fiber.New()
	var parseErr error
	app.Get("/", func(c *fiber.Ctx) error {
		parseErr = ParseQuery(c, out)
		return nil
	})
	if _, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil)); err != nil {
		t.Fatal(err)
	}
	return parseErr
}

func TestParseQuery(t *testing.T) {
	var p queryParams
	if err := parse(t, "/?url=https%3A%2F%2Fexample.com&limit=5&fresh=true", &p); err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if p.URL != "https://example.com" {
		t.Errorf("URL = %q", p.URL)
	}
	if p.Limit != 5 {
		t.Errorf("Limit = %d", p.Limit)
	}
	if !p.Fresh {
		t.Error("Fresh should be true")
	}
}

func TestParseQueryMissingParamsLeaveZeroValues(t *testing.T) {
	p := queryParams{Limit: 7}
	if err := parse(t, "/", &p); err != nil {
		t.Fatalf("ParseQuery: %v", err)
	}
	if p.URL != "" || p.Limit != 7 {
		t.Errorf("fields should be untouched: %+v", p)
	}
}

func TestParseQueryInvalidInt(t *testing.T) {
	var p queryParams
	if err := parse(t, "/?limit=abc", &p); err == nil {
		t.Error("non-numeric int param should fail")
	}
}

func TestParseQueryRequiresStructPointer(t *testing.T) {
	var s string
	if err := parse(t, "/", &s); err == nil {
		t.Error("non-struct target should fail")
	}
}
