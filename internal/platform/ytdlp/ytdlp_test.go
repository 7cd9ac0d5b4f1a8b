package ytdlp

import "testing"

func TestFormatETA(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		rate      float64
		want      string
	}{
		{name: "unknown rate", remaining: 1024, rate: 0, want: "--:--"},
		{name: "negative remaining", remaining: -1, rate: 100, want: "--:--"},
		{name: "seconds", remaining: 4500, rate: 100, want: "00:45"},
		{name: "minutes", remaining: 9000, rate: 100, want: "01:30"},
		{name: "hours", remaining: 400000, rate: 100, want: "1:06:40"},
		{name: "nothing left", remaining: 0, rate: 100, want: "00:00"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := formatETA(test.remaining, test.rate); got != test.want {
				t.Errorf("formatETA(%d, %v) = %q, want %q", test.remaining, test.rate, got, test.want)
			}
		})
	}
}

func TestFormatSpeed(t *testing.T) {
	tests := []struct {
		name string
		rate float64
		want string
	}{
		{name: "stalled", rate: 0, want: "--"},
		{name: "bytes", rate: 512, want: "512B/s"},
		{name: "kibibytes", rate: 1536, want: "1.50KiB/s"},
		{name: "mebibytes", rate: 2.5 * 1024 * 1024, want: "2.50MiB/s"},
		{name: "gibibytes", rate: 1024 * 1024 * 1024, want: "1.00GiB/s"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := formatSpeed(test.rate); got != test.want {
				t.Errorf("formatSpeed(%v) = %q, want %q", test.rate, got, test.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	meta := &Metadata{
		Title:          "clip",
		DurationString: "3:15",
		OriginalURL:    "https://www.youtube.com/watch?v=abc12345678",
		Thumbnail:      "https://img.example/t.jpg",
		Formats:        []Format{{FormatID: "299", Ext: "mp4"}, {FormatID: "137", Ext: "mp4"}},
	}

	s := meta.Summarize()
	if s.Name != "clip" || s.DurationString != "3:15" {
		t.Errorf("unexpected summary: %+v", s)
	}
	if len(s.Formats) != 2 || s.Formats[0].FormatID != "299" {
		t.Errorf("formats not carried over: %+v", s.Formats)
	}
}
