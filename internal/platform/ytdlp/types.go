package ytdlp

// Metadata is the extraction result for a single video, decoded from the
// extractor's JSON dump. Only the fields the service consumes are kept.
type Metadata struct {
	Title          string   `json:"title"`
	DurationString string   `json:"duration_string"`
	OriginalURL    string   `json:"original_url"`
	Thumbnail      string   `json:"thumbnail"`
	Formats        []Format `json:"formats"`
}

type Format struct {
	FormatID   string   `json:"format_id"`
	Ext        string   `json:"ext"`
	VCodec     string   `json:"vcodec"`
	Resolution string   `json:"resolution"`
	FPS        *float64 `json:"fps"`
	Filesize   *int64   `json:"filesize"`
}

// Summary is the stripped form returned by the summarized status endpoint.
type Summary struct {
	Name           string   `json:"name"`
	DurationString string   `json:"duration_string"`
	Formats        []Format `json:"formats"`
}

// Summarize strips the metadata down to name, duration and format list.
func (m *Metadata) Summarize() Summary {
	return Summary{
		Name:           m.Title,
		DurationString: m.DurationString,
		Formats:        m.Formats,
	}
}

// Progress is one sample of download progress emitted by the downloader.
type Progress struct {
	Status  string
	Percent string
	ETA     string
	Speed   string
}
