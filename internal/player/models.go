package player

import "encoding/json"

// Locator identifies a remote media resource. It is passed to the backend
// verbatim and never parsed locally.
type Locator string

// SessionID identifies one player surface registered with the daemon.
type SessionID string

// ProbeFormat describes the probed container.
type ProbeFormat struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
}

// ProbeStream describes a single elementary stream inside the container.
type ProbeStream struct {
	ID               int     `json:"id"`
	Index            int     `json:"index"`
	Track            string  `json:"track"`
	Codec            string  `json:"codec"`
	StreamBitRate    int64   `json:"streamBitRate"`
	StreamMaxBitRate int64   `json:"streamMaxBitRate"`
	StartTime        float64 `json:"startTime"`
	StartTimeTs      int64   `json:"startTimeTs"`
	Timescale        int64   `json:"timescale"`
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	FrameRate        float64 `json:"frameRate"`
	NumberOfFrames   *int64  `json:"numberOfFrames"`
	IsHDR            bool    `json:"isHdr"`
	IsDoVi           bool    `json:"isDoVi"`
	HasBFrames       bool    `json:"hasBFrames"`
	FormatBitRate    int64   `json:"formatBitRate"`
	FormatMaxBitRate int64   `json:"formatMaxBitRate"`
	BPS              int64   `json:"bps"`
	NumberOfBytes    int64   `json:"numberOfBytes"`
	FormatDuration   float64 `json:"formatDuration"`
}

// ProbeResult is the backend's description of a media resource.
// Samples is opaque to this package and kept as raw JSON.
type ProbeResult struct {
	Format  ProbeFormat                `json:"format"`
	Streams []ProbeStream              `json:"streams"`
	Samples map[string]json.RawMessage `json:"samples"`
}

// VideoStream returns the first video stream, if any.
func (p *ProbeResult) VideoStream() (ProbeStream, bool) {
	for _, s := range p.Streams {
		if s.Track == "video" {
			return s, true
		}
	}
	return ProbeStream{}, false
}

// Variant is one rendition listed in a master manifest.
type Variant struct {
	URI        string `json:"uri"`
	Bandwidth  uint32 `json:"bandwidth"`
	Resolution string `json:"resolution,omitempty"`
	Codecs     string `json:"codecs,omitempty"`
}

// Manifest is what an engine reports once the playlist has been parsed.
type Manifest struct {
	Variants       []Variant `json:"variants"`
	TargetDuration float64   `json:"targetDuration"`
	Duration       float64   `json:"duration"`
	SegmentCount   int       `json:"segmentCount"`
	Live           bool      `json:"live"`
}

// SessionView is a point-in-time copy of a controller's state, safe to
// serialize and hand to callers.
type SessionView struct {
	ID          SessionID    `json:"id"`
	State       State        `json:"state"`
	Reason      string       `json:"reason,omitempty"`
	Message     string       `json:"message"`
	Locator     Locator      `json:"mediaURL,omitempty"`
	PlaybackURL string       `json:"playbackURL,omitempty"`
	Probe       *ProbeResult `json:"probe,omitempty"`
	Manifest    *Manifest    `json:"manifest,omitempty"`
}
