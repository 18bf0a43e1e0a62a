package player

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Codecs the backend may use for the transcoded stream, in preference order.
// The list is fixed and does not depend on what was probed; the backend
// transcodes anything outside it.
var (
	acceptedVideoCodecs = []string{"h264", "h265", "hevc", "vp9"}
	acceptedAudioCodecs = []string{"aac", "mp3", "opus"}
)

const (
	maxAudioChannels = 2
	manifestName     = "master.m3u8"
)

// URLBuilder builds playback URLs for the backend's HLS API.
type URLBuilder struct {
	endpoint *url.URL
	newID    func() string
}

// NewURLBuilder returns a URLBuilder for the backend at endpoint.
// A missing or relative endpoint is a configuration error.
func NewURLBuilder(endpoint string) (*URLBuilder, error) {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	return &URLBuilder{endpoint: u, newID: newSessionID}, nil
}

// Build returns <endpoint>/hlsv2/<id>/master.m3u8 with the locator and the
// accepted codec list in the query. Every call uses a fresh session id.
func (b *URLBuilder) Build(locator Locator) string {
	u := b.endpoint.JoinPath(apiPrefix, b.newID(), manifestName)
	u.RawQuery = playbackQuery(locator)
	return u.String()
}

// playbackQuery encodes the query by hand: url.Values sorts its keys and the
// backend reads the codec lists as ordered preferences.
func playbackQuery(locator Locator) string {
	var q strings.Builder
	q.WriteString("mediaURL=")
	q.WriteString(url.QueryEscape(string(locator)))
	for _, c := range acceptedVideoCodecs {
		q.WriteString("&videoCodecs=")
		q.WriteString(url.QueryEscape(c))
	}
	for _, c := range acceptedAudioCodecs {
		q.WriteString("&audioCodecs=")
		q.WriteString(url.QueryEscape(c))
	}
	q.WriteString("&maxAudioChannels=")
	q.WriteString(strconv.Itoa(maxAudioChannels))
	return q.String()
}

// newSessionID returns a random (version 4) UUID string.
func newSessionID() string {
	return uuid.NewString()
}
