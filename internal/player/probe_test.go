package player

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const probeBody = `{
  "format": {"name": "matroska,webm", "duration": 634.56},
  "streams": [
    {"id": 0, "index": 0, "track": "video", "codec": "hevc", "streamBitRate": 0, "streamMaxBitRate": 0,
     "startTime": 0, "startTimeTs": 0, "timescale": 1000, "width": 3840, "height": 2160, "frameRate": 23.976,
     "numberOfFrames": null, "isHdr": true, "isDoVi": false, "hasBFrames": true, "formatBitRate": 25000000,
     "formatMaxBitRate": 0, "bps": 0, "numberOfBytes": 0, "formatDuration": 634.56},
    {"id": 1, "index": 1, "track": "audio", "codec": "eac3", "numberOfFrames": 1200}
  ],
  "samples": {"0": [1, 2, 3]}
}`

func TestProbeClient_Probe(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("mediaURL")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(probeBody))
	}))
	defer srv.Close()

	c, err := NewProbeClient(srv.URL, srv.Client())
	require.NoError(t, err)

	locator := Locator("https://example.com/South Park S27E02 [EZTVx.to].mkv?x=1&y=2")
	res, err := c.Probe(context.Background(), locator)
	require.NoError(t, err)

	assert.Equal(t, "/hlsv2/probe", gotPath)
	assert.Equal(t, string(locator), gotQuery, "locator round-trips through escaping")

	assert.Equal(t, "matroska,webm", res.Format.Name)
	assert.InDelta(t, 634.56, res.Format.Duration, 1e-9)
	require.Len(t, res.Streams, 2)

	video, ok := res.VideoStream()
	require.True(t, ok)
	assert.Equal(t, "hevc", video.Codec)
	assert.Equal(t, 3840, video.Width)
	assert.True(t, video.IsHDR)
	assert.True(t, video.HasBFrames)
	assert.Nil(t, video.NumberOfFrames)

	require.NotNil(t, res.Streams[1].NumberOfFrames)
	assert.Equal(t, int64(1200), *res.Streams[1].NumberOfFrames)
	assert.JSONEq(t, `[1,2,3]`, string(res.Samples["0"]))
}

func TestProbeClient_Probe_server_error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := NewProbeClient(srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = c.Probe(context.Background(), "https://example.com/a.mkv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProbe))
	assert.Contains(t, err.Error(), "Internal Server Error")

	var pe *ProbeError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "Internal Server Error", pe.Status)
}

func TestProbeClient_Probe_bad_body(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c, err := NewProbeClient(srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = c.Probe(context.Background(), "a.mkv")
	assert.True(t, errors.Is(err, ErrProbe))
	assert.Contains(t, err.Error(), "decode probe response")
}

func TestProbeClient_Probe_missing_format(t *testing.T) {
	for name, body := range map[string]string{
		"null":          "null",
		"empty_object":  "{}",
		"streams_only":  `{"streams":[]}`,
		"explicit_null": `{"format":null,"streams":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			c, err := NewProbeClient(srv.URL, srv.Client())
			require.NoError(t, err)

			res, err := c.Probe(context.Background(), "a.mkv")
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrProbe)
			assert.ErrorIs(t, err, errNoFormat)
		})
	}
}

func TestProbeClient_Probe_unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewProbeClient(url, nil)
	require.NoError(t, err)

	_, err = c.Probe(context.Background(), "a.mkv")
	assert.True(t, errors.Is(err, ErrProbe))
}

func TestProbeClient_Probe_canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c, err := NewProbeClient(srv.URL, srv.Client())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Probe(ctx, "a.mkv")
	assert.True(t, errors.Is(err, ErrProbe))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewProbeClient_requires_endpoint(t *testing.T) {
	_, err := NewProbeClient("", nil)
	assert.Error(t, err)

	_, err = NewProbeClient("/relative", nil)
	assert.Error(t, err)
}

func TestProbeClient_endpoint_with_path(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"format":{},"streams":[]}`))
	}))
	defer srv.Close()

	c, err := NewProbeClient(srv.URL+"/proxy/", srv.Client())
	require.NoError(t, err)
	_, err = c.Probe(context.Background(), "a.mkv")
	require.NoError(t, err)
	assert.Equal(t, "/proxy/hlsv2/probe", gotPath)
}
