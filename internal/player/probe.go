package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Prober describes a media resource without transcoding it.
type Prober interface {
	Probe(ctx context.Context, locator Locator) (*ProbeResult, error)
}

// ProbeClient asks the backend service to probe media resources.
// Every call re-queries the backend; nothing is cached or retried.
type ProbeClient struct {
	endpoint *url.URL
	client   *http.Client
}

// NewProbeClient returns a ProbeClient for the backend at endpoint.
// If client is nil, http.DefaultClient is used.
func NewProbeClient(endpoint string, client *http.Client) (*ProbeClient, error) {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ProbeClient{endpoint: u, client: client}, nil
}

// Probe issues GET <endpoint>/hlsv2/probe?mediaURL=<locator>.
// Non-2xx responses and undecodable bodies yield a *ProbeError.
func (c *ProbeClient) Probe(ctx context.Context, locator Locator) (*ProbeResult, error) {
	u := c.endpoint.JoinPath(apiPrefix, "probe")
	u.RawQuery = "mediaURL=" + url.QueryEscape(string(locator))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &ProbeError{Locator: locator, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &ProbeError{Locator: locator, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProbeError{Locator: locator, Status: statusText(resp)}
	}

	var body probeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &ProbeError{Locator: locator, Err: fmt.Errorf("decode probe response: %w", err)}
	}
	if body.Format == nil {
		return nil, &ProbeError{Locator: locator, Err: errNoFormat}
	}
	return &ProbeResult{
		Format:  *body.Format,
		Streams: body.Streams,
		Samples: body.Samples,
	}, nil
}

// probeResponse mirrors ProbeResult with the format made optional, so that
// a null body or one without a format object can be told apart.
type probeResponse struct {
	Format  *ProbeFormat               `json:"format"`
	Streams []ProbeStream              `json:"streams"`
	Samples map[string]json.RawMessage `json:"samples"`
}

var errNoFormat = errors.New("probe response has no format")

// statusText returns the reason phrase of resp, e.g. "Internal Server Error".
func statusText(resp *http.Response) string {
	if _, text, ok := strings.Cut(resp.Status, " "); ok && text != "" {
		return text
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}

// apiPrefix is the path under the backend root that serves the HLS API.
const apiPrefix = "hlsv2"

var errNoEndpoint = errors.New("backend endpoint is not configured")

func parseEndpoint(endpoint string) (*url.URL, error) {
	if endpoint == "" {
		return nil, errNoEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse backend endpoint: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("backend endpoint %q is not an absolute URL", endpoint)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
