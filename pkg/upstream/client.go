// Package upstream wraps all network interaction with the remote
// animation-generation/video-serving backend. Each operation makes exactly
// one attempt under its own timeout budget and translates transport
// failures into the errs taxonomy; retry is the caller's decision.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ASHISH26940/manim-asset-gateway/pkg/errs"
	log "github.com/sirupsen/logrus"
)

// Default per-operation budgets. Overridable through Options for tests and
// unusual deployments.
const (
	DefaultHealthTimeout   = 5 * time.Second
	DefaultExistsTimeout   = 10 * time.Second
	DefaultDownloadTimeout = 120 * time.Second
	DefaultListTimeout     = 30 * time.Second
	DefaultCodeTimeout     = 30 * time.Second
)

// Options configures the upstream client.
type Options struct {
	BaseURL         string
	HTTPClient      *http.Client // optional, defaults to a fresh client
	HealthTimeout   time.Duration
	ExistsTimeout   time.Duration
	DownloadTimeout time.Duration
	ListTimeout     time.Duration
	CodeTimeout     time.Duration
}

// Client performs HTTP calls against the upstream backend.
type Client struct {
	baseURL         string
	http            *http.Client
	healthTimeout   time.Duration
	existsTimeout   time.Duration
	downloadTimeout time.Duration
	listTimeout     time.Duration
	codeTimeout     time.Duration
}

// NewClient builds a Client from opts. BaseURL is required.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("upstream: base URL is required")
	}
	c := &Client{
		baseURL:         base,
		http:            opts.HTTPClient,
		healthTimeout:   opts.HealthTimeout,
		existsTimeout:   opts.ExistsTimeout,
		downloadTimeout: opts.DownloadTimeout,
		listTimeout:     opts.ListTimeout,
		codeTimeout:     opts.CodeTimeout,
	}
	if c.http == nil {
		// Budgets are enforced per call via context, not on the client.
		c.http = &http.Client{}
	}
	if c.healthTimeout <= 0 {
		c.healthTimeout = DefaultHealthTimeout
	}
	if c.existsTimeout <= 0 {
		c.existsTimeout = DefaultExistsTimeout
	}
	if c.downloadTimeout <= 0 {
		c.downloadTimeout = DefaultDownloadTimeout
	}
	if c.listTimeout <= 0 {
		c.listTimeout = DefaultListTimeout
	}
	if c.codeTimeout <= 0 {
		c.codeTimeout = DefaultCodeTimeout
	}
	return c, nil
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Health is the upstream health payload.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// VideoDescriptor is one entry of the upstream listing.
type VideoDescriptor struct {
	ClassName          string `json:"class_name"`
	Filename           string `json:"filename"`
	HasBackgroundMusic bool   `json:"has_background_music"`
	RelativePath       string `json:"relative_path"`
}

// VideoList is the upstream listing response.
type VideoList struct {
	Status     string            `json:"status"`
	Videos     []VideoDescriptor `json:"videos"`
	TotalCount int               `json:"total_count"`
}

// LatestCode is the most recently generated Manim source upstream.
type LatestCode struct {
	Status    string `json:"status"`
	ManimCode string `json:"manim_code"`
	ClassName string `json:"class_name"`
	Filename  string `json:"filename"`
}

// HealthCheck probes the service root. 5s budget; used by the UI poll loop,
// never by the fetch path.
func (c *Client) HealthCheck(ctx context.Context) (*Health, error) {
	const op = "upstream.HealthCheck"
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return nil, errs.E(errs.KindConnection, op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.EStatus(errs.KindUpstream, op, resp.StatusCode, nil)
	}

	var health Health
	if err := decodeJSON(resp.Body, &health); err != nil {
		return nil, errs.E(errs.KindUpstream, op, err)
	}
	return &health, nil
}

// Exists probes `GET /video/{key}` with a two-byte range request. True for
// any success status including 206 Partial Content. Transport failures are
// real errors at this layer; the gateway downgrades them for its advisory
// pre-flight check.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	const op = "upstream.Exists"
	ctx, cancel := context.WithTimeout(ctx, c.existsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.videoURL(key), nil)
	if err != nil {
		return false, errs.E(errs.KindConnection, op, err)
	}
	req.Header.Set("Accept", "video/mp4")
	// Only the first two bytes; enough to learn the status without
	// transferring the asset.
	req.Header.Set("Range", "bytes=0-1")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, classifyTransport(op, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode <= 299, nil
}

// Download fetches the full asset body for key. 404 maps to NotFound, other
// non-2xx to Upstream.
func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	const op = "upstream.Download"
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	url := c.videoURL(key)
	log.Debugf("Fetching video from: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.E(errs.KindConnection, op, err)
	}
	req.Header.Set("Accept", "video/mp4")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errs.EStatus(errs.KindNotFound, op, resp.StatusCode,
			fmt.Errorf("video not found for class %q", key))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, errs.EStatus(errs.KindUpstream, op, resp.StatusCode, nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(op, err)
	}
	return data, nil
}

// List fetches the upstream video listing.
func (c *Client) List(ctx context.Context) (*VideoList, error) {
	const op = "upstream.List"
	ctx, cancel := context.WithTimeout(ctx, c.listTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos/list", nil)
	if err != nil {
		return nil, errs.E(errs.KindConnection, op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.EStatus(errs.KindUpstream, op, resp.StatusCode, nil)
	}

	var list VideoList
	if err := decodeJSON(resp.Body, &list); err != nil {
		return nil, errs.E(errs.KindUpstream, op, err)
	}
	return &list, nil
}

// LatestCode fetches the most recently generated Manim source.
func (c *Client) LatestCode(ctx context.Context) (*LatestCode, error) {
	const op = "upstream.LatestCode"
	ctx, cancel := context.WithTimeout(ctx, c.codeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/code/latest", nil)
	if err != nil {
		return nil, errs.E(errs.KindConnection, op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errs.EStatus(errs.KindUpstream, op, resp.StatusCode, nil)
	}

	var code LatestCode
	if err := decodeJSON(resp.Body, &code); err != nil {
		return nil, errs.E(errs.KindUpstream, op, err)
	}
	return &code, nil
}

// OriginalVideoURL returns the direct upstream URL for the unprocessed
// original video. No local caching for this path.
func (c *Client) OriginalVideoURL(key string) string {
	return c.baseURL + "/video/original/" + key
}

func (c *Client) videoURL(key string) string {
	return c.baseURL + "/video/" + key
}

// classifyTransport splits request failures into timeout vs. connection
// errors. Context deadline expiry is the cancellation signal for every
// budgeted call.
func classifyTransport(op string, err error) *errs.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.E(errs.KindTimeout, op, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errs.E(errs.KindTimeout, op, err)
	}
	return errs.E(errs.KindConnection, op, err)
}
