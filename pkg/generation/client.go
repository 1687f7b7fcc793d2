// Package generation wraps the long-running "generate animation from
// prompt" upstream call. The 720s default budget is deliberate: the
// synthesis pipeline upstream takes multiple minutes, and callers must not
// apply a generic short timeout to this one path.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ASHISH26940/manim-asset-gateway/pkg/errs"
	log "github.com/sirupsen/logrus"
)

// DefaultTimeout is the shipped generation budget.
const DefaultTimeout = 720 * time.Second

// State tracks one request cycle: idle -> requesting -> succeeded|failed.
// Both end states are terminal; a new Generate call always starts a fresh
// cycle.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the structured response of a completed generation.
type Result struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	ClassName         string `json:"class_name"`
	OriginalClassName string `json:"original_class_name"`
	VideoPath         string `json:"video_path"`
	RelativePath      string `json:"relative_path"`
	ManimCode         string `json:"manim_code"`
	FilteredPrompt    string `json:"filtered_prompt"`
}

// Options configures the generation client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client issues generation requests. Every call triggers a fresh upstream
// computation; there is no retry and no caching at this layer.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration

	mu    sync.Mutex
	state State
}

// NewClient builds a Client from opts. BaseURL is required.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("generation: base URL is required")
	}
	c := &Client{
		baseURL: base,
		http:    opts.HTTPClient,
		timeout: opts.Timeout,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	return c, nil
}

// State returns the state of the most recent request cycle.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Generate POSTs the prompt and blocks until the upstream finishes or the
// budget expires. Connection kind when unreachable, Timeout kind past the
// budget, Generation kind for any other non-2xx.
func (c *Client) Generate(ctx context.Context, prompt string) (*Result, error) {
	const op = "generation.Generate"

	c.setState(StateRequesting)
	result, err := c.generate(ctx, op, prompt)
	if err != nil {
		c.setState(StateFailed)
		return nil, err
	}
	c.setState(StateSucceeded)
	return result, nil
}

func (c *Client) generate(ctx context.Context, op, prompt string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, errs.E(errs.KindGeneration, op, err)
	}

	log.Infof("Sending generation request to upstream (budget %s)", c.timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/generate-animation", bytes.NewReader(body))
	if err != nil {
		return nil, errs.E(errs.KindConnection, op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errs.E(errs.KindTimeout, op, err)
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, errs.E(errs.KindTimeout, op, err)
		}
		return nil, errs.E(errs.KindConnection, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp struct {
			Detail  string `json:"detail"`
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		detail := errResp.Detail
		if detail == "" {
			detail = errResp.Message
		}
		var cause error
		if detail != "" {
			cause = fmt.Errorf("%s", detail)
		}
		return nil, errs.EStatus(errs.KindGeneration, op, resp.StatusCode, cause)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errs.E(errs.KindGeneration, op, err)
	}

	log.Infof("Generation finished upstream: class %q (status %q)", result.ClassName, result.Status)
	return &result, nil
}
