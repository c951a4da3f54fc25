// Package cms is a small client for the headless CMS that hosts the practice
// content: pages, services, staff, announcements and the SEO documents the
// resolver reads. Every read goes through the CMS query API with
// parameterised GROQ queries.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a single-document query matches nothing.
var ErrNotFound = errors.New("cms: document not found")

// Config holds the CMS connection settings.
type Config struct {
	ProjectID  string
	Dataset    string // default "production"
	APIVersion string // default "2024-01-01"
	Token      string // optional, sent as a bearer token
	UseCDN     bool

	// BaseURL overrides the host derived from ProjectID and UseCDN.
	BaseURL string

	Timeout      time.Duration // default 10s
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

func (c *Config) setDefaults() {
	if c.Dataset == "" {
		c.Dataset = "production"
	}
	if c.APIVersion == "" {
		c.APIVersion = "2024-01-01"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.BaseURL == "" {
		host := "api.sanity.io"
		if c.UseCDN {
			host = "apicdn.sanity.io"
		}
		c.BaseURL = fmt.Sprintf("https://%s.%s", c.ProjectID, host)
	}
}

// StatusError is returned when the CMS answers with a non-2xx status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("cms: status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("cms: status %d", e.Code)
}

// Client reads documents from the CMS.
type Client struct {
	http   *resty.Client
	cfg    Config
	logger *zap.Logger
}

// New creates a Client. A nil logger disables logging.
func New(cfg Config, logger *zap.Logger) *Client {
	cfg.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	hc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		hc.SetAuthToken(cfg.Token)
	}
	return &Client{http: hc, cfg: cfg, logger: logger}
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Description string `json:"description"`
	} `json:"error"`
}

// Query runs a GROQ query and decodes its result into out. Each entry of
// params is bound as $name and JSON-encoded, so values are never spliced into
// the query text. A null result yields ErrNotFound.
func (c *Client) Query(ctx context.Context, query string, params map[string]any, out any) error {
	req := c.http.R().SetContext(ctx).SetQueryParam("query", query)
	for name, v := range params {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("cms: encode param %s: %w", name, err)
		}
		req.SetQueryParam("$"+name, string(b))
	}

	var env envelope
	path := fmt.Sprintf("/v%s/data/query/%s", c.cfg.APIVersion, c.cfg.Dataset)
	resp, err := req.SetResult(&env).SetError(&env).Get(path)
	if err != nil {
		c.logger.Error("cms query failed", zap.Error(err), zap.String("query", query))
		return fmt.Errorf("cms: query: %w", err)
	}
	if resp.IsError() {
		se := &StatusError{Code: resp.StatusCode()}
		if env.Error != nil {
			se.Message = env.Error.Description
		}
		c.logger.Error("cms returned error",
			zap.Int("status_code", se.Code),
			zap.String("message", se.Message),
			zap.String("query", query),
		)
		return se
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return ErrNotFound
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("cms: decode result: %w", err)
	}
	c.logger.Debug("cms query", zap.String("query", query), zap.Duration("took", resp.Time()))
	return nil
}

// ImageURL converts an image asset reference such as
// "image-abc123-1200x630-jpg" into its CDN URL. Malformed references yield "".
func (c *Client) ImageURL(ref string) string {
	return ImageURL(c.cfg.ProjectID, c.cfg.Dataset, ref)
}
