// Package upstream talks to the university course-registration API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/qldt-dashboard/internal/models"
	"github.com/noah-isme/qldt-dashboard/pkg/config"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"

	maxErrorBody = 512
)

// Endpoint labels used for logging and metrics.
const (
	EndpointLogin    = "login"
	EndpointLogout   = "logout"
	EndpointCourses  = "courses"
	EndpointSections = "sections"
	EndpointRegister = "register"
)

// Observer receives the outcome of every upstream call. Status is 0 when the
// request failed before a response arrived.
type Observer interface {
	ObserveUpstreamCall(endpoint string, status int, duration time.Duration)
}

// Client issues POST requests to the fixed upstream host. It never retries.
type Client struct {
	cfg      config.UpstreamConfig
	http     *http.Client
	logger   *zap.Logger
	observer Observer
}

// NewClient builds a client for cfg. A zero Timeout keeps net/http's default
// of waiting indefinitely.
func NewClient(cfg config.UpstreamConfig, logger *zap.Logger, observer Observer) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("upstream base url not configured")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse upstream base url: %w", err)
	}
	if cfg.SectionPageLimit <= 0 {
		cfg.SectionPageLimit = 99999
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil || proxy.Host == "" {
			return nil, fmt.Errorf("invalid upstream proxy url %q", cfg.ProxyURL)
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(proxy)
		httpClient.Transport = transport
	}

	return &Client{
		cfg:      cfg,
		http:     httpClient,
		logger:   logger.Named("upstream"),
		observer: observer,
	}, nil
}

// Post sends body to path and returns the raw 2xx response body. The token,
// when set, travels as a bearer Authorization header; contentType overrides
// the default JSON content type.
func (c *Client) Post(ctx context.Context, endpoint, path string, body io.Reader, token, contentType string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, 0, time.Since(start))
		c.logger.Warn("upstream request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	c.observe(endpoint, resp.StatusCode, duration)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("upstream call",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", duration),
		zap.Int("bytes", len(payload)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       snippet(payload),
		}
	}

	return json.RawMessage(payload), nil
}

func (c *Client) postJSON(ctx context.Context, endpoint, path string, payload interface{}, token string) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("marshal request: %w", err)}
	}
	return c.Post(ctx, endpoint, path, bytes.NewReader(body), token, "")
}

// Login exchanges credentials for an access token using the password grant.
func (c *Client) Login(ctx context.Context, username, password string) (json.RawMessage, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("grant_type", "password")
	return c.Post(ctx, EndpointLogin, c.cfg.LoginPath, strings.NewReader(form.Encode()), "", contentTypeForm)
}

// Logout invalidates token upstream.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.postJSON(ctx, EndpointLogout, c.cfg.LogoutPath, struct{}{}, token)
	return err
}

type coursesRequest struct {
	IsCVHT  bool `json:"is_CVHT"`
	IsClear bool `json:"is_Clear"`
}

// RegisteredCourses fetches the student's registration results.
func (c *Client) RegisteredCourses(ctx context.Context, token string) (json.RawMessage, error) {
	return c.postJSON(ctx, EndpointCourses, c.cfg.CoursesPath, coursesRequest{IsCVHT: false, IsClear: true}, token)
}

type paging struct {
	Limit int `json:"limit"`
	Page  int `json:"page"`
}

type ordering struct {
	Name      string `json:"name"`
	OrderType string `json:"order_type"`
}

type sectionsRequest struct {
	IsCVHT     bool `json:"is_CVHT"`
	Additional struct {
		Paging   paging     `json:"paging"`
		Ordering []ordering `json:"ordering"`
	} `json:"additional"`
}

// Sections fetches every open section group together with the course names.
func (c *Client) Sections(ctx context.Context, token string) (json.RawMessage, error) {
	var req sectionsRequest
	req.Additional.Paging = paging{Limit: c.cfg.SectionPageLimit, Page: 1}
	req.Additional.Ordering = []ordering{{}}
	return c.postJSON(ctx, EndpointSections, c.cfg.SectionsPath, req, token)
}

type registerFilter struct {
	SectionID interface{} `json:"id_to_hoc"`
	IsChecked bool        `json:"is_checked"`
	Major     int         `json:"sv_nganh"`
}

type registerRequest struct {
	Filter registerFilter `json:"filter"`
}

// RegisterSection asks the upstream to enrol the student into one section.
// The section id is sent back in the representation the catalog delivered.
func (c *Client) RegisterSection(ctx context.Context, token string, entry models.CartEntry) (json.RawMessage, error) {
	var id interface{} = entry.SectionID
	if len(entry.RawID) > 0 {
		id = entry.RawID
	}
	req := registerRequest{Filter: registerFilter{SectionID: id, IsChecked: true, Major: 1}}
	return c.postJSON(ctx, EndpointRegister, c.cfg.RegisterPath, req, token)
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstreamCall(endpoint, status, duration)
	}
}

func snippet(body []byte) string {
	text := []rune(strings.TrimSpace(string(body)))
	if len(text) > maxErrorBody {
		return string(text[:maxErrorBody]) + "..."
	}
	return string(text)
}
