// Package api is an HTTP client for the combat server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pefman/squad-combat/internal/models"
)

// Config holds API configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	config Config
	http   *http.Client
}

// Error is a non-2xx reply decoded from the server's error envelope.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api status %d", e.Status)
	}
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

func NewClient(baseURL string) *Client {
	return NewClientWithConfig(Config{BaseURL: baseURL})
}

func NewClientWithConfig(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + path
}

func (c *Client) apiGet(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *Client) apiPost(ctx context.Context, path string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(data, apiErr)
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	var out map[string]string
	if err := c.apiGet(ctx, "/api/healthz", &out); err != nil {
		return err
	}
	if out["status"] != "ok" {
		return fmt.Errorf("unhealthy: %v", out)
	}
	return nil
}

// RunCombat asks the server to resolve a whole combat.
func (c *Client) RunCombat(ctx context.Context, req models.CombatRequest) (models.CombatResponse, error) {
	var out models.CombatResponse
	if err := c.apiPost(ctx, "/api/combat", req, &out); err != nil {
		return models.CombatResponse{}, err
	}
	return out, nil
}

// DefaultRoster fetches the server's built-in roster.
func (c *Client) DefaultRoster(ctx context.Context) ([]models.CombatantSpec, error) {
	var out []models.CombatantSpec
	if err := c.apiGet(ctx, "/api/roster/default", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats fetches the server's aggregate statistics.
func (c *Client) Stats(ctx context.Context) (models.StatsSummary, error) {
	var out models.StatsSummary
	if err := c.apiGet(ctx, "/api/stats", &out); err != nil {
		return models.StatsSummary{}, err
	}
	return out, nil
}
