// Package generate talks to the LLM-backed generation backend and hosts the
// built-in providers that stand behind the same contract.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avallon-labs/avallon/internal/interfaces"
	"github.com/avallon-labs/avallon/internal/pages"
	"github.com/avallon-labs/avallon/internal/sanitize"
)

// ErrNoContent means the backend produced nothing usable. Callers surface it
// to the user instead of treating the response as "no changes".
var ErrNoContent = errors.New("no website content was generated")

// Message is one history record on the generation wire. Timestamp marshals
// as an ISO-8601 string.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Request is the generation contract. CurrentPages always carries the full
// page map so the backend can make targeted edits.
type Request struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	SiteID       string           `json:"siteId"`
	Mode         string           `json:"mode"`
	CurrentPages pages.Collection `json:"currentPageMap"`
	History      []Message        `json:"messages,omitempty"`
}

// Response is the backend's answer. An Error field or an empty
// WebsiteContent map is a hard failure.
type Response struct {
	Success        bool              `json:"success,omitempty"`
	Error          string            `json:"error,omitempty"`
	WebsiteContent map[string]string `json:"websiteContent"`
	Message        string            `json:"message,omitempty"`
}

// Client calls an external generation backend over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
	logger   interfaces.Logger
}

// NewClient builds a client for the backend's generate endpoint. The timeout
// bounds the whole request including body read.
func NewClient(backendURL string, timeout time.Duration, logger interfaces.Logger) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(backendURL, "/") + "/sites/generate",
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Generate posts the request and returns the cleaned page map plus the
// backend's chat message. The returned collection is meant to be merged into
// the site's pages, never assigned over them.
func (c *Client) Generate(ctx context.Context, req Request) (pages.Collection, string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("encoding generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("building generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("calling generation backend: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, "", fmt.Errorf("reading generation response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("generation backend returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var parsed Response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, "", fmt.Errorf("decoding generation response: %w", err)
	}
	if parsed.Error != "" {
		return nil, "", fmt.Errorf("generation backend error: %s", parsed.Error)
	}

	cleaned, err := Clean(parsed.WebsiteContent)
	if err != nil {
		return nil, "", err
	}

	c.logger.Info("generation complete",
		interfaces.Field{Key: "site_id", Value: req.SiteID},
		interfaces.Field{Key: "pages", Value: len(cleaned)},
		interfaces.Field{Key: "elapsed", Value: time.Since(start).String()})
	return cleaned, parsed.Message, nil
}

// Clean normalizes raw backend output: fences stripped, keys normalized,
// DOCTYPE-less entries dropped. An empty result is ErrNoContent.
func Clean(content map[string]string) (pages.Collection, error) {
	out := pages.Collection{}
	for name, html := range content {
		html = sanitize.StripCodeFences(html)
		if !pages.IsDocument(html) {
			continue
		}
		out[pages.NormalizeKey(name)] = html
	}
	if len(out) == 0 {
		return nil, ErrNoContent
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
