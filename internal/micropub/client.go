// Package micropub publishes clippings posts through a Micropub
// endpoint with bearer auth.
package micropub

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"clippings/internal/logger"
)

const maxErrorBody = 4096

// Publish errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrNoLocation           = errors.New("create response carried no Location header")
)

// Post is the content handed to the publisher.
type Post struct {
	Title       string
	Body        string
	Date        time.Time
	Category    string // optional
	PublishTime string // HH:MM, appended to the date on create
	ExistingURL string // set when updating an already-published post
}

// Slug returns the mp-slug hint for the post: the normalized category
// prefix plus the date, or the date alone. The service is free to
// ignore the hint.
func (p Post) Slug() string {
	date := p.Date.Format("2006-01-02")
	if p.Category == "" {
		return date
	}

	normalized, err := slug.Normalize(p.Category)
	if err != nil || normalized == "" {
		normalized = strings.ToLower(p.Category)
	}

	return normalized + "-" + date
}

// Client talks to one Micropub endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	logger     logger.Logger
}

// NewClient creates a Micropub client.
func NewClient(endpoint, token string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
		token:      token,
		logger:     log,
	}
}

// Publish creates the post, or updates it in place when it already has
// a URL. It returns the canonical post URL. There are no retries; a
// failed run is simply re-run.
func (c *Client) Publish(post Post) (string, error) {
	if post.ExistingURL != "" {
		if c.logger != nil {
			c.logger.Debug("updating post", logger.String("url", post.ExistingURL))
		}

		if err := c.update(post); err != nil {
			return "", err
		}

		return post.ExistingURL, nil
	}

	if c.logger != nil {
		c.logger.Debug("creating post", logger.String("slug", post.Slug()))
	}

	return c.create(post)
}

// create sends a form-encoded h=entry request, per the Micropub create
// flow, and reads the new post URL from the Location header.
func (c *Client) create(post Post) (string, error) {
	form := url.Values{}
	form.Set("h", "entry")
	form.Set("name", post.Title)
	form.Set("content", post.Body)
	form.Set("published", post.Date.Format("2006-01-02")+"T"+post.PublishTime+":00")
	form.Set("mp-slug", post.Slug())

	if post.Category != "" {
		form.Set("category", post.Category)
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("micropub request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return "", statusError(resp)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", ErrNoLocation
	}

	return location, nil
}

// update sends a JSON action=update request replacing content and name
// on the existing post.
func (c *Client) update(post Post) error {
	payload := map[string]interface{}{
		"action": "update",
		"url":    post.ExistingURL,
		"replace": map[string][]string{
			"content": {post.Body},
			"name":    {post.Title},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal update request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("micropub request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError(resp)
	}

	return nil
}

// statusError surfaces the remote status and message.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	return fmt.Errorf("%w: %d: %s",
		ErrUnexpectedStatusCode, resp.StatusCode, strings.TrimSpace(string(body)))
}
