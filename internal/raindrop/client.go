// Package raindrop implements the bookmark source against the
// Raindrop.io REST API.
package raindrop

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"clippings/internal/logger"
	"clippings/internal/models"
)

const (
	perPage       = 50
	maxErrorBody  = 4096
	logTitleWidth = 60
)

// Fetch errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrCollectionNotFound   = errors.New("collection not found")
)

// Window selects the local calendar dates a bookmark may fall on: the
// end date plus the Days-1 dates before it.
type Window struct {
	End  time.Time
	Days int
}

// Contains reports whether the calendar date of t (already converted
// to the decision timezone) falls inside the window.
func (w Window) Contains(t time.Time) bool {
	days := w.Days
	if days < 1 {
		days = 1
	}

	day := t.Format("2006-01-02")
	for i := 0; i < days; i++ {
		if w.End.AddDate(0, 0, -i).Format("2006-01-02") == day {
			return true
		}
	}

	return false
}

// Client queries the Raindrop REST API with bearer auth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	loc        *time.Location
	logger     logger.Logger
}

// NewClient creates a Raindrop client. Date-window decisions use the
// local timezone unless overridden with WithLocation.
func NewClient(baseURL, token string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		loc:        time.Local,
		logger:     log,
	}
}

// WithLocation overrides the timezone used to decide which calendar
// date a bookmark belongs to.
func (c *Client) WithLocation(loc *time.Location) *Client {
	c.loc = loc
	return c
}

type collectionsResponse struct {
	Items []struct {
		ID    int64  `json:"_id"`
		Title string `json:"title"`
	} `json:"items"`
}

type raindropsResponse struct {
	Items []raindropItem `json:"items"`
}

type raindropItem struct {
	Title      string `json:"title"`
	Link       string `json:"link"`
	Excerpt    string `json:"excerpt"`
	Note       string `json:"note"`
	Highlights []struct {
		Text string `json:"text"`
		Note string `json:"note"`
	} `json:"highlights"`
	Created string `json:"created"`
}

// Fetch returns the bookmarks in the named collection carrying the tag
// whose local creation date falls inside the window, oldest first.
// Missing optional fields come back empty rather than failing the run.
func (c *Client) Fetch(collection, tag string, window Window) ([]models.Bookmark, error) {
	collectionID, err := c.resolveCollection(collection)
	if err != nil {
		return nil, err
	}

	var bookmarks []models.Bookmark

	for page := 0; ; page++ {
		items, err := c.fetchPage(collectionID, tag, page)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			b, ok := c.mapItem(item, window)
			if !ok {
				continue
			}

			bookmarks = append(bookmarks, b)
		}

		if len(items) < perPage {
			break
		}
	}

	sort.SliceStable(bookmarks, func(i, j int) bool {
		return bookmarks[i].Created.Before(bookmarks[j].Created)
	})

	if c.logger != nil {
		for _, b := range bookmarks {
			c.logger.Debug("matched bookmark",
				logger.String("title", runewidth.Truncate(b.Title, logTitleWidth, "…")),
				logger.String("created", b.Created.Format(time.RFC3339)))
		}
	}

	return bookmarks, nil
}

// resolveCollection finds a collection id by case-insensitive title,
// checking root collections first and nested ones second.
func (c *Client) resolveCollection(name string) (int64, error) {
	var available []string

	for _, endpoint := range []string{"/collections", "/collections/childrens"} {
		var resp collectionsResponse
		if err := c.get(endpoint, nil, &resp); err != nil {
			return 0, err
		}

		for _, item := range resp.Items {
			if strings.EqualFold(item.Title, name) {
				return item.ID, nil
			}

			available = append(available, item.Title)
		}
	}

	return 0, fmt.Errorf("%w: %q (available: %s)",
		ErrCollectionNotFound, name, strings.Join(available, ", "))
}

func (c *Client) fetchPage(collectionID int64, tag string, page int) ([]raindropItem, error) {
	params := url.Values{}
	params.Set("search", "#"+tag)
	params.Set("perpage", strconv.Itoa(perPage))
	params.Set("page", strconv.Itoa(page))

	var resp raindropsResponse
	if err := c.get(fmt.Sprintf("/raindrops/%d", collectionID), params, &resp); err != nil {
		return nil, err
	}

	return resp.Items, nil
}

// mapItem converts one API item to a bookmark record, dropping items
// outside the window or with unparseable timestamps.
func (c *Client) mapItem(item raindropItem, window Window) (models.Bookmark, bool) {
	created, err := time.Parse(time.RFC3339, item.Created)
	if err != nil {
		if c.logger != nil {
			c.logger.Warnf("Skipping item with bad timestamp %q: %v", item.Created, err)
		}

		return models.Bookmark{}, false
	}

	if !window.Contains(created.In(c.loc)) {
		return models.Bookmark{}, false
	}

	title := item.Title
	if title == "" {
		title = "Untitled"
	}

	b := models.Bookmark{
		Title:   title,
		URL:     item.Link,
		Excerpt: item.Excerpt,
		Note:    item.Note,
		Created: created,
	}

	for _, hl := range item.Highlights {
		if strings.TrimSpace(hl.Text) == "" {
			continue
		}

		b.Highlights = append(b.Highlights, models.Highlight{Text: hl.Text, Note: hl.Note})
	}

	return b, true
}

func (c *Client) get(endpoint string, params url.Values, out interface{}) error {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("raindrop request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return fmt.Errorf("%w: %d from %s: %s",
			ErrUnexpectedStatusCode, resp.StatusCode, endpoint, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
