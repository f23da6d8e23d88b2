// Package draft reads and writes the local clippings draft files:
// YAML frontmatter followed by a markdown body, one file per date.
package draft

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"clippings/internal/models"
)

// ErrNoDraft is returned when an operation needs a draft on disk and
// none exists for the date.
var ErrNoDraft = errors.New("no draft on disk")

// frontMatter mirrors the YAML header of a draft file. Field order is
// the order written.
type frontMatter struct {
	Title       string   `yaml:"title"`
	Date        string   `yaml:"date"`
	Type        string   `yaml:"type"`
	Categories  []string `yaml:"categories,omitempty"`
	MicropubURL string   `yaml:"micropub_url,omitempty"`
}

// Store persists drafts under a content directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created
// lazily on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the draft file path for a target date.
func (s *Store) Path(date time.Time) string {
	return filepath.Join(s.dir, date.Format("2006-01-02")+".md")
}

// Load reads the draft for a date. A missing file yields (nil, nil).
func (s *Store) Load(date time.Time) (*models.Draft, error) {
	data, err := os.ReadFile(s.Path(date))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read draft: %w", err)
	}

	var fm frontMatter

	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return nil, fmt.Errorf("failed to parse draft frontmatter: %w", err)
	}

	d := &models.Draft{
		Date:        date,
		Title:       fm.Title,
		MicropubURL: fm.MicropubURL,
		Body:        strings.TrimSpace(string(body)),
	}

	if len(fm.Categories) > 0 {
		d.Category = fm.Categories[0]
	}

	return d, nil
}

// Save writes the draft, creating the content directory if needed.
// Body and metadata are always replaced; a published URL already on
// disk is carried forward unless the draft supplies its own.
func (s *Store) Save(d *models.Draft) error {
	if d.MicropubURL == "" {
		existing, err := s.Load(d.Date)
		if err != nil {
			return err
		}

		if existing != nil {
			d.MicropubURL = existing.MicropubURL
		}
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create content dir: %w", err)
	}

	content, err := encode(d)
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.Path(d.Date), content, 0644); err != nil {
		return fmt.Errorf("failed to write draft: %w", err)
	}

	return nil
}

// SetPublishedURL records the canonical post URL after a publish so
// later runs update the post instead of creating a new one.
func (s *Store) SetPublishedURL(date time.Time, url string) error {
	d, err := s.Load(date)
	if err != nil {
		return err
	}

	if d == nil {
		return fmt.Errorf("%w for %s", ErrNoDraft, date.Format("2006-01-02"))
	}

	d.MicropubURL = url

	return s.Save(d)
}

func encode(d *models.Draft) ([]byte, error) {
	title := d.Title
	if title == "" {
		title = models.DraftTitle(d.Date)
	}

	fm := frontMatter{
		Title:       title,
		Date:        d.Date.Format("2006-01-02"),
		Type:        models.PostType,
		MicropubURL: d.MicropubURL,
	}

	if d.Category != "" {
		fm.Categories = []string{d.Category}
	}

	var buf bytes.Buffer

	buf.WriteString("---\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(&fm); err != nil {
		return nil, fmt.Errorf("failed to marshal frontmatter: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize frontmatter: %w", err)
	}

	buf.WriteString("---\n\n")
	buf.WriteString(d.Body)
	buf.WriteString("\n")

	return buf.Bytes(), nil
}
