package draft

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"clippings/internal/models"
)

var testDate = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "clippings"))
}

func TestStore_Path(t *testing.T) {
	s := NewStore("/content")

	if got := s.Path(testDate); got != filepath.Join("/content", "2026-01-15.md") {
		t.Errorf("Unexpected draft path: %q", got)
	}
}

func TestStore_LoadAbsent(t *testing.T) {
	s := newTestStore(t)

	d, err := s.Load(testDate)
	if err != nil {
		t.Fatalf("Load of absent draft failed: %v", err)
	}

	if d != nil {
		t.Errorf("Expected nil draft for absent file, got %+v", d)
	}
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	s := newTestStore(t)

	in := &models.Draft{
		Date:     testDate,
		Title:    models.DraftTitle(testDate),
		Category: "Links",
		Body:     "- [Article](https://example.com/a)",
	}

	if err := s.Save(in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := s.Load(testDate)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if out.Title != "Clippings for January 15, 2026" {
		t.Errorf("Unexpected title: %q", out.Title)
	}

	if out.Category != "Links" {
		t.Errorf("Unexpected category: %q", out.Category)
	}

	if out.Body != in.Body {
		t.Errorf("Body mismatch.\nGot: %q\nWant: %q", out.Body, in.Body)
	}

	if out.MicropubURL != "" {
		t.Errorf("Expected no published URL on a fresh draft, got %q", out.MicropubURL)
	}
}

func TestStore_FrontmatterLayout(t *testing.T) {
	s := newTestStore(t)

	d := &models.Draft{
		Date:  testDate,
		Title: models.DraftTitle(testDate),
		Body:  "- [Article](https://example.com/a)",
	}

	if err := s.Save(d); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := os.ReadFile(s.Path(testDate))
	if err != nil {
		t.Fatalf("Failed to read draft file: %v", err)
	}

	content := string(raw)

	if !strings.HasPrefix(content, "---\n") {
		t.Error("Expected file to start with frontmatter delimiter")
	}

	for _, want := range []string{"title: Clippings for January 15, 2026", "date: \"2026-01-15\"", "type: post"} {
		// yaml.v3 quotes the date scalar; accept either form.
		unquoted := strings.ReplaceAll(want, "\"", "")
		if !strings.Contains(content, want) && !strings.Contains(content, unquoted) {
			t.Errorf("Expected frontmatter to contain %q.\nFile:\n%s", want, content)
		}
	}

	if strings.Contains(content, "categories:") {
		t.Error("Expected no categories field when category is unset")
	}

	if strings.Contains(content, "micropub_url:") {
		t.Error("Expected no micropub_url field before first publish")
	}

	if !strings.HasSuffix(content, "- [Article](https://example.com/a)\n") {
		t.Errorf("Expected body below frontmatter with trailing newline.\nFile:\n%s", content)
	}
}

func TestStore_SavePreservesPublishedURL(t *testing.T) {
	s := newTestStore(t)

	first := &models.Draft{
		Date:        testDate,
		MicropubURL: "https://example.blog/2026/01/15/clippings.html",
		Body:        "- [Old](https://example.com/old)",
	}

	if err := s.Save(first); err != nil {
		t.Fatalf("Initial save failed: %v", err)
	}

	// A later run regenerates the body with no knowledge of the URL.
	second := &models.Draft{
		Date: testDate,
		Body: "- [New](https://example.com/new)",
	}

	if err := s.Save(second); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	out, err := s.Load(testDate)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if out.MicropubURL != first.MicropubURL {
		t.Errorf("Expected published URL to be preserved, got %q", out.MicropubURL)
	}

	if out.Body != second.Body {
		t.Errorf("Expected body to be replaced, got %q", out.Body)
	}
}

func TestStore_SetPublishedURL(t *testing.T) {
	s := newTestStore(t)

	d := &models.Draft{Date: testDate, Body: "- [A](https://example.com/a)"}
	if err := s.Save(d); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	url := "https://example.blog/2026/01/15/clippings.html"
	if err := s.SetPublishedURL(testDate, url); err != nil {
		t.Fatalf("SetPublishedURL failed: %v", err)
	}

	out, err := s.Load(testDate)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if out.MicropubURL != url {
		t.Errorf("Expected stored URL %q, got %q", url, out.MicropubURL)
	}

	if out.Body != d.Body {
		t.Errorf("Expected body untouched by URL write-back, got %q", out.Body)
	}
}

func TestStore_SetPublishedURL_NoDraft(t *testing.T) {
	s := newTestStore(t)

	err := s.SetPublishedURL(testDate, "https://example.blog/x")
	if !errors.Is(err, ErrNoDraft) {
		t.Fatalf("Expected ErrNoDraft, got %v", err)
	}
}

func TestStore_CategoryListForm(t *testing.T) {
	s := newTestStore(t)

	d := &models.Draft{Date: testDate, Category: "Links", Body: "- [A](https://example.com/a)"}
	if err := s.Save(d); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := os.ReadFile(s.Path(testDate))
	if err != nil {
		t.Fatalf("Failed to read draft file: %v", err)
	}

	if !strings.Contains(string(raw), "categories:") || !strings.Contains(string(raw), "- Links") {
		t.Errorf("Expected categories list in frontmatter.\nFile:\n%s", string(raw))
	}
}
