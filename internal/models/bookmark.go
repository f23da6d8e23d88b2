// Package models defines the data records shared across the pipeline.
package models

import "time"

// Highlight is a passage selected on a bookmarked page, optionally
// annotated with a note.
type Highlight struct {
	Text string `json:"text"`
	Note string `json:"note,omitempty"`
}

// Bookmark represents a saved link fetched from the bookmark service.
// Records are produced fresh on every run and never cached; optional
// fields are empty when the service has nothing for them.
type Bookmark struct {
	Title      string      `json:"title"`
	URL        string      `json:"url"`
	Excerpt    string      `json:"excerpt,omitempty"`
	Note       string      `json:"note,omitempty"`
	Highlights []Highlight `json:"highlights,omitempty"`
	Created    time.Time   `json:"created"`
}
