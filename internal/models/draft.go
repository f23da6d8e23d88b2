package models

import "time"

// PostType is the frontmatter type written to every draft.
const PostType = "post"

// Draft is the local representation of one day's clippings post.
// The body is regenerated from fetched bookmarks on every run; the
// published URL is the only field that survives across runs.
type Draft struct {
	Date        time.Time
	Title       string
	Category    string
	MicropubURL string
	Body        string
}

// DraftTitle derives the post title for a target date.
func DraftTitle(date time.Time) string {
	return "Clippings for " + date.Format("January 2, 2006")
}
