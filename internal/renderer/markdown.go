// Package renderer turns bookmark records into the markdown body of a
// clippings post.
package renderer

import (
	"strings"

	"clippings/internal/models"
)

const indent = "    "

// Render produces the markdown body for an ordered bookmark list.
// Output depends only on the input, so re-rendering the same records
// is byte-identical. Entries are separated by a single newline; the
// draft writer owns the surrounding blank lines.
func Render(bookmarks []models.Bookmark) string {
	entries := make([]string, 0, len(bookmarks))
	for _, b := range bookmarks {
		entries = append(entries, renderBookmark(b))
	}

	return strings.Join(entries, "\n")
}

// renderBookmark emits one list entry: the link line, then the
// excerpt, the note (italicized), and each highlight as a blockquote
// with its optional note. Empty fields emit nothing.
func renderBookmark(b models.Bookmark) string {
	var sb strings.Builder

	sb.WriteString("- [")
	sb.WriteString(b.Title)
	sb.WriteString("](")
	sb.WriteString(b.URL)
	sb.WriteString(")")

	if excerpt := normalizeWhitespace(b.Excerpt); excerpt != "" {
		sb.WriteString("\n\n" + indent + excerpt)
	}

	if note := normalizeWhitespace(b.Note); note != "" {
		sb.WriteString("\n\n" + indent + "*" + note + "*")
	}

	for _, hl := range b.Highlights {
		text := normalizeWhitespace(hl.Text)
		if text == "" {
			continue
		}

		sb.WriteString("\n\n" + indent + "> " + text)

		if note := normalizeWhitespace(hl.Note); note != "" {
			sb.WriteString("\n" + indent + ">\n" + indent + "> — *" + note + "*")
		}
	}

	return sb.String()
}

// normalizeWhitespace collapses every whitespace run to a single space
// so multi-line excerpts stay inside their indented paragraph.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
