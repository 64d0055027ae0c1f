// Package export renders a book record as a downloadable document.
// Rendering is deterministic and pure: the same record always produces
// the same bytes, and nothing is written server-side.
package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/alonmar/books-gen/internal/book"
)

// Format is a supported export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatText     Format = "text"
)

// ParseFormat maps a query value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatMarkdown, "":
		return FormatMarkdown, nil
	case FormatHTML:
		return FormatHTML, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// ContentType returns the MIME type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Extension returns the file extension for a format.
func (f Format) Extension() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatText:
		return "txt"
	default:
		return "md"
	}
}

// Render renders a book in the given format.
func Render(b *book.Book, f Format) ([]byte, error) {
	if !b.HasIndex() {
		return nil, book.ErrNoIndex
	}
	switch f {
	case FormatHTML:
		return HTML(b), nil
	case FormatText:
		return Text(b), nil
	case FormatMarkdown:
		return Markdown(b), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %q", f)
	}
}

// Markdown renders the book as a Markdown document: title page, synopsis,
// then numbered chapters.
func Markdown(b *book.Book) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", b.Title)
	if b.Synopsis != "" {
		fmt.Fprintf(&sb, "%s\n\n", b.Synopsis)
	}
	for i, ch := range b.Index.Chapters {
		fmt.Fprintf(&sb, "## %d. %s\n\n", i+1, ch.Title)
		if ch.Content != "" {
			fmt.Fprintf(&sb, "%s\n\n", strings.TrimSpace(ch.Content))
		}
	}
	return []byte(strings.TrimRight(sb.String(), "\n") + "\n")
}

// HTML renders the book as a standalone HTML document.
func HTML(b *book.Book) []byte {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	sb.WriteString("<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(b.Title))
	sb.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&sb, "<h1>%s</h1>\n", html.EscapeString(b.Title))
	if b.Synopsis != "" {
		fmt.Fprintf(&sb, "<p><em>%s</em></p>\n", html.EscapeString(b.Synopsis))
	}
	for i, ch := range b.Index.Chapters {
		fmt.Fprintf(&sb, "<h2>%d. %s</h2>\n", i+1, html.EscapeString(ch.Title))
		for _, para := range strings.Split(strings.TrimSpace(ch.Content), "\n\n") {
			para = strings.TrimSpace(para)
			if para == "" {
				continue
			}
			fmt.Fprintf(&sb, "<p>%s</p>\n", html.EscapeString(para))
		}
	}
	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String())
}

// Text renders the book as plain text.
func Text(b *book.Book) []byte {
	var sb strings.Builder
	sb.WriteString(b.Title + "\n")
	sb.WriteString(strings.Repeat("=", len([]rune(b.Title))) + "\n\n")
	if b.Synopsis != "" {
		sb.WriteString(b.Synopsis + "\n\n")
	}
	for i, ch := range b.Index.Chapters {
		fmt.Fprintf(&sb, "%d. %s\n\n", i+1, ch.Title)
		if ch.Content != "" {
			sb.WriteString(strings.TrimSpace(ch.Content) + "\n\n")
		}
	}
	return []byte(strings.TrimRight(sb.String(), "\n") + "\n")
}
