// Package textbody renders plain-text blog and message bodies as HTML. A
// body is a sequence of paragraphs separated by blank lines; single line
// breaks inside a paragraph are kept.
package textbody

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

var (
	reParagraphBreak = regexp.MustCompile(`\n\s*\n`)
	reBold           = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reURL            = regexp.MustCompile(`https?://[^\s<]+[^\s<.,;:!?)"']`)
)

// Paragraphs splits body on blank lines. Surrounding whitespace is trimmed
// and empty paragraphs are dropped.
func Paragraphs(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	parts := reParagraphBreak.Split(body, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Body returns a templ.Component that renders body as HTML paragraphs.
func Body(body string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		Render(&buf, body)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// HTML returns body rendered as HTML paragraphs.
func HTML(body string) string {
	var buf bytes.Buffer
	Render(&buf, body)
	return buf.String()
}

// Render writes one <p> per paragraph of body to buf.
func Render(buf *bytes.Buffer, body string) {
	for _, p := range Paragraphs(body) {
		buf.WriteString("<p>")
		lines := strings.Split(p, "\n")
		for i, line := range lines {
			if i > 0 {
				buf.WriteString("<br>")
			}
			buf.WriteString(FormatInline(strings.TrimSpace(line)))
		}
		buf.WriteString("</p>")
	}
}

// FormatInline escapes s, turns bare http(s) URLs into links and applies
// **bold**.
func FormatInline(s string) string {
	escaped := html.EscapeString(s)
	escaped = reURL.ReplaceAllStringFunc(escaped, func(m string) string {
		href := SafeURL(m)
		if href == "" {
			return m
		}
		return `<a href="` + href + `" rel="noopener noreferrer">` + m + `</a>`
	})
	return applyOutsideTags(escaped, func(seg string) string {
		return reBold.ReplaceAllString(seg, "<strong>$1</strong>")
	})
}

// applyOutsideTags applies fn only to text between HTML tags so formatting
// never touches attribute values.
func applyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// SafeURL returns raw escaped for an href attribute, or "" when the scheme
// is not http, https, mailto or tel. Site-relative paths are allowed.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") && !strings.HasPrefix(val, "//") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
