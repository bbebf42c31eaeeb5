// Package preview renders a candidate set to a local HTML page so an
// operator can review captions without publishing anything.
package preview

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/autopost/internal/caption"
	"github.com/TobiSchelling/autopost/internal/feed"
)

var md = goldmark.New()

const pageHeader = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>autopost preview</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 680px; margin: 2rem auto; padding: 0 1rem; color: #222; }
.candidate { border: 1px solid #ddd; border-radius: 8px; padding: 1rem 1.25rem; margin: 1rem 0; }
.candidate.selected { border-color: #0a66c2; box-shadow: 0 0 0 1px #0a66c2; }
.meta { color: #666; font-size: 0.85rem; }
.hashtags { color: #0a66c2; }
h1 { font-size: 1.3rem; }
h2 { font-size: 1rem; margin-bottom: 0.25rem; }
</style>
</head>
<body>
`

// Render writes an HTML review page for the item's candidates, marking the
// selected one. Caption text is rendered as markdown.
func Render(path string, item *feed.Item, candidates []caption.Candidate, selected *caption.Candidate) error {
	var b strings.Builder
	b.WriteString(pageHeader)
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(item.Title))
	fmt.Fprintf(&b, "<p class=\"meta\"><a href=%q>%s</a></p>\n", item.URL, html.EscapeString(item.URL))

	for _, c := range candidates {
		class := "candidate"
		marker := ""
		if selected != nil && c.StyleTag == selected.StyleTag {
			class = "candidate selected"
			marker = " &mdash; selected"
		}
		fmt.Fprintf(&b, "<div class=%q>\n", class)
		fmt.Fprintf(&b, "<h2>%s%s</h2>\n", html.EscapeString(string(c.StyleTag)), marker)
		fmt.Fprintf(&b, "<p class=\"meta\">score %d &middot; %s</p>\n", c.Score, html.EscapeString(c.Rationale))

		var body bytes.Buffer
		if err := md.Convert([]byte(c.Text), &body); err != nil {
			return fmt.Errorf("rendering caption markdown: %w", err)
		}
		b.Write(body.Bytes())

		if len(c.Hashtags) > 0 {
			tags := make([]string, len(c.Hashtags))
			for i, tag := range c.Hashtags {
				tags[i] = "#" + html.EscapeString(tag)
			}
			fmt.Fprintf(&b, "<p class=\"hashtags\">%s</p>\n", strings.Join(tags, " "))
		}
		b.WriteString("</div>\n")
	}

	b.WriteString("</body>\n</html>\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing preview: %w", err)
	}
	return nil
}
