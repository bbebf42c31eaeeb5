package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TobiSchelling/autopost/internal/feed"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Post A</title></head>
<body>
<article>
<h1>Post A</h1>
<p>This is the full article body with substantially more detail than the
feed excerpt carries. It spans several sentences so the readability
extractor has something to work with, and it keeps going for a while to
look like a real blog post rather than a stub.</p>
<p>Second paragraph with more content to extract.</p>
</article>
</body></html>`

func serveArticle(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEnrichThinContent(t *testing.T) {
	srv := serveArticle(t, http.StatusOK, articleHTML)

	item := &feed.Item{URL: srv.URL, Title: "Post A", Content: "<p>short</p>"}
	NewEnricher(time.Second).Enrich(context.Background(), item)

	if !strings.Contains(item.Content, "full article body") {
		t.Errorf("expected enriched content, got %q", item.Content)
	}
}

func TestEnrichSkipsRichContent(t *testing.T) {
	srv := serveArticle(t, http.StatusOK, articleHTML)

	rich := "<p>" + strings.Repeat("plenty of feed content here ", 20) + "</p>"
	item := &feed.Item{URL: srv.URL, Title: "Post A", Content: rich}
	NewEnricher(time.Second).Enrich(context.Background(), item)

	if item.Content != rich {
		t.Error("rich feed content should not be replaced")
	}
}

func TestEnrichKeepsFeedContentOnHTTPError(t *testing.T) {
	srv := serveArticle(t, http.StatusNotFound, "gone")

	item := &feed.Item{URL: srv.URL, Title: "Post A", Content: "<p>short</p>"}
	NewEnricher(time.Second).Enrich(context.Background(), item)

	if item.Content != "<p>short</p>" {
		t.Errorf("expected original content kept on fetch failure, got %q", item.Content)
	}
}

func TestEnrichKeepsFeedContentOnUnreachableHost(t *testing.T) {
	item := &feed.Item{URL: "http://127.0.0.1:1", Title: "Post A", Content: "<p>short</p>"}
	NewEnricher(100 * time.Millisecond).Enrich(context.Background(), item)

	if item.Content != "<p>short</p>" {
		t.Errorf("expected original content kept, got %q", item.Content)
	}
}
