// Package fetch fills in article content when the feed entry is too thin
// to generate a caption from.
package fetch

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/TobiSchelling/autopost/internal/caption"
	"github.com/TobiSchelling/autopost/internal/feed"
)

// minUsableContent is the stripped-content length below which we go fetch
// the article page itself.
const minUsableContent = 200

// Enricher fetches full article text via HTTP + readability extraction.
type Enricher struct {
	client *http.Client
}

// NewEnricher creates an enricher with the given per-request timeout.
func NewEnricher(timeout time.Duration) *Enricher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Enricher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Enrich replaces item.Content with readable text extracted from the
// article page when the feed gave us less than minUsableContent characters
// of usable text. Enrichment is best-effort: on any failure the item keeps
// whatever the feed provided.
func (e *Enricher) Enrich(ctx context.Context, item *feed.Item) {
	if len(caption.CleanHTML(item.Content)) >= minUsableContent {
		return
	}

	content, err := e.fetchArticleContent(ctx, item.URL)
	if err != nil {
		log.Printf("Could not fetch article content from %s: %v", item.URL, err)
		return
	}
	if content == "" {
		log.Printf("No extractable content from %s", item.URL)
		return
	}

	log.Printf("Enriched content for: %s (%d chars)", item.Title, len(content))
	item.Content = content
}

func (e *Enricher) fetchArticleContent(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "autopost/1.0 (blog promoter)")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	parsedURL, err := url.Parse(articleURL)
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(article.TextContent), nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
