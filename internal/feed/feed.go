// Package feed finds the next blog post that has not been published yet.
package feed

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/TobiSchelling/autopost/internal/store"
)

// Item is one feed entry. Identity is the canonical URL; content is the raw
// HTML as served by the feed.
type Item struct {
	URL       string
	Title     string
	Content   string
	Published time.Time
}

// ErrFeedUnavailable wraps any failure to fetch or parse the feed. It is
// recoverable: the run ends cleanly and the next cycle retries.
type ErrFeedUnavailable struct {
	URL string
	Err error
}

func (e *ErrFeedUnavailable) Error() string {
	return fmt.Sprintf("feed unavailable: %s: %v", e.URL, e.Err)
}

func (e *ErrFeedUnavailable) Unwrap() error {
	return e.Err
}

// Scanner reads a single configured feed.
type Scanner struct {
	feedURL string
	parser  *gofeed.Parser
}

// NewScanner creates a scanner for the given feed URL.
func NewScanner(feedURL string) *Scanner {
	return &Scanner{feedURL: feedURL, parser: gofeed.NewParser()}
}

// NextUnpublished fetches the feed and returns the first entry, in feed
// order (most recent first as served), whose fingerprint is not in the
// store. Returns nil when the feed is empty or everything is already
// recorded.
func (s *Scanner) NextUnpublished(ctx context.Context, st store.Store) (*Item, error) {
	parsed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, &ErrFeedUnavailable{URL: s.feedURL, Err: err}
	}

	if len(parsed.Items) == 0 {
		log.Println("No posts found in feed")
		return nil, nil
	}

	for _, entry := range parsed.Items {
		item := parseItem(entry)
		if item == nil {
			continue
		}
		if st.Has(store.Fingerprint(item.URL)) {
			continue
		}
		log.Printf("Found new post: %s", item.Title)
		return item, nil
	}

	log.Println("No new posts to share (all already posted)")
	return nil, nil
}

func parseItem(entry *gofeed.Item) *Item {
	itemURL := entry.Link
	if itemURL == "" {
		itemURL = entry.GUID
	}
	if itemURL == "" {
		return nil
	}

	title := strings.TrimSpace(entry.Title)
	if title == "" {
		title = "Untitled"
	}

	content := entry.Content
	if content == "" {
		content = entry.Description
	}

	var published time.Time
	if entry.PublishedParsed != nil {
		published = *entry.PublishedParsed
	} else if entry.UpdatedParsed != nil {
		published = *entry.UpdatedParsed
	}

	return &Item{
		URL:       itemURL,
		Title:     title,
		Content:   content,
		Published: published,
	}
}
