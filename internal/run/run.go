// Package run sequences one orchestrator run: find an unpublished post,
// generate and select a caption, publish it, and commit the dedup record.
// The dedup commit happens only after the main post is confirmed live.
package run

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/TobiSchelling/autopost/internal/caption"
	"github.com/TobiSchelling/autopost/internal/feed"
	"github.com/TobiSchelling/autopost/internal/publish"
	"github.com/TobiSchelling/autopost/internal/store"
)

// Outcome is the coarse run-level result the scheduler layer observes.
type Outcome int

const (
	OutcomePublished Outcome = iota
	OutcomeNoNewContent
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomePublished:
		return "published"
	case OutcomeNoNewContent:
		return "no-new-content"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Kind classifies a failed run for operators tailing the log. Repeating
// auth failures signal a credential or platform-policy problem that will
// not self-heal; repeating UI timeouts signal selector drift.
type Kind string

const (
	KindNone            Kind = ""
	KindConfigMissing   Kind = "config_missing"
	KindFeedUnavailable Kind = "feed_unavailable"
	KindGeneration      Kind = "generation_failure"
	KindAuth            Kind = "auth_failure"
	KindUITimeout       Kind = "ui_interaction_timeout"
	KindStore           Kind = "store_failure"
)

// Report is the result of one run.
type Report struct {
	Outcome        Outcome
	Kind           Kind
	Err            error
	Title          string
	StyleTag       caption.StyleTag
	Score          int
	CommentMissing bool
}

// ItemSource yields the next unpublished feed item.
type ItemSource interface {
	NextUnpublished(ctx context.Context, st store.Store) (*feed.Item, error)
}

// ContentEnricher optionally fills in thin article content before
// generation.
type ContentEnricher interface {
	Enrich(ctx context.Context, item *feed.Item)
}

// CaptionGenerator produces the candidate set for one item.
type CaptionGenerator interface {
	Generate(ctx context.Context, item *feed.Item) ([]caption.Candidate, error)
}

// PlatformFactory opens a fresh platform session for one publish attempt.
type PlatformFactory func(ctx context.Context) (publish.Platform, error)

// Deps are the orchestrator's collaborators. All are required except
// Enricher and Now.
type Deps struct {
	Store       store.Store
	Source      ItemSource
	Enricher    ContentEnricher
	Generator   CaptionGenerator
	NewPlatform PlatformFactory
	Email       string
	Password    string
	Now         func() time.Time
}

// Orchestrator runs the publish pipeline strictly sequentially; there is no
// concurrency within a run.
type Orchestrator struct {
	deps Deps
}

// New creates an orchestrator.
func New(deps Deps) *Orchestrator {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{deps: deps}
}

// Run executes one full run. Every component failure is caught here,
// logged with context, and converted to a classified Report; no error
// escapes to the scheduler layer.
func (o *Orchestrator) Run(ctx context.Context) *Report {
	log.Println("Checking for new blog posts...")
	item, err := o.deps.Source.NextUnpublished(ctx, o.deps.Store)
	if err != nil {
		log.Printf("Error fetching feed: %v", err)
		return &Report{Outcome: OutcomeFailed, Kind: KindFeedUnavailable, Err: err}
	}
	if item == nil {
		log.Println("No action needed - will check again on next run")
		return &Report{Outcome: OutcomeNoNewContent}
	}

	if o.deps.Enricher != nil {
		o.deps.Enricher.Enrich(ctx, item)
	}

	candidates, err := o.deps.Generator.Generate(ctx, item)
	if err != nil {
		log.Printf("Error generating captions: %v", err)
		return &Report{Outcome: OutcomeFailed, Kind: KindGeneration, Err: err, Title: item.Title}
	}

	best, err := caption.Select(candidates)
	if err != nil {
		log.Printf("Error selecting caption: %v", err)
		return &Report{Outcome: OutcomeFailed, Kind: KindGeneration, Err: err, Title: item.Title}
	}
	log.Printf("Selected variant: %s (score: %d)", best.StyleTag, best.Score)
	if best.Rationale != "" {
		log.Printf("   Why: %s", best.Rationale)
	}

	post := caption.RenderPost(best.Text, best.Hashtags)
	comment := caption.RenderComment(item.URL)

	log.Println("Starting publish...")
	platform, err := o.deps.NewPlatform(ctx)
	if err != nil {
		log.Printf("Error opening platform session: %v", err)
		return &Report{Outcome: OutcomeFailed, Kind: KindUITimeout, Err: err, Title: item.Title}
	}

	driver := publish.NewDriver(platform, o.deps.Email, o.deps.Password)
	result, err := driver.Publish(ctx, post, comment)
	if err != nil {
		kind := classifyPublish(err)
		log.Printf("Publish failed at state %s: %v", result.Reached, err)
		return &Report{Outcome: OutcomeFailed, Kind: kind, Err: err, Title: item.Title}
	}

	// Main post confirmed live: commit the dedup record now, regardless of
	// the comment outcome.
	rec := store.Record{
		SourceURL:      item.URL,
		Title:          item.Title,
		PostedAt:       o.deps.Now(),
		StyleTag:       string(best.StyleTag),
		CommentMissing: result.CommentErr != nil,
	}
	if err := o.deps.Store.Record(store.Fingerprint(item.URL), rec); err != nil {
		// The post is live but the record did not land; surface this
		// loudly since the next run would re-post without it.
		log.Printf("Error recording publication: %v", err)
		return &Report{Outcome: OutcomeFailed, Kind: KindStore, Err: err, Title: item.Title}
	}

	if result.CommentErr != nil {
		log.Printf("Comment with link was not posted: %v", result.CommentErr)
	}
	log.Printf("Publish state: %s", publish.StateDone)
	log.Printf("Published %q (%s, score %d)", item.Title, best.StyleTag, best.Score)

	return &Report{
		Outcome:        OutcomePublished,
		Title:          item.Title,
		StyleTag:       best.StyleTag,
		Score:          best.Score,
		CommentMissing: result.CommentErr != nil,
	}
}

// classifyPublish maps a publish failure onto the operator-facing taxonomy.
func classifyPublish(err error) Kind {
	var stageErr *publish.StageError
	if errors.As(err, &stageErr) && stageErr.Stage == publish.StageAuth {
		return KindAuth
	}
	return KindUITimeout
}
