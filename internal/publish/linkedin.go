package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// LinkedIn's web surface is consumed through these selectors only. They are
// fragile to front-end changes; frequent compose/publish timeouts in the
// logs mean they need maintenance.
const (
	loginURL = "https://www.linkedin.com/login"
	feedURL  = "https://www.linkedin.com/feed/"

	selLoginEmail    = "#username"
	selLoginPassword = "#password"
	selLoginSubmit   = `button[type="submit"]`
	selStartPost     = `button[aria-label*="Start a post"]`
	selComposer      = `div[contenteditable="true"]`
	selPostButton    = `button[aria-label*="Post"]`
	selCommentBox    = `div[data-placeholder*="comment"]`
	selCommentSubmit = `button[data-control-name*="comment"]`
)

// uiWaitTimeout bounds each wait-for-element step.
const uiWaitTimeout = 10 * time.Second

// LinkedIn drives linkedin.com through a headless Chrome instance.
type LinkedIn struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
}

var _ Platform = (*LinkedIn)(nil)

// NewLinkedIn launches a browser. The caller must arrange for Close to run
// on every exit path; the Driver does this.
func NewLinkedIn(parent context.Context, headless bool) (*LinkedIn, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// Start the browser now so a launch failure surfaces here rather than
	// midway through the auth step.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	return &LinkedIn{ctx: browserCtx, cancelCtx: cancelCtx, cancelAlloc: cancelAlloc}, nil
}

// Authenticate logs in with the credential form and verifies the landing
// URL. A challenge or verification interstitial counts as a failure: it
// will not self-heal and needs operator attention.
func (l *LinkedIn) Authenticate(ctx context.Context, email, password string) error {
	if err := l.run(ctx,
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible(selLoginEmail, chromedp.ByQuery),
		chromedp.SendKeys(selLoginEmail, email, chromedp.ByQuery),
		chromedp.SendKeys(selLoginPassword, password, chromedp.ByQuery),
		chromedp.Click(selLoginSubmit, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("submitting login form: %w", err)
	}

	// Give the post-login redirect time to settle before checking where
	// we landed.
	var landed string
	if err := l.run(ctx,
		chromedp.Sleep(5*time.Second),
		chromedp.Location(&landed),
	); err != nil {
		return fmt.Errorf("reading post-login location: %w", err)
	}

	if strings.Contains(landed, "checkpoint") || strings.Contains(landed, "challenge") {
		return fmt.Errorf("login hit a verification challenge at %s", landed)
	}
	if !strings.Contains(landed, "feed") {
		return fmt.Errorf("unexpected post-login location: %s", landed)
	}
	return nil
}

// OpenComposer navigates to the feed and opens the "Start a post" dialog.
func (l *LinkedIn) OpenComposer(ctx context.Context) error {
	if err := l.run(ctx,
		chromedp.Navigate(feedURL),
		chromedp.WaitVisible(selStartPost, chromedp.ByQuery),
		chromedp.Click(selStartPost, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("opening composer: %w", err)
	}
	if err := l.run(ctx,
		chromedp.WaitVisible(selComposer, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("waiting for composer surface: %w", err)
	}
	return nil
}

// PublishPost types the rendered payload into the composer and clicks Post.
func (l *LinkedIn) PublishPost(ctx context.Context, body string) error {
	if err := l.run(ctx,
		chromedp.SendKeys(selComposer, body, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("writing post body: %w", err)
	}
	if err := l.run(ctx,
		chromedp.Click(selPostButton, chromedp.ByQuery),
		chromedp.Sleep(5*time.Second),
	); err != nil {
		return fmt.Errorf("clicking post: %w", err)
	}
	return nil
}

// Comment locates the new post's comment box and submits the follow-up.
func (l *LinkedIn) Comment(ctx context.Context, body string) error {
	if err := l.run(ctx,
		chromedp.WaitVisible(selCommentBox, chromedp.ByQuery),
		chromedp.Click(selCommentBox, chromedp.ByQuery),
		chromedp.SendKeys(selCommentBox, body, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("writing comment: %w", err)
	}
	if err := l.run(ctx,
		chromedp.Click(selCommentSubmit, chromedp.ByQuery),
		chromedp.Sleep(3*time.Second),
	); err != nil {
		return fmt.Errorf("submitting comment: %w", err)
	}
	return nil
}

// Close tears down the browser and its allocator.
func (l *LinkedIn) Close() {
	l.cancelCtx()
	l.cancelAlloc()
}

// run executes one group of browser actions under the per-step UI timeout,
// honoring cancellation from the caller's context.
func (l *LinkedIn) run(ctx context.Context, actions ...chromedp.Action) error {
	stepCtx, cancel := context.WithTimeout(l.ctx, uiWaitTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(stepCtx, actions...)
}
