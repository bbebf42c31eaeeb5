// Package publish drives the multi-step interaction that puts a post live
// on LinkedIn. The sequence is modeled as an explicit state machine so each
// transition's failure mode can be exercised against a fake platform.
package publish

import (
	"context"
	"fmt"
	"log"
)

// State is the driver's position in the publish sequence.
type State int

const (
	StateInit State = iota
	StateAuthenticated
	StateComposerOpen
	StateMainPostPublished
	StateCommentPosted
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateAuthenticated:
		return "authenticated"
	case StateComposerOpen:
		return "composer_open"
	case StateMainPostPublished:
		return "main_post_published"
	case StateCommentPosted:
		return "comment_posted"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Stage names identify which transition failed.
const (
	StageAuth        = "auth"
	StageComposeOpen = "compose_open"
	StagePublish     = "publish"
	StageComment     = "comment"
)

// StageError reports which publish stage failed and why.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("publish stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Platform is the capability set the driver needs from the target platform.
// The production implementation drives a real browser; tests substitute a
// fake.
type Platform interface {
	Authenticate(ctx context.Context, email, password string) error
	OpenComposer(ctx context.Context) error
	PublishPost(ctx context.Context, body string) error
	Comment(ctx context.Context, body string) error
	Close()
}

// Result reports how far a publish attempt got. Reached at
// StateMainPostPublished or later means the main content is live; a
// non-nil CommentErr means only the follow-up comment failed, which does
// not make the publish a failure.
type Result struct {
	Reached    State
	CommentErr error
}

// Published reports whether the main post went live.
func (r *Result) Published() bool {
	return r.Reached >= StateMainPostPublished
}

// Driver runs the publish state machine over a Platform.
type Driver struct {
	platform Platform
	email    string
	password string
}

// NewDriver creates a driver bound to one set of platform credentials.
func NewDriver(platform Platform, email, password string) *Driver {
	return &Driver{platform: platform, email: email, password: password}
}

type transition struct {
	stage string
	to    State
	apply func(ctx context.Context) error
}

// Publish walks Init -> Authenticated -> ComposerOpen -> MainPostPublished
// -> CommentPosted. A failure at or before the publish step aborts with a
// StageError; a failure at the comment step is recorded in the Result and
// the attempt still counts as a successful publish. The platform session is
// released on every exit path.
func (d *Driver) Publish(ctx context.Context, post, comment string) (*Result, error) {
	defer d.platform.Close()

	result := &Result{Reached: StateInit}

	steps := []transition{
		{
			stage: StageAuth,
			to:    StateAuthenticated,
			apply: func(ctx context.Context) error {
				return d.platform.Authenticate(ctx, d.email, d.password)
			},
		},
		{
			stage: StageComposeOpen,
			to:    StateComposerOpen,
			apply: d.platform.OpenComposer,
		},
		{
			stage: StagePublish,
			to:    StateMainPostPublished,
			apply: func(ctx context.Context) error {
				return d.platform.PublishPost(ctx, post)
			},
		},
	}

	for _, step := range steps {
		if err := step.apply(ctx); err != nil {
			return result, &StageError{Stage: step.stage, Err: err}
		}
		result.Reached = step.to
		log.Printf("Publish state: %s", step.to)
	}

	// The main post is live; the comment is a best-effort enhancement.
	// There is no atomic "post + comment" operation at the platform
	// boundary, so the main post is the commit point.
	if err := d.platform.Comment(ctx, comment); err != nil {
		result.CommentErr = &StageError{Stage: StageComment, Err: err}
		log.Printf("Comment failed (post is live): %v", err)
		return result, nil
	}

	result.Reached = StateCommentPosted
	log.Printf("Publish state: %s", StateCommentPosted)
	return result, nil
}
