package publish

import (
	"context"
	"errors"
	"testing"
)

// fakePlatform implements Platform with per-step failure injection.
type fakePlatform struct {
	failAuth     error
	failComposer error
	failPublish  error
	failComment  error

	calls         []string
	publishedBody string
	commentBody   string
	closed        bool
}

func (f *fakePlatform) Authenticate(_ context.Context, _, _ string) error {
	f.calls = append(f.calls, "auth")
	return f.failAuth
}

func (f *fakePlatform) OpenComposer(_ context.Context) error {
	f.calls = append(f.calls, "compose_open")
	return f.failComposer
}

func (f *fakePlatform) PublishPost(_ context.Context, body string) error {
	f.calls = append(f.calls, "publish")
	f.publishedBody = body
	return f.failPublish
}

func (f *fakePlatform) Comment(_ context.Context, body string) error {
	f.calls = append(f.calls, "comment")
	f.commentBody = body
	return f.failComment
}

func (f *fakePlatform) Close() {
	f.closed = true
}

func publishOnce(t *testing.T, platform *fakePlatform) (*Result, error) {
	t.Helper()
	driver := NewDriver(platform, "user@example.com", "hunter2")
	return driver.Publish(context.Background(), "post body", "comment body")
}

func TestPublishHappyPath(t *testing.T) {
	platform := &fakePlatform{}
	result, err := publishOnce(t, platform)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Reached != StateCommentPosted {
		t.Errorf("expected comment_posted, got %s", result.Reached)
	}
	if !result.Published() {
		t.Error("expected Published() true")
	}
	if result.CommentErr != nil {
		t.Errorf("unexpected comment error: %v", result.CommentErr)
	}
	if platform.publishedBody != "post body" || platform.commentBody != "comment body" {
		t.Errorf("payloads not passed through: %q / %q", platform.publishedBody, platform.commentBody)
	}
	if !platform.closed {
		t.Error("session not released")
	}

	want := []string{"auth", "compose_open", "publish", "comment"}
	if len(platform.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, platform.calls)
	}
	for i, call := range want {
		if platform.calls[i] != call {
			t.Errorf("step %d: expected %s, got %s", i, call, platform.calls[i])
		}
	}
}

func TestPublishAuthFailure(t *testing.T) {
	platform := &fakePlatform{failAuth: errors.New("checkpoint interstitial")}
	result, err := publishOnce(t, platform)

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageAuth {
		t.Fatalf("expected auth stage error, got %v", err)
	}
	if result.Reached != StateInit {
		t.Errorf("expected state init, got %s", result.Reached)
	}
	if result.Published() {
		t.Error("auth failure must not count as published")
	}
	if len(platform.calls) != 1 {
		t.Errorf("expected no steps after auth failure, got %v", platform.calls)
	}
	if !platform.closed {
		t.Error("session not released on failure path")
	}
}

func TestPublishComposerFailure(t *testing.T) {
	platform := &fakePlatform{failComposer: errors.New("element wait timed out")}
	result, err := publishOnce(t, platform)

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StageComposeOpen {
		t.Fatalf("expected compose_open stage error, got %v", err)
	}
	if result.Reached != StateAuthenticated {
		t.Errorf("expected state authenticated, got %s", result.Reached)
	}
	if result.Published() {
		t.Error("composer failure must not count as published")
	}
}

func TestPublishMainPostFailure(t *testing.T) {
	platform := &fakePlatform{failPublish: errors.New("post button missing")}
	result, err := publishOnce(t, platform)

	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StagePublish {
		t.Fatalf("expected publish stage error, got %v", err)
	}
	if result.Published() {
		t.Error("failed main post must not count as published")
	}
	if !platform.closed {
		t.Error("session not released on failure path")
	}
}

func TestPublishCommentFailureStillSucceeds(t *testing.T) {
	platform := &fakePlatform{failComment: errors.New("comment box not found")}
	result, err := publishOnce(t, platform)
	if err != nil {
		t.Fatalf("comment failure must not fail the publish: %v", err)
	}

	if !result.Published() {
		t.Error("expected Published() true when only the comment failed")
	}
	if result.Reached != StateMainPostPublished {
		t.Errorf("expected main_post_published, got %s", result.Reached)
	}

	var stageErr *StageError
	if !errors.As(result.CommentErr, &stageErr) || stageErr.Stage != StageComment {
		t.Errorf("expected comment stage error in result, got %v", result.CommentErr)
	}
	if !platform.closed {
		t.Error("session not released")
	}
}

func TestStateStrings(t *testing.T) {
	if StateInit.String() != "init" || StateDone.String() != "done" {
		t.Error("unexpected state names")
	}
}
