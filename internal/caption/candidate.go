// Package caption turns a blog post into LinkedIn caption candidates and
// picks the one to publish.
package caption

import (
	"errors"
	"sort"
	"strings"
)

// StyleTag identifies the hook style of a generated caption.
type StyleTag string

const (
	StylePersonalStory     StyleTag = "personal_story"
	StyleQuestionInterrupt StyleTag = "question_interrupt"
	StyleContrarianHook    StyleTag = "contrarian_hook"
	StyleOther             StyleTag = "other"
)

// Candidate is one generated caption option. Candidates live only within a
// single run and are never persisted.
type Candidate struct {
	StyleTag  StyleTag
	Text      string
	Hashtags  []string
	Score     int // heuristic engagement score, 0-100
	Rationale string
}

// ErrNoCandidates is returned when selection is asked to pick from nothing.
var ErrNoCandidates = errors.New("no caption candidates")

// Select returns the candidate with the highest score. Ties keep the
// original ordering, so the earliest-listed style tag wins.
func Select(candidates []Candidate) (*Candidate, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	best := ranked[0]
	return &best, nil
}

// RenderPost builds the publish payload: the caption body, a blank line,
// then the hashtags as space-joined #tag tokens. With no hashtags the
// payload is just the caption.
func RenderPost(text string, hashtags []string) string {
	if len(hashtags) == 0 {
		return text
	}
	tags := make([]string, len(hashtags))
	for i, tag := range hashtags {
		tags[i] = "#" + tag
	}
	return text + "\n\n" + strings.Join(tags, " ")
}

// RenderComment builds the follow-up comment carrying the article link.
func RenderComment(sourceURL string) string {
	return "Read the full post: " + sourceURL
}
