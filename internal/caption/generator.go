package caption

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/TobiSchelling/autopost/internal/feed"
	"github.com/TobiSchelling/autopost/internal/llm"
)

const generatePrompt = `You are an expert LinkedIn content strategist for Steven, an Education Director with 25+ years in special education leadership, recently completed Ed.D., and building a Human-First AI Leadership platform.

Generate 3 distinct LinkedIn caption variations for this blog post. Each should be engagement-optimized but authentic to Steven's voice.

**OPTIMIZATION FRAMEWORK:**

1. **Personal Story Hook** - Lead with Steven's experience
2. **Question Pattern Interrupt** - Start with provocative question
3. **Contrarian/Stat Hook** - Challenge common assumption

**REQUIREMENTS:**
- Hook that stops the scroll
- Mini-insight that provides value
- Natural flow (not salesy)
- 3-5 strategic hashtags
- NO link in caption (will be added in comments)

**STEVEN'S VOICE:**
- Thoughtful, authentic educator
- Challenges conventional wisdom
- Purpose-driven leadership focus
- Integrates AI + human dignity

**OUTPUT FORMAT (CRITICAL):**
Return ONLY valid JSON with no markdown, no preamble, no explanation:

{
  "variants": [
    {
      "type": "personal_story",
      "caption": "full caption text here",
      "hashtags": ["tag1", "tag2", "tag3"],
      "engagement_score": 85,
      "why_it_works": "brief explanation"
    },
    {
      "type": "question_interrupt",
      "caption": "full caption text here",
      "hashtags": ["tag1", "tag2", "tag3"],
      "engagement_score": 90,
      "why_it_works": "brief explanation"
    },
    {
      "type": "contrarian_hook",
      "caption": "full caption text here",
      "hashtags": ["tag1", "tag2", "tag3"],
      "engagement_score": 88,
      "why_it_works": "brief explanation"
    }
  ]
}

---

**BLOG POST:**

Title: %s
Content: %s
URL: %s

---

Return ONLY the JSON object, nothing else:`

// expectedTags is the fixed candidate set: exactly one variant per tag.
var expectedTags = []StyleTag{StylePersonalStory, StyleQuestionInterrupt, StyleContrarianHook}

// ErrGeneration wraps both transport errors and malformed model output.
// Generation is all-or-nothing: no partial candidate set is recovered.
type ErrGeneration struct {
	Err error
}

func (e *ErrGeneration) Error() string {
	return fmt.Sprintf("caption generation failed: %v", e.Err)
}

func (e *ErrGeneration) Unwrap() error {
	return e.Err
}

// Generator produces caption candidates from a feed item.
type Generator struct {
	provider  llm.Provider
	maxTokens int
}

// NewGenerator creates a generator over the given provider.
func NewGenerator(provider llm.Provider, maxTokens int) *Generator {
	if maxTokens == 0 {
		maxTokens = 2500
	}
	return &Generator{provider: provider, maxTokens: maxTokens}
}

type variantPayload struct {
	Type            string   `json:"type"`
	Caption         string   `json:"caption"`
	Hashtags        []string `json:"hashtags"`
	EngagementScore int      `json:"engagement_score"`
	WhyItWorks      string   `json:"why_it_works"`
}

type variantsPayload struct {
	Variants []variantPayload `json:"variants"`
}

// Generate produces exactly three candidates, one per fixed style tag.
// Article HTML is stripped and truncated before prompting; any response
// that does not decode to the strict candidate shape fails the whole call.
func (g *Generator) Generate(ctx context.Context, item *feed.Item) ([]Candidate, error) {
	content := truncate(CleanHTML(item.Content), maxPromptContent)
	prompt := fmt.Sprintf(generatePrompt, item.Title, content, item.URL)

	log.Println("Generating LinkedIn caption variants...")
	responseText, err := g.provider.Generate(ctx, prompt, g.maxTokens)
	if err != nil {
		return nil, &ErrGeneration{Err: err}
	}

	candidates, err := parseCandidates(responseText)
	if err != nil {
		return nil, &ErrGeneration{Err: err}
	}

	log.Printf("Generated %d caption variants", len(candidates))
	return candidates, nil
}

// parseCandidates decodes the model output into the strict candidate shape:
// exactly one variant per expected style tag, each with a non-empty caption
// and an integer score.
func parseCandidates(responseText string) ([]Candidate, error) {
	payload := llm.StripCodeFences(responseText)

	var decoded variantsPayload
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return nil, fmt.Errorf("parsing model output: %w", err)
	}

	if len(decoded.Variants) != len(expectedTags) {
		return nil, fmt.Errorf("expected %d variants, got %d", len(expectedTags), len(decoded.Variants))
	}

	seen := make(map[StyleTag]bool, len(expectedTags))
	candidates := make([]Candidate, 0, len(decoded.Variants))
	for _, v := range decoded.Variants {
		tag := StyleTag(v.Type)
		if !validTag(tag) {
			return nil, fmt.Errorf("unknown variant type %q", v.Type)
		}
		if seen[tag] {
			return nil, fmt.Errorf("duplicate variant type %q", v.Type)
		}
		seen[tag] = true

		if v.Caption == "" {
			return nil, fmt.Errorf("variant %q has empty caption", v.Type)
		}

		candidates = append(candidates, Candidate{
			StyleTag:  tag,
			Text:      v.Caption,
			Hashtags:  v.Hashtags,
			Score:     clampScore(v.EngagementScore),
			Rationale: v.WhyItWorks,
		})
	}

	return candidates, nil
}

func validTag(tag StyleTag) bool {
	for _, t := range expectedTags {
		if tag == t {
			return true
		}
	}
	return false
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
