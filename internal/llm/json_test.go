package llm

import "testing"

func TestStripCodeFencesPlain(t *testing.T) {
	got := StripCodeFences(`{"key": "value"}`)
	if got != `{"key": "value"}` {
		t.Errorf("expected passthrough, got %q", got)
	}
}

func TestStripCodeFencesJSONFence(t *testing.T) {
	got := StripCodeFences("```json\n{\"key\": \"value\"}\n```")
	if got != `{"key": "value"}` {
		t.Errorf("expected fence stripped, got %q", got)
	}
}

func TestStripCodeFencesPlainFence(t *testing.T) {
	got := StripCodeFences("```\n{\"key\": \"value\"}\n```")
	if got != `{"key": "value"}` {
		t.Errorf("expected fence stripped, got %q", got)
	}
}

func TestStripCodeFencesWhitespace(t *testing.T) {
	got := StripCodeFences("  \n  {\"key\": \"value\"}  \n  ")
	if got != `{"key": "value"}` {
		t.Errorf("expected trimmed payload, got %q", got)
	}
}

func TestStripCodeFencesMultilinePayload(t *testing.T) {
	got := StripCodeFences("```json\n{\n  \"key\": \"value\"\n}\n```")
	if got != "{\n  \"key\": \"value\"\n}" {
		t.Errorf("expected inner lines preserved, got %q", got)
	}
}
