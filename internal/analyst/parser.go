package analyst

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	// Brace-span approximation tolerant of one nesting level. Enough for the
	// flat objects the prompt demands; deeper nesting falls through to tier 3.
	braceSpanRe = regexp.MustCompile(`(?s)\{[^{}]*(?:\{[^{}]*\}[^{}]*)*\}`)
)

// ExtractJSON pulls a single JSON object out of an arbitrary, possibly noisy
// model response. Three tiers, first success wins: a fenced json block, the
// first balanced-looking brace span, then the whole trimmed text. Returns
// ok=false when no tier yields valid JSON; callers must treat that as a
// hard parse failure, not an empty object.
func ExtractJSON(text string) (map[string]any, bool) {
	text = strings.TrimSpace(text)

	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		if obj, ok := parseObject(m[1]); ok {
			return obj, true
		}
	}

	if span := braceSpanRe.FindString(text); span != "" {
		if obj, ok := parseObject(span); ok {
			return obj, true
		}
	}

	return parseObject(text)
}

func parseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}
