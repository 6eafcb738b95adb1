package engine

import (
	"fmt"
	"strings"

	"github.com/csheth/lingo/internal/translate"
)

// Local models expose large context windows but degrade well before them;
// keep prompts comfortably small.
const maxPromptChars = 100_000

func buildTranslatePrompt(req translate.Request) string {
	var b strings.Builder
	b.WriteString("You are a professional translator.\n")
	if req.Source != "" {
		fmt.Fprintf(&b, "Translate the following text from %s into %s.\n", req.Source, req.Target)
	} else {
		fmt.Fprintf(&b, "Translate the following text into %s.\n", req.Target)
	}
	b.WriteString("Output exactly one translated line per input line, in the same order.\n")
	b.WriteString("Output ONLY the translated lines. No numbering, no notes, no quotes.\n\n")
	b.WriteString(clipText(strings.Join(req.Segments, "\n"), maxPromptChars))
	return b.String()
}

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

// partialLines exposes a still-streaming response as per-segment results.
// The tail line is usually mid-word, which is fine for live display.
func partialLines(raw string) []string {
	raw = stripCodeFence(raw)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

// parseTranslatedLines checks a finished model response against the
// one-line-per-segment protocol. Models pad answers with fences and blank
// lines; those are stripped before the count check.
func parseTranslatedLines(raw string, segments int) ([]string, error) {
	raw = strings.TrimSpace(stripCodeFence(raw))
	if raw == "" {
		return nil, fmt.Errorf("model returned an empty translation")
	}
	if segments == 1 {
		return []string{raw}, nil
	}
	all := strings.Split(raw, "\n")
	lines := make([]string, 0, len(all))
	for _, line := range all {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) != segments {
		return nil, fmt.Errorf("model returned %d lines for %d segments", len(lines), segments)
	}
	return lines, nil
}

func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return raw
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
