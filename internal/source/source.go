// Package source resolves the text to translate: a literal argument,
// standard input, or a file (plain text, markdown, pdf), and splits it
// into the segments one run works on.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// SplitMode selects how a text becomes segments.
type SplitMode int

const (
	// SplitParagraphs cuts on blank lines. The default.
	SplitParagraphs SplitMode = iota
	// SplitLines cuts on every line break.
	SplitLines
)

// ParseSplitMode maps a flag value to a split mode.
func ParseSplitMode(s string) (SplitMode, error) {
	switch s {
	case "", "para", "paragraph", "paragraphs":
		return SplitParagraphs, nil
	case "line", "lines":
		return SplitLines, nil
	}
	return SplitParagraphs, fmt.Errorf("unknown split mode %q", s)
}

// Read resolves input into text. "-" reads stdin; an existing file path is
// read from disk, with pdf extraction for .pdf; anything else is taken as
// the literal text.
func Read(input string) (string, error) {
	if input == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	if info, err := os.Stat(input); err == nil && !info.IsDir() {
		if strings.EqualFold(filepath.Ext(input), ".pdf") {
			return readPDF(input)
		}
		data, err := os.ReadFile(input)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return input, nil
}

func readPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}
	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return normalizeWhitespace(builder.String()), nil
}

var extraneousWhitespace = regexp.MustCompile(`[ \t]{2,}`)

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = extraneousWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Span is a segment's rune range within the original text.
type Span struct {
	Start int
	End   int
}

// Split cuts text into non-empty segments.
func Split(text string, mode SplitMode) []string {
	spans := SplitSpans(text, mode)
	runes := []rune(text)
	segs := make([]string, 0, len(spans))
	for _, sp := range spans {
		segs = append(segs, string(runes[sp.Start:sp.End]))
	}
	return segs
}

// SplitSpans cuts text into segments and reports where each one lives, so
// callers can anchor regions over the original. Leading and trailing
// whitespace stays outside the spans; empty segments are skipped.
func SplitSpans(text string, mode SplitMode) []Span {
	runes := []rune(text)
	var spans []Span
	start := -1
	blanks := 0
	flush := func(end int) {
		if start >= 0 {
			spans = append(spans, trimSpan(runes, Span{Start: start, End: end}))
			start = -1
		}
	}
	for i, r := range runes {
		switch {
		case r == '\n' && mode == SplitLines:
			flush(i)
		case r == '\n':
			blanks++
			if blanks >= 2 {
				flush(i)
			}
		case isBlank(r):
			// spaces and tabs neither open a segment nor end a blank run,
			// so whitespace-only lines still separate paragraphs
		default:
			if start < 0 {
				start = i
			}
			blanks = 0
		}
	}
	flush(len(runes))
	return spans
}

func trimSpan(runes []rune, sp Span) Span {
	for sp.Start < sp.End && isBlank(runes[sp.End-1]) {
		sp.End--
	}
	for sp.Start < sp.End && (isBlank(runes[sp.Start]) || runes[sp.Start] == '\n') {
		sp.Start++
	}
	return sp
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
