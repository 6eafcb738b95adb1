package render

import "strings"

// Format decides how extracted results become display text. Exactly one
// field is consulted, in declaration order; the zero value joins results
// with newlines. Styling stays out of band: formatted text never embeds
// escape codes, the host paints highlight classes instead.
type Format struct {
	// Template is applied to each result individually. Every "%s" in the
	// template is substituted with the result text.
	Template string
	// PerResult maps each result to its display form. Returning "" keeps
	// the raw result.
	PerResult func(result string) string
	// PerResultWithSource is PerResult with the segment's source text
	// available, for side by side layouts.
	PerResultWithSource func(source, result string) string
	// Custom assembles the whole segment in one call and takes over
	// styling: content it returns is displayed verbatim, no highlight
	// classes are applied on top.
	Custom func(source string, results, prefixes []string) string
}

// Resolve formats one segment's results. The styled return reports whether
// the caller should still apply highlight classes; a Custom formatter owns
// its output and gets raw, unstyled display.
func (f Format) Resolve(source string, results, prefixes []string) (content string, styled bool) {
	switch {
	case f.Template != "":
		out := make([]string, len(results))
		for i, r := range results {
			out[i] = strings.ReplaceAll(f.Template, "%s", r)
		}
		return strings.Join(out, "\n"), true
	case f.PerResult != nil:
		out := make([]string, len(results))
		for i, r := range results {
			if v := f.PerResult(r); v != "" {
				out[i] = v
			} else {
				out[i] = r
			}
		}
		return strings.Join(out, "\n"), true
	case f.PerResultWithSource != nil:
		out := make([]string, len(results))
		for i, r := range results {
			if v := f.PerResultWithSource(source, r); v != "" {
				out[i] = v
			} else {
				out[i] = r
			}
		}
		return strings.Join(out, "\n"), true
	case f.Custom != nil:
		return f.Custom(source, results, prefixes), false
	}
	return strings.Join(results, "\n"), true
}

// LeadingSep picks the separator an append-style insertion puts before the
// formatted content. Multiline content always starts on a fresh line. At
// the end of a line the break is kept unless the cursor directly follows a
// word, where a space reads better.
func LeadingSep(joined string, atLineEnd, afterWord bool) string {
	if strings.Contains(joined, "\n") {
		return "\n"
	}
	if atLineEnd && !afterWord {
		return "\n"
	}
	return " "
}
