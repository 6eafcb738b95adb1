package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSplitParagraphs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single", "hello world", []string{"hello world"}},
		{"two paragraphs", "one\n\ntwo", []string{"one", "two"}},
		{"internal newline kept", "a\nb\n\nc", []string{"a\nb", "c"}},
		{"whitespace-only line separates", "one\n \ntwo", []string{"one", "two"}},
		{"surrounding blanks dropped", "\n\n  one  \n\n", []string{"one"}},
		{"empty", "   \n\n  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.text, SplitParagraphs)
			if len(got) != len(tt.want) {
				t.Fatalf("Split(%q) = %#v, want %#v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("segment %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	got := Split("one\ntwo\n\nthree\n", SplitLines)
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("segment %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitSpansAddressOriginalText(t *testing.T) {
	t.Parallel()

	text := "  hello\n\nworld  "
	spans := SplitSpans(text, SplitParagraphs)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	runes := []rune(text)
	if got := string(runes[spans[0].Start:spans[0].End]); got != "hello" {
		t.Fatalf("span 0 covers %q", got)
	}
	if got := string(runes[spans[1].Start:spans[1].End]); got != "world" {
		t.Fatalf("span 1 covers %q", got)
	}
}

func TestReadLiteralAndFile(t *testing.T) {
	t.Parallel()

	got, err := Read("just some words")
	if err != nil || got != "just some words" {
		t.Fatalf("Read(literal) = %q, %v", got, err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(path, []byte("from a file\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	got, err = Read(path)
	if err != nil || got != "from a file\n" {
		t.Fatalf("Read(file) = %q, %v", got, err)
	}
}

func TestParseSplitMode(t *testing.T) {
	t.Parallel()

	if mode, err := ParseSplitMode(""); err != nil || mode != SplitParagraphs {
		t.Fatalf("default mode = %v, %v", mode, err)
	}
	if mode, err := ParseSplitMode("line"); err != nil || mode != SplitLines {
		t.Fatalf("line mode = %v, %v", mode, err)
	}
	if _, err := ParseSplitMode("words"); err == nil {
		t.Fatal("unknown mode must be rejected")
	}
}
