package tuitest

import (
	"bytes"
	"io"
	"regexp"
	"strings"
)

// Capture is the terminal stream recorded over a whole session.
type Capture struct {
	Raw []byte
}

var (
	clearScreenRe = regexp.MustCompile(`\x1b\[[0-9;]*J`)
	csiRe         = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)
	oscRe         = regexp.MustCompile(`\x1b\][^\x07]*(\x07|\x1b\\)`)
)

// Screens splits the capture at clear-screen sequences and returns each
// redraw as scrubbed plain text. Redraws with no visible content are
// dropped.
func (c *Capture) Screens() []string {
	cleaned := strings.ReplaceAll(string(c.Raw), "\r", "")
	var screens []string
	for _, part := range clearScreenRe.Split(cleaned, -1) {
		plain := tidy(Scrub(part))
		if strings.TrimSpace(plain) == "" {
			continue
		}
		screens = append(screens, plain)
	}
	return screens
}

// Last returns the final screen, or "" when nothing was drawn.
func (c *Capture) Last() string {
	screens := c.Screens()
	if len(screens) == 0 {
		return ""
	}
	return screens[len(screens)-1]
}

// Contains reports whether any screen showed the substring.
func (c *Capture) Contains(substr string) bool {
	for _, screen := range c.Screens() {
		if strings.Contains(screen, substr) {
			return true
		}
	}
	return false
}

// Scrub removes ANSI escape sequences and terminal control bytes, leaving
// the printable text.
func Scrub(s string) string {
	s = oscRe.ReplaceAllString(s, "")
	s = csiRe.ReplaceAllString(s, "")
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\x00', '\x07', '\x0e', '\x0f':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// probeAnswers replies to the capability queries bubbletea and lipgloss
// send on startup; unanswered probes make the program wait out a timeout
// per query before drawing.
type probeAnswers struct {
	w       io.Writer
	pending []byte
	table   []probeReply
}

type probeReply struct {
	probe []byte
	reply []byte
}

func newProbeAnswers(w io.Writer) *probeAnswers {
	return &probeAnswers{
		w: w,
		table: []probeReply{
			{[]byte("\x1b[6n"), []byte("\x1b[1;1R")},
			{[]byte("\x1b]10;?\x07"), []byte("\x1b]10;rgb:dddd/dddd/dddd\x07")},
			{[]byte("\x1b]10;?\x1b\\"), []byte("\x1b]10;rgb:dddd/dddd/dddd\x1b\\")},
			{[]byte("\x1b]11;?\x07"), []byte("\x1b]11;rgb:0000/0000/0000\x07")},
			{[]byte("\x1b]11;?\x1b\\"), []byte("\x1b]11;rgb:0000/0000/0000\x1b\\")},
		},
	}
}

// Feed scans a chunk of program output and answers every probe found.
// Probes can span chunk boundaries, so a short tail is kept between calls.
func (p *probeAnswers) Feed(chunk []byte) {
	p.pending = append(p.pending, chunk...)
	for {
		answered := false
		for _, pr := range p.table {
			if idx := bytes.Index(p.pending, pr.probe); idx >= 0 {
				p.pending = p.pending[idx+len(pr.probe):]
				_, _ = p.w.Write(pr.reply)
				answered = true
			}
		}
		if !answered {
			break
		}
	}
	if len(p.pending) > 256 {
		p.pending = p.pending[len(p.pending)-64:]
	}
}
