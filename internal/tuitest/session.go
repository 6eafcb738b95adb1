// Package tuitest drives a compiled binary inside a pseudo terminal and
// captures what it draws, for end-to-end tests of the interactive UI.
package tuitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

const (
	defaultCols        = 120
	defaultRows        = 32
	defaultWaitTimeout = 5 * time.Second
	pollInterval       = 20 * time.Millisecond
)

// Key sequences commonly sent to the program under test.
var (
	KeyEnter = []byte{'\r'}
	KeyTab   = []byte{'\t'}
	KeyEsc   = []byte{27}
	KeyCtrlC = []byte{3}
	KeyCtrlT = []byte{20}
)

// Options configures the spawned program.
type Options struct {
	Command []string
	Dir     string
	Env     []string
	Cols    int
	Rows    int
}

// Session is a live program under test. Input goes in through the pty and
// everything the program draws accumulates in the session, so tests can
// wait for output before sending the next key.
type Session struct {
	cmd  *exec.Cmd
	ptmx *os.File
	read chan struct{}

	mu  sync.Mutex
	out bytes.Buffer
}

// Start launches the command inside a pty sized to Options.
func Start(ctx context.Context, opts Options) (*Session, error) {
	if len(opts.Command) == 0 {
		return nil, errors.New("tuitest: command is required")
	}
	cols := opts.Cols
	if cols <= 0 {
		cols = defaultCols
	}
	rows := opts.Rows
	if rows <= 0 {
		rows = defaultRows
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.CommandContext(ctx, opts.Command[0], opts.Command[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = sessionEnv(opts.Env)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, fmt.Errorf("tuitest: start %s: %w", opts.Command[0], err)
	}

	s := &Session{cmd: cmd, ptmx: ptmx, read: make(chan struct{})}
	go s.drain()
	return s, nil
}

// drain copies program output into the session buffer, answering terminal
// capability probes on the way so the program does not stall waiting for a
// real terminal to reply.
func (s *Session) drain() {
	defer close(s.read)
	probes := newProbeAnswers(s.ptmx)
	buf := make([]byte, 4096)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			probes.Feed(buf[:n])
			s.mu.Lock()
			s.out.Write(buf[:n])
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Send writes literal text to the program.
func (s *Session) Send(text string) error {
	_, err := s.ptmx.Write([]byte(text))
	return err
}

// SendKey writes a raw key sequence.
func (s *Session) SendKey(key []byte) error {
	_, err := s.ptmx.Write(key)
	return err
}

// Output returns everything captured so far, ANSI stripped.
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Scrub(s.out.String())
}

// WaitFor polls the captured output until the substring shows up.
func (s *Session) WaitFor(substr string, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = defaultWaitTimeout
	}
	deadline := time.Now().Add(timeout)
	for {
		if strings.Contains(s.Output(), substr) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("tuitest: %q never appeared; output tail:\n%s", substr, tail(s.Output(), 2000))
		}
		time.Sleep(pollInterval)
	}
}

// Close waits for the program to exit, drains the pty, and returns the
// full capture. Exits by interrupt are fine when allowInterrupt is set.
func (s *Session) Close(allowInterrupt bool) (*Capture, error) {
	waitErr := make(chan error, 1)
	go func() { waitErr <- s.cmd.Wait() }()

	var runErr error
	select {
	case err := <-waitErr:
		runErr = err
	case <-time.After(defaultWaitTimeout):
		_ = s.cmd.Process.Kill()
		<-waitErr
		runErr = errors.New("tuitest: program did not exit, killed")
	}
	_ = s.ptmx.Close()
	<-s.read

	if runErr != nil && allowInterrupt && strings.Contains(runErr.Error(), "signal: interrupt") {
		runErr = nil
	}

	s.mu.Lock()
	raw := append([]byte(nil), s.out.Bytes()...)
	s.mu.Unlock()
	return &Capture{Raw: raw}, runErr
}

func sessionEnv(extra []string) []string {
	env := append(os.Environ(), extra...)
	for _, entry := range env {
		if strings.HasPrefix(entry, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
