// Package speech voices text through whatever TTS command the machine
// carries. Reads run in the background; starting a new read or quitting
// the program interrupts the current one first.
package speech

import (
	"errors"
	"os/exec"
	"sync"
)

// Speaker reads text aloud.
type Speaker interface {
	Speak(text string) error
	// Interrupt stops the current read, if any. Safe to call when idle.
	Interrupt() error
}

// ErrNoBackend is returned when no TTS command is installed.
var ErrNoBackend = errors.New("speech: no tts command found")

// candidates, in preference order. The text is appended as the last
// argument.
var candidates = [][]string{
	{"say"},
	{"espeak-ng"},
	{"espeak"},
}

// Command speaks through an external process and keeps a handle on it so a
// later read or an interrupt can kill it.
type Command struct {
	argv []string

	mu   sync.Mutex
	proc *exec.Cmd
}

// Available picks the first installed TTS command, or nil when the machine
// has none.
func Available() *Command {
	for _, argv := range candidates {
		if _, err := exec.LookPath(argv[0]); err == nil {
			return &Command{argv: argv}
		}
	}
	return nil
}

// New builds a speaker around an explicit command line.
func New(argv ...string) *Command {
	return &Command{argv: argv}
}

// Speak interrupts any running read and starts voicing text.
func (c *Command) Speak(text string) error {
	if len(c.argv) == 0 {
		return ErrNoBackend
	}
	if text == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()

	args := append(append([]string{}, c.argv[1:]...), text)
	cmd := exec.Command(c.argv[0], args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	c.proc = cmd
	go func() {
		cmd.Wait()
		c.mu.Lock()
		if c.proc == cmd {
			c.proc = nil
		}
		c.mu.Unlock()
	}()
	return nil
}

// Interrupt kills the current read.
func (c *Command) Interrupt() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	return nil
}

func (c *Command) stopLocked() {
	if c.proc == nil || c.proc.Process == nil {
		return
	}
	c.proc.Process.Kill()
	c.proc = nil
}
