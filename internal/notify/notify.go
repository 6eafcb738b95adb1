// Package notify posts desktop notifications through the platform's
// notification command.
package notify

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrNoBackend is returned when no notification command is installed.
var ErrNoBackend = errors.New("notify: no notification command found")

// Desktop delivers notifications via an external command.
type Desktop struct {
	build func(title, body string) *exec.Cmd
}

type backend struct {
	bin   string
	build func(title, body string) *exec.Cmd
}

var backends = []backend{
	{
		bin: "notify-send",
		build: func(title, body string) *exec.Cmd {
			return exec.Command("notify-send", "-a", "lingo", title, body)
		},
	},
	{
		bin: "osascript",
		build: func(title, body string) *exec.Cmd {
			script := fmt.Sprintf("display notification %q with title %q", body, title)
			return exec.Command("osascript", "-e", script)
		},
	},
	{
		bin: "termux-notification",
		build: func(title, body string) *exec.Cmd {
			return exec.Command("termux-notification", "--title", title, "--content", body)
		},
	},
}

// Available picks the first installed notification command, or nil when
// the machine has none.
func Available() *Desktop {
	for _, b := range backends {
		if _, err := exec.LookPath(b.bin); err == nil {
			return &Desktop{build: b.build}
		}
	}
	return nil
}

// Notify posts one notification and waits for the command to finish.
func (d *Desktop) Notify(title, body string) error {
	if d == nil || d.build == nil {
		return ErrNoBackend
	}
	cmd := d.build(title, body)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("notify: %s: %w", string(out), err)
	}
	return nil
}
