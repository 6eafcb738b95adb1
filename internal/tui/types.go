package tui

import (
	"fmt"
	"strings"

	"github.com/csheth/lingo/internal/translate"
)

type stage int

const (
	stageCompose stage = iota
	stageResults
)

// renderMode selects which output backend the next run uses.
type renderMode int

const (
	renderPanel renderMode = iota
	renderPopup
	renderPinned
	renderReplace
	renderAppend
	renderDecorate
	renderClipboard
	renderNotify

	renderModeCount
)

func (r renderMode) String() string {
	switch r {
	case renderPanel:
		return "panel"
	case renderPopup:
		return "popup"
	case renderPinned:
		return "pinned"
	case renderReplace:
		return "replace"
	case renderAppend:
		return "append"
	case renderDecorate:
		return "decorate"
	case renderClipboard:
		return "clipboard"
	case renderNotify:
		return "notify"
	default:
		return "unknown"
	}
}

func (r renderMode) next() renderMode {
	return (r + 1) % renderModeCount
}

// inPlace reports whether the mode lands results outside a dedicated
// panel; the results pane then keeps showing the compose surface.
func (r renderMode) inPlace() bool {
	switch r {
	case renderReplace, renderAppend, renderDecorate, renderClipboard, renderNotify:
		return true
	}
	return false
}

// parseRenderMode maps a flag value to a mode. Empty selects the panel.
func parseRenderMode(s string) (renderMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return renderPanel, nil
	}
	for r := renderMode(0); r < renderModeCount; r++ {
		if r.String() == name {
			return r, nil
		}
	}
	return renderPanel, fmt.Errorf("unknown render mode %q", s)
}

// runUpdateMsg carries one translate.Update onto the event loop; partials
// arrive through the subscription channel, final updates as job payloads.
type runUpdateMsg struct {
	update translate.Update
}

type popupExpiredMsg struct {
	seq int
}

type copyDoneMsg struct {
	chars int
	err   error
}

type saveDoneMsg struct {
	path string
	err  error
}

type speakDoneMsg struct {
	err error
}

type openDoneMsg struct {
	url string
	err error
}

type cacheClearedMsg struct {
	removed int
}
