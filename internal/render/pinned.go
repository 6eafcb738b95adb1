package render

import (
	"sync"
	"time"
)

// PinnedName is the panel the pinned render occupies.
const PinnedName = "*translation-pinned*"

var (
	pinnedMu sync.Mutex
	pinned   *PinnedRender
)

// PinnedRender keeps results in a panel that stays up until closed
// explicitly. One pinned panel exists per process; asking for another
// returns the same instance with refreshed options.
type PinnedRender struct {
	PopupRender
}

// Pinned returns the process-wide pinned render.
func Pinned(opts Options) *PinnedRender {
	pinnedMu.Lock()
	defer pinnedMu.Unlock()
	if pinned == nil {
		pinned = &PinnedRender{
			PopupRender: PopupRender{PanelRender: PanelRender{Name: PinnedName}},
		}
	}
	pinned.Opts = opts
	return pinned
}

// PinnedActive reports whether a pinned panel is currently alive.
func PinnedActive() bool {
	pinnedMu.Lock()
	defer pinnedMu.Unlock()
	if pinned == nil {
		return false
	}
	_, ok := Panel(PinnedName)
	return ok
}

// ClosePinned tears the pinned panel down. The next Pinned call starts
// fresh.
func ClosePinned() {
	pinnedMu.Lock()
	defer pinnedMu.Unlock()
	ClosePanel(PinnedName)
	pinned = nil
}

// DismissDelay is zero: the pinned panel never auto-dismisses.
func (r *PinnedRender) DismissDelay() time.Duration { return 0 }
