package render

import "time"

// PopupName is the transient panel PopupRender writes to.
const PopupName = "*translation-popup*"

// DefaultDismissAfter is how long a finished popup stays visible when the
// options do not say otherwise.
const DefaultDismissAfter = 5 * time.Second

// PopupRender is the panel render in a throwaway panel. The host shows it
// near the cursor and dismisses it DismissDelay after the run finishes, or
// as soon as the user moves on.
type PopupRender struct {
	PanelRender
}

// NewPopup returns a popup render.
func NewPopup(opts Options) *PopupRender {
	return &PopupRender{PanelRender: PanelRender{Name: PopupName, Opts: opts}}
}

// DismissDelay is how long the host keeps the popup up once the run is
// finished.
func (r *PopupRender) DismissDelay() time.Duration {
	if r.Opts.DismissAfter > 0 {
		return r.Opts.DismissAfter
	}
	return DefaultDismissAfter
}
