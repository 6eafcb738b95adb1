package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/csheth/lingo/internal/surface"
	"github.com/csheth/lingo/internal/translate"
)

// DefaultPanelName is where PanelRender writes unless told otherwise.
const DefaultPanelName = "*translation*"

var (
	panelsMu sync.Mutex
	panels   = map[string]*surface.Surface{}
)

// AcquirePanel returns the named panel surface, creating it on first use.
// A closed panel is replaced by a fresh surface under the same name.
func AcquirePanel(name string) *surface.Surface {
	panelsMu.Lock()
	defer panelsMu.Unlock()
	if s, ok := panels[name]; ok && !s.Closed() {
		return s
	}
	s := surface.New(name)
	panels[name] = s
	return s
}

// Panel looks up a live panel surface without creating one.
func Panel(name string) (*surface.Surface, bool) {
	panelsMu.Lock()
	defer panelsMu.Unlock()
	s, ok := panels[name]
	if !ok || s.Closed() {
		return nil, false
	}
	return s, true
}

// ClosePanel closes and forgets the named panel.
func ClosePanel(name string) {
	panelsMu.Lock()
	defer panelsMu.Unlock()
	if s, ok := panels[name]; ok {
		s.Close()
		delete(panels, name)
	}
}

// PanelRender shows runs in a persistent named panel. Init lays the panel
// out fresh for the run and leaves the surface read-only; Output patches
// finished results into their placeholders. The same instance is reused
// across runs, each Init starts over on the same surface.
type PanelRender struct {
	Name string
	Opts Options

	tk *tracker
}

// NewPanel returns a panel render writing to the named surface. An empty
// name selects DefaultPanelName.
func NewPanel(name string, opts Options) *PanelRender {
	if name == "" {
		name = DefaultPanelName
	}
	return &PanelRender{Name: name, Opts: opts}
}

func (r *PanelRender) Init(tr *translate.Translator) error {
	if len(tr.Segments) == 0 {
		return precondition("panel render", "nothing to display", nil)
	}
	surf := AcquirePanel(r.Name)
	tk := &tracker{surf: surf, opts: r.Opts}
	if err := tk.layout(tr); err != nil {
		return precondition("panel render", "layout failed", err)
	}
	surf.SetReadOnly(true)
	r.tk = tk
	return nil
}

func (r *PanelRender) Output(tr *translate.Translator) error {
	if r.tk == nil {
		return precondition("panel render", "output before init", nil)
	}
	return r.tk.patch(tr)
}

// Surface exposes the panel surface for the host's painter. Nil before the
// first Init.
func (r *PanelRender) Surface() *surface.Surface {
	if r.tk == nil {
		return nil
	}
	return r.tk.surf
}

// ExpandFold reveals the truncated source tail folded on the given line.
func (r *PanelRender) ExpandFold(line int) bool {
	if r.tk == nil {
		return false
	}
	return r.tk.expandAtLine(line)
}

// Header summarizes the run for the line above the panel.
func (r *PanelRender) Header(tr *translate.Translator) string {
	verb := "Translating"
	switch {
	case tr.State == translate.StateDone && tr.Failed():
		verb = "Translated (with errors)"
	case tr.State == translate.StateDone:
		verb = "Translated"
	}
	labels := make([]string, 0, len(tr.Tasks))
	done := 0
	for _, t := range tr.Tasks {
		labels = append(labels, t.Label)
		if t.State.Terminal() {
			done++
		}
	}
	return fmt.Sprintf("%s %s | %s | %d/%d",
		verb, tr.Target, strings.Join(labels, ", "), done, len(tr.Tasks))
}

// Keybinds lists the commands the host offers while this panel is shown.
func (r *PanelRender) Keybinds() []Keybind {
	return []Keybind{
		{Key: "t", Help: "next target"},
		{Key: "m", Help: "switch render"},
		{Key: "y", Help: "copy results"},
		{Key: "d", Help: "forget cached"},
		{Key: "R", Help: "refresh"},
		{Key: "o", Help: "open source"},
		{Key: "s", Help: "speak"},
		{Key: "w", Help: "save"},
		{Key: "e", Help: "edit panel"},
		{Key: "enter", Help: "expand fold"},
		{Key: "?", Help: "help"},
		{Key: "q", Help: "quit"},
	}
}
