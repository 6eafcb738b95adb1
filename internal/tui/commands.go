package tui

import (
	"context"
	"net/url"
	"os/exec"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/csheth/lingo/internal/history"
	"github.com/csheth/lingo/internal/render"
	"github.com/csheth/lingo/internal/translate"
)

// translateJobCmd runs one task's job off the loop. Streaming partials are
// pushed onto the shared updates channel; the final update comes back as
// the job payload.
func (m *model) translateJobCmd(job translate.Job) tea.Cmd {
	updates := m.updates
	return m.jobs.Start(jobKindTranslate, func(ctx context.Context) (tea.Msg, error) {
		final := job.Run(ctx, func(u translate.Update) {
			select {
			case updates <- u:
			default:
				// A full channel drops the partial; the final update
				// still arrives as the payload.
			}
		})
		return runUpdateMsg{update: final}, final.Err
	})
}

// waitForUpdate blocks on the shared updates channel and delivers the next
// streaming partial as a message.
func waitForUpdate(updates <-chan translate.Update) tea.Cmd {
	return func() tea.Msg {
		return runUpdateMsg{update: <-updates}
	}
}

// subscribeCmd arms the single channel receiver. Receiving a partial frees
// it, and handleRunUpdate re-arms right away, so at most one goroutine ever
// blocks on the channel.
func (m *model) subscribeCmd() tea.Cmd {
	if m.subscribed {
		return nil
	}
	m.subscribed = true
	return waitForUpdate(m.updates)
}

func popupTimerCmd(seq int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return popupExpiredMsg{seq: seq}
	})
}

// copyCmd pushes the finished run through a clipboard render off the loop.
// The translator is terminal by the time this is built, so the job only
// reads settled state.
func (m *model) copyCmd() tea.Cmd {
	tr := m.tr
	clip := m.config.Clipboard
	if clip == nil {
		clip = render.SystemClipboard{}
	}
	return m.jobs.Start(jobKindCopy, func(ctx context.Context) (tea.Msg, error) {
		r := &render.ClipboardRender{Clipboard: clip}
		if err := r.Init(tr); err != nil {
			return copyDoneMsg{err: err}, err
		}
		if err := r.Output(tr); err != nil {
			return copyDoneMsg{err: err}, err
		}
		return copyDoneMsg{chars: len([]rune(render.CombinedText(tr)))}, nil
	})
}

// saveCmd snapshots on the loop and writes the history file off it.
func (m *model) saveCmd() tea.Cmd {
	rec := history.Snapshot(m.tr)
	path := m.config.HistoryPath
	return m.jobs.Start(jobKindSave, func(ctx context.Context) (tea.Msg, error) {
		if err := history.Save(path, []history.Record{rec}); err != nil {
			return saveDoneMsg{path: path, err: err}, err
		}
		return saveDoneMsg{path: path}, nil
	})
}

func (m *model) speakCmd(text string) tea.Cmd {
	speaker := m.config.Speaker
	return m.jobs.Start(jobKindSpeak, func(ctx context.Context) (tea.Msg, error) {
		if err := speaker.Speak(text); err != nil {
			return speakDoneMsg{err: err}, err
		}
		return speakDoneMsg{}, nil
	})
}

func (m *model) openCmd() tea.Cmd {
	target := webTranslateURL(m.tr)
	return m.jobs.Start(jobKindOpen, func(ctx context.Context) (tea.Msg, error) {
		if err := openInBrowser(target); err != nil {
			return openDoneMsg{url: target, err: err}, err
		}
		return openDoneMsg{url: target}, nil
	})
}

// clearCacheCmd collects the run's cache keys on the loop, then deletes
// them off it.
func (m *model) clearCacheCmd() tea.Cmd {
	cache := m.config.Cache
	var keys []string
	for _, task := range m.tr.Tasks {
		for part := range m.tr.Segments {
			if key := m.tr.CacheKey(task, part); key != "" {
				keys = append(keys, key)
			}
		}
	}
	return m.jobs.Start(jobKindCache, func(ctx context.Context) (tea.Msg, error) {
		for _, key := range keys {
			cache.Delete(key)
		}
		return cacheClearedMsg{removed: len(keys)}, nil
	})
}

func webTranslateURL(tr *translate.Translator) string {
	src := tr.Target.Source
	if src == "" {
		src = "auto"
	}
	q := url.Values{}
	q.Set("sl", src)
	q.Set("tl", tr.Target.Active())
	q.Set("op", "translate")
	q.Set("text", tr.Text)
	return "https://translate.google.com/?" + q.Encode()
}

func openInBrowser(target string) error {
	var argv []string
	switch runtime.GOOS {
	case "darwin":
		argv = []string{"open", target}
	case "windows":
		argv = []string{"rundll32", "url.dll,FileProtocolHandler", target}
	default:
		argv = []string{"xdg-open", target}
	}
	return exec.Command(argv[0], argv[1:]...).Start()
}
