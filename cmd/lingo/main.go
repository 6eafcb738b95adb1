package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/csheth/lingo/internal/cache"
	"github.com/csheth/lingo/internal/engine"
	"github.com/csheth/lingo/internal/logging"
	"github.com/csheth/lingo/internal/notify"
	"github.com/csheth/lingo/internal/render"
	"github.com/csheth/lingo/internal/source"
	"github.com/csheth/lingo/internal/speech"
	"github.com/csheth/lingo/internal/surface"
	"github.com/csheth/lingo/internal/translate"
	"github.com/csheth/lingo/internal/tui"
)

// envSettings come from LINGO_* variables, optionally via a .env file.
// Flags win where both are set.
type envSettings struct {
	Source         string        `envconfig:"SOURCE"`
	Targets        string        `envconfig:"TARGETS" default:"en"`
	Engines        string        `envconfig:"ENGINES"`
	Render         string        `envconfig:"RENDER"`
	CacheDir       string        `envconfig:"CACHE_DIR"`
	CacheTTL       time.Duration `envconfig:"CACHE_TTL" default:"168h"`
	HistoryPath    string        `envconfig:"HISTORY"`
	LogPath        string        `envconfig:"LOG"`
	LogLevel       string        `envconfig:"LOG_LEVEL"`
	GoogleEndpoint string        `envconfig:"GOOGLE_ENDPOINT"`
	OllamaHost     string        `envconfig:"OLLAMA_HOST"`
	OllamaModel    string        `envconfig:"OLLAMA_MODEL"`
}

var renderModes = []string{"panel", "popup", "pinned", "replace", "append", "decorate", "clipboard", "notify"}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "lingo:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var env envSettings
	if err := envconfig.Process("lingo", &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}

	text := flag.String("text", "", `text to translate ("-" reads stdin)`)
	file := flag.String("file", "", "read the source from a file (.txt, .md or .pdf)")
	from := flag.String("from", env.Source, "source language code; empty lets engines detect it")
	to := flag.String("to", env.Targets, "comma-separated target languages, cycled with t")
	engineSel := flag.String("engines", orDefault(env.Engines, engine.DefaultEngines), "comma-separated engines (google, ollama, echo)")
	renderMode := flag.String("render", env.Render, "render mode: "+strings.Join(renderModes, ", "))
	splitMode := flag.String("split", "paragraphs", "segment splitting: paragraphs or lines")
	headless := flag.Bool("headless", false, "run once without the TUI and print the results")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	noCache := flag.Bool("no-cache", false, "disable the result cache")
	cacheDir := flag.String("cache-dir", env.CacheDir, "directory for cached results")
	historyPath := flag.String("history", orDefault(env.HistoryPath, defaultHistoryPath()), "history file for saved runs; empty disables saving")
	logPath := flag.String("log", env.LogPath, "log file; empty disables logging")
	flag.Parse()

	if *renderMode != "" && !validRenderMode(*renderMode) {
		return fmt.Errorf("unknown render mode %q (have: %s)", *renderMode, strings.Join(renderModes, ", "))
	}

	split, err := source.ParseSplitMode(*splitMode)
	if err != nil {
		return err
	}

	input := *text
	if *file != "" {
		input = *file
	}
	if input == "" && flag.NArg() > 0 {
		input = strings.Join(flag.Args(), " ")
	}
	initialText, err := source.Read(input)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	targets := splitList(*to)
	if len(targets) == 0 {
		return errors.New("no target languages; pass -to")
	}

	registry := engine.NewRegistry(engine.Config{
		GoogleEndpoint: env.GoogleEndpoint,
		OllamaHost:     env.OllamaHost,
		OllamaModel:    env.OllamaModel,
	})
	engines, err := registry.Resolve(*engineSel)
	if err != nil {
		return err
	}

	var resultCache translate.ResultCache
	if !*noCache {
		dir := *cacheDir
		if dir == "" {
			if base, err := os.UserCacheDir(); err == nil {
				dir = filepath.Join(base, "lingo")
			}
		}
		if dir != "" {
			c, err := cache.New(dir, env.CacheTTL)
			if err != nil {
				fmt.Fprintln(os.Stderr, "cache disabled:", err)
			} else {
				resultCache = c
			}
		}
	}

	var notifier render.Notifier
	if d := notify.Available(); d != nil {
		notifier = d
	}

	if *headless {
		logger, err := logging.NewConsole(env.LogLevel)
		if err != nil {
			return err
		}
		return runHeadless(headlessRun{
			text:     initialText,
			from:     *from,
			targets:  targets,
			engines:  engines,
			cache:    resultCache,
			mode:     *renderMode,
			split:    split,
			notifier: notifier,
			logger:   logger,
		})
	}

	var speaker speech.Speaker
	if c := speech.Available(); c != nil {
		speaker = c
	}

	logger, closeLog, err := logging.NewFile(*logPath, env.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(tui.New(tui.Config{
		Engines:     engines,
		Cache:       resultCache,
		Speaker:     speaker,
		Notifier:    notifier,
		Clipboard:   render.SystemClipboard{},
		HistoryPath: *historyPath,
		InitialText: initialText,
		Source:      *from,
		Targets:     targets,
		RenderMode:  *renderMode,
		SplitMode:   split,
		Logger:      logger,
	}), opts...)

	logger.Info().
		Str("engines", *engineSel).
		Str("targets", *to).
		Str("render", orDefault(*renderMode, "panel")).
		Msg("lingo starting")
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}

// headlessRun is one run without the event loop: jobs execute
// sequentially, updates apply inline, and the result prints to stdout.
type headlessRun struct {
	text     string
	from     string
	targets  []string
	engines  []translate.Engine
	cache    translate.ResultCache
	mode     string
	split    source.SplitMode
	notifier render.Notifier
	logger   zerolog.Logger
}

func runHeadless(h headlessRun) error {
	spans := source.SplitSpans(h.text, h.split)
	if len(spans) == 0 {
		return errors.New("nothing to translate; pass -text, -file or arguments")
	}
	surf := surface.New("*source*")
	if err := surf.Reset(h.text); err != nil {
		return err
	}
	runes := []rune(h.text)
	segments := make([]string, 0, len(spans))
	regions := make([]surface.Region, 0, len(spans))
	for _, sp := range spans {
		segments = append(segments, string(runes[sp.Start:sp.End]))
		regions = append(regions, surf.Region(sp.Start, sp.End))
	}

	tr := translate.New(segments, translate.Target{Source: h.from, Targets: h.targets})
	tr.Bounds = &translate.Bounds{Surface: surf, Regions: regions}
	if err := tr.Start(h.engines); err != nil {
		return err
	}

	out := h.buildRender()
	if err := out.Init(tr); err != nil {
		return err
	}

	ctx := context.Background()
	for _, job := range tr.Dispatch(h.cache) {
		final := job.Run(ctx, func(translate.Update) {})
		if !tr.Apply(final) {
			continue
		}
		if err := out.Output(tr); err != nil {
			h.logger.Warn().Err(err).Msg("render failed")
		}
	}

	switch h.mode {
	case "clipboard":
		h.logger.Info().Msg("results copied to clipboard")
	case "notify":
		h.logger.Info().Msg("notification sent")
	case "replace", "append":
		fmt.Println(surf.Text())
	default:
		if p, ok := out.(*render.PanelRender); ok && p.Surface() != nil {
			fmt.Println(p.Header(tr))
			fmt.Println(p.Surface().Text())
		}
	}
	if tr.Failed() {
		return errors.New("finished with engine errors")
	}
	return nil
}

func (h headlessRun) buildRender() render.Render {
	switch h.mode {
	case "clipboard":
		return &render.ClipboardRender{Clipboard: render.SystemClipboard{}}
	case "notify":
		return &render.NotifyRender{Notifier: h.notifier}
	case "replace":
		return &render.ReplaceRender{Mode: render.ModeReplace}
	case "append":
		return &render.ReplaceRender{Mode: render.ModeAppend}
	default:
		return render.NewPanel("", render.Options{})
	}
}

func validRenderMode(mode string) bool {
	for _, m := range renderModes {
		if m == mode {
			return true
		}
	}
	return false
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lingo", "history.json")
}
