// Package engine implements the translation engines: the Google web
// endpoint, local models through Ollama, and an offline echo engine.
// The host picks engines by name through a Registry.
package engine

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/csheth/lingo/internal/translate"
)

// DefaultEngines is used when no engine selection is configured.
const DefaultEngines = "google"

// Config carries the backend settings the engine constructors need.
type Config struct {
	GoogleEndpoint string
	OllamaHost     string
	OllamaModel    string

	// HTTPClient overrides the per-engine defaults; tests use it to point
	// engines at local servers.
	HTTPClient *http.Client
}

// Registry resolves engine names to live engines.
type Registry struct {
	engines map[string]translate.Engine
}

// NewRegistry builds a registry with every known engine constructed from
// cfg.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{engines: make(map[string]translate.Engine)}
	r.Register(NewGoogle(cfg.GoogleEndpoint, cfg.HTTPClient))
	r.Register(NewOllama(cfg.OllamaHost, cfg.OllamaModel, cfg.HTTPClient))
	r.Register(NewEcho(0))
	return r
}

// Register adds or replaces one engine under its own name.
func (r *Registry) Register(e translate.Engine) {
	if e == nil {
		return
	}
	name := normalizeEngineName(e.Name())
	if name == "" {
		return
	}
	r.engines[name] = e
}

// Lookup resolves a single engine by name.
func (r *Registry) Lookup(name string) (translate.Engine, error) {
	e, ok := r.engines[normalizeEngineName(name)]
	if !ok {
		return nil, fmt.Errorf("engine %q is not registered (available: %s)", name, strings.Join(r.Names(), ", "))
	}
	return e, nil
}

// Resolve turns a comma-separated selection like "google,ollama" into
// engines, in selection order. Empty selections fall back to the default.
func (r *Registry) Resolve(selection string) ([]translate.Engine, error) {
	if strings.TrimSpace(selection) == "" {
		selection = DefaultEngines
	}
	seen := make(map[string]bool)
	var engines []translate.Engine
	for _, name := range strings.Split(selection, ",") {
		name = normalizeEngineName(name)
		if name == "" || seen[name] {
			continue
		}
		e, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		seen[name] = true
		engines = append(engines, e)
	}
	if len(engines) == 0 {
		return nil, fmt.Errorf("engine selection %q named no engines", selection)
	}
	return engines, nil
}

// Names lists the registered engine names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeEngineName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
