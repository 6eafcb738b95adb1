package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/csheth/lingo/internal/translate"
)

const (
	defaultOllamaHost  = "http://localhost:11434"
	defaultOllamaModel = "qwen3:4b"
)

// Local models can take a while on long inputs; the caller's context still
// cancels early.
const defaultOllamaHTTPTimeout = 3 * time.Minute

// ollamaEngine translates through a local Ollama server. It streams when
// the host asks it to, surfacing the lines decoded so far as partial
// results.
type ollamaEngine struct {
	host   string
	model  string
	client *http.Client
}

// NewOllama builds the Ollama engine. Empty host/model select the local
// defaults.
func NewOllama(host, model string, client *http.Client) translate.Engine {
	if host == "" {
		host = defaultOllamaHost
	}
	if model == "" {
		model = defaultOllamaModel
	}
	if client == nil {
		client = &http.Client{Timeout: defaultOllamaHTTPTimeout}
	}
	return &ollamaEngine{host: strings.TrimRight(host, "/"), model: model, client: client}
}

func (e *ollamaEngine) Name() string { return "ollama" }

func (e *ollamaEngine) Translate(ctx context.Context, req translate.Request) ([]string, error) {
	return e.TranslateStream(ctx, req, nil)
}

func (e *ollamaEngine) TranslateStream(ctx context.Context, req translate.Request, emit func([]string)) ([]string, error) {
	if len(req.Segments) == 0 {
		return nil, fmt.Errorf("ollama: nothing to translate")
	}
	prompt := buildTranslatePrompt(req)

	payload := map[string]any{
		"model":  e.model,
		"prompt": prompt,
		"stream": true,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.host+"/api/generate", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("ollama API error: %s (%s)", resp.Status, strings.TrimSpace(string(body)))
	}

	// The generate endpoint streams NDJSON: one object per token batch,
	// the last one marked done.
	var acc strings.Builder
	dec := json.NewDecoder(resp.Body)
	for {
		var chunk struct {
			Response string `json:"response"`
			Done     bool   `json:"done"`
			Error    string `json:"error"`
		}
		if err := dec.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("ollama stream: %w", err)
		}
		if chunk.Error != "" {
			return nil, fmt.Errorf("ollama: %s", chunk.Error)
		}
		acc.WriteString(chunk.Response)
		if emit != nil && chunk.Response != "" {
			if partial := partialLines(acc.String()); len(partial) > 0 {
				emit(partial)
			}
		}
		if chunk.Done {
			break
		}
	}
	if acc.Len() == 0 {
		return nil, fmt.Errorf("ollama returned an empty response")
	}
	return parseTranslatedLines(acc.String(), len(req.Segments))
}
