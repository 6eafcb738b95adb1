package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/csheth/lingo/internal/translate"
)

func newOllamaTestServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var payload struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if !payload.Stream {
			t.Fatal("expected streaming to be enabled")
		}
		if !strings.Contains(payload.Prompt, "into fr") {
			t.Fatalf("prompt missing target language: %s", payload.Prompt)
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		enc := json.NewEncoder(w)
		for i, chunk := range chunks {
			enc.Encode(map[string]any{
				"response": chunk,
				"done":     i == len(chunks)-1,
			})
		}
	}))
}

func TestOllamaStreamsPartialLines(t *testing.T) {
	server := newOllamaTestServer(t, []string{"Bonjour", "\nmonde"})
	defer server.Close()

	e := NewOllama(server.URL, "test-model", server.Client())
	se, ok := e.(translate.StreamingEngine)
	if !ok {
		t.Fatal("ollama engine should support streaming")
	}

	var partials [][]string
	results, err := se.TranslateStream(context.Background(), translate.Request{
		Segments: []string{"Hello", "world"},
		Target:   "fr",
	}, func(partial []string) {
		partials = append(partials, partial)
	})
	if err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	if len(results) != 2 || results[0] != "Bonjour" || results[1] != "monde" {
		t.Fatalf("unexpected results: %v", results)
	}
	if len(partials) != 2 {
		t.Fatalf("expected 2 partial emissions, got %d", len(partials))
	}
	if partials[0][0] != "Bonjour" {
		t.Fatalf("first partial should carry the first chunk, got %v", partials[0])
	}
}

func TestOllamaTranslateWithoutEmit(t *testing.T) {
	server := newOllamaTestServer(t, []string{"Salut"})
	defer server.Close()

	e := NewOllama(server.URL, "test-model", server.Client())
	results, err := e.Translate(context.Background(), translate.Request{
		Segments: []string{"Hi"},
		Target:   "fr",
	})
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if len(results) != 1 || results[0] != "Salut" {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestOllamaSurfacesStreamErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer server.Close()

	e := NewOllama(server.URL, "missing", server.Client())
	_, err := e.Translate(context.Background(), translate.Request{
		Segments: []string{"Hi"},
		Target:   "fr",
	})
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected model error, got %v", err)
	}
}

func TestOllamaRejectsMisalignedAnswer(t *testing.T) {
	server := newOllamaTestServer(t, []string{"only one line"})
	defer server.Close()

	e := NewOllama(server.URL, "test-model", server.Client())
	_, err := e.Translate(context.Background(), translate.Request{
		Segments: []string{"one", "two"},
		Target:   "fr",
	})
	if err == nil || !strings.Contains(err.Error(), "2 segments") {
		t.Fatalf("expected alignment error, got %v", err)
	}
}
