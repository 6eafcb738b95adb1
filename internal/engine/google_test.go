package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/csheth/lingo/internal/translate"
)

func TestGoogleTranslatesAlignedSegments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if got := r.Form.Get("sl"); got != "auto" {
			t.Fatalf("expected sl=auto for empty source, got %q", got)
		}
		if got := r.Form.Get("tl"); got != "fr" {
			t.Fatalf("expected tl=fr, got %q", got)
		}
		if got := r.Form.Get("q"); got != "Hello\nworld" {
			t.Fatalf("unexpected joined query: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[[["Bonjour\n","Hello\n",null,null],["monde","world",null,null]],null,"en"]`))
	}))
	defer server.Close()

	e := NewGoogle(server.URL, server.Client())
	results, err := e.Translate(context.Background(), translate.Request{
		Segments: []string{"Hello", "world"},
		Target:   "fr",
	})
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if len(results) != 2 || results[0] != "Bonjour" || results[1] != "monde" {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestGoogleSingleSegmentKeepsInternalNewlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[["ligne un\nligne deux","line one\nline two",null,null]],null,"en"]`))
	}))
	defer server.Close()

	e := NewGoogle(server.URL, server.Client())
	results, err := e.Translate(context.Background(), translate.Request{
		Segments: []string{"line one\nline two"},
		Target:   "fr",
	})
	if err != nil {
		t.Fatalf("translate failed: %v", err)
	}
	if len(results) != 1 || results[0] != "ligne un\nligne deux" {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestGoogleReportsLostAlignment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[[["tout sur une ligne","everything",null,null]],null,"en"]`))
	}))
	defer server.Close()

	e := NewGoogle(server.URL, server.Client())
	_, err := e.Translate(context.Background(), translate.Request{
		Segments: []string{"one", "two", "three"},
		Target:   "fr",
	})
	if err == nil || !strings.Contains(err.Error(), "3 segments") {
		t.Fatalf("expected alignment error, got %v", err)
	}
}

func TestGoogleSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	e := NewGoogle(server.URL, server.Client())
	_, err := e.Translate(context.Background(), translate.Request{
		Segments: []string{"hi"},
		Target:   "fr",
	})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
}
