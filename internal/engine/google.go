package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/csheth/lingo/internal/translate"
)

const defaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"

const defaultGoogleHTTPTimeout = 30 * time.Second

// googleEngine calls the free web translation endpoint. All segments of a
// run go out as one request joined by newlines; the endpoint keeps line
// breaks intact, so splitting the translation back on newlines restores the
// per-segment alignment.
type googleEngine struct {
	endpoint string
	client   *http.Client
}

// NewGoogle builds the Google engine. An empty endpoint selects the public
// one; tests point it at a local server.
func NewGoogle(endpoint string, client *http.Client) translate.Engine {
	if endpoint == "" {
		endpoint = defaultGoogleEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: defaultGoogleHTTPTimeout}
	}
	return &googleEngine{endpoint: endpoint, client: client}
}

func (e *googleEngine) Name() string { return "google" }

func (e *googleEngine) Translate(ctx context.Context, req translate.Request) ([]string, error) {
	if len(req.Segments) == 0 {
		return nil, fmt.Errorf("google: nothing to translate")
	}
	source := req.Source
	if source == "" {
		source = "auto"
	}

	form := url.Values{}
	form.Set("client", "gtx")
	form.Set("sl", source)
	form.Set("tl", req.Target)
	form.Set("dt", "t")
	form.Set("q", strings.Join(req.Segments, "\n"))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("google translate error: %s (%s)", resp.Status, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	translated, err := parseGoogleResponse(body)
	if err != nil {
		return nil, err
	}
	return splitAligned(translated, len(req.Segments))
}

// parseGoogleResponse walks the endpoint's nested-array payload. The first
// element is a list of chunks; each chunk's first element is the translated
// text for one slice of the input. Concatenating the chunks reproduces the
// whole translation, line breaks included.
func parseGoogleResponse(body []byte) (string, error) {
	var payload []any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("google translate: malformed response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("google translate: empty response")
	}
	chunks, ok := payload[0].([]any)
	if !ok {
		return "", fmt.Errorf("google translate: unexpected response shape")
	}
	var b strings.Builder
	for _, raw := range chunks {
		chunk, ok := raw.([]any)
		if !ok || len(chunk) == 0 {
			continue
		}
		if text, ok := chunk[0].(string); ok {
			b.WriteString(text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("google translate: response carried no text")
	}
	return b.String(), nil
}

// splitAligned recovers per-segment results from a newline-joined
// translation. The endpoint occasionally folds or adds line breaks; when
// alignment is lost there is nothing sensible to map results onto, so the
// caller gets an error rather than shuffled segments.
func splitAligned(text string, segments int) ([]string, error) {
	if segments == 1 {
		return []string{strings.TrimSpace(text)}, nil
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != segments {
		return nil, fmt.Errorf("google translate: got %d lines for %d segments", len(lines), segments)
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines, nil
}
