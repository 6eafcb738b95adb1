package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/csheth/lingo/internal/translate"
)

// echoEngine is the offline engine: it tags each segment with the target
// language instead of translating. Useful for demos and for exercising the
// whole pipeline without network access.
type echoEngine struct {
	delay time.Duration
}

// NewEcho builds the echo engine. A non-zero delay simulates backend
// latency.
func NewEcho(delay time.Duration) translate.Engine {
	return &echoEngine{delay: delay}
}

func (e *echoEngine) Name() string { return "echo" }

func (e *echoEngine) Translate(ctx context.Context, req translate.Request) ([]string, error) {
	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	results := make([]string, len(req.Segments))
	for i, seg := range req.Segments {
		results[i] = fmt.Sprintf("[%s] %s", req.Target, seg)
	}
	return results, nil
}
