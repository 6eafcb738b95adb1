package translate

import "context"

// Request is one batched translation call: every segment of the run, in
// order, translated into a single target language.
type Request struct {
	Segments []string
	Source   string // "" lets the engine detect the source language
	Target   string
}

// Engine produces translations. Implementations live outside this package
// and are free to batch the segments however their backend requires, as
// long as they return one result per segment, in segment order.
type Engine interface {
	Name() string
	Translate(ctx context.Context, req Request) ([]string, error)
}

// StreamingEngine is an Engine that can surface partial content while the
// backend is still responding. Emitted slices follow the same
// one-per-segment shape; missing tails are allowed while streaming.
type StreamingEngine interface {
	Engine
	TranslateStream(ctx context.Context, req Request, emit func(partial []string)) ([]string, error)
}

// ResultCache is the external cache collaborator. Keys come from
// Translator.CacheKey; implementations must tolerate concurrent access
// because jobs consult the cache off the event loop.
type ResultCache interface {
	Get(key string) (string, bool)
	Put(key, result string)
	Delete(key string)
}

// Update is one state change reported by a job, applied on the event loop.
type Update struct {
	RunSeq  int
	TaskID  string
	Results []string
	Err     error
	Partial bool
}

// Job is the off-loop work for one task. Run blocks until the task is
// terminal and returns the final update; streaming partials, when the
// engine supports them, are handed to emit along the way.
type Job struct {
	TaskID string
	Run    func(ctx context.Context, emit func(Update)) Update
}

// Dispatch builds one job per pending task. The jobs capture copies of the
// run's inputs, so they never read the Translator concurrently with the
// event loop. When cache is non-nil it is consulted before engine I/O and
// filled after a successful call.
func (tr *Translator) Dispatch(cache ResultCache) []Job {
	req := Request{
		Segments: append([]string(nil), tr.Segments...),
		Source:   tr.Target.Source,
		Target:   tr.Target.Active(),
	}
	seq := tr.seq
	jobs := make([]Job, 0, len(tr.Tasks))
	for _, task := range tr.Tasks {
		if task.State.Terminal() {
			continue
		}
		engine := task.Engine
		taskID := task.ID
		keys := make([]string, len(tr.Segments))
		for i := range tr.Segments {
			keys[i] = tr.CacheKey(task, i)
		}
		jobs = append(jobs, Job{
			TaskID: taskID,
			Run: func(ctx context.Context, emit func(Update)) Update {
				if cached, ok := lookupAll(cache, keys); ok {
					return Update{RunSeq: seq, TaskID: taskID, Results: cached}
				}
				results, err := runEngine(ctx, engine, req, func(partial []string) {
					if emit != nil {
						emit(Update{RunSeq: seq, TaskID: taskID, Results: partial, Partial: true})
					}
				})
				if err != nil {
					return Update{RunSeq: seq, TaskID: taskID, Err: err}
				}
				storeAll(cache, keys, results)
				return Update{RunSeq: seq, TaskID: taskID, Results: results}
			},
		})
	}
	return jobs
}

func runEngine(ctx context.Context, e Engine, req Request, emit func([]string)) ([]string, error) {
	if se, ok := e.(StreamingEngine); ok {
		return se.TranslateStream(ctx, req, emit)
	}
	return e.Translate(ctx, req)
}

func lookupAll(cache ResultCache, keys []string) ([]string, bool) {
	if cache == nil {
		return nil, false
	}
	results := make([]string, len(keys))
	for i, key := range keys {
		cached, ok := cache.Get(key)
		if !ok {
			return nil, false
		}
		results[i] = cached
	}
	return results, true
}

func storeAll(cache ResultCache, keys, results []string) {
	if cache == nil || len(keys) != len(results) {
		return
	}
	for i, key := range keys {
		cache.Put(key, results[i])
	}
}
