package render

import (
	"fmt"

	"github.com/csheth/lingo/internal/translate"
)

// DisplayRecord is the normalized view of one (segment, task) pair. Records
// are what the variants consume: the tracker patches one span per record,
// the in-place renders group them back per segment, clipboard and
// notification join them into a single string.
type DisplayRecord struct {
	// Segment is the ordinal of the source segment this record belongs to.
	Segment int
	// Ordinal is the record's index in the extraction order. Placeholder
	// spans laid out at Init store it, so later patches can look up their
	// record even after every position on the surface has moved.
	Ordinal int
	// Prefix is the formatted task label, empty when the prefix policy
	// suppresses it.
	Prefix string
	// Result is the displayable text for this segment: the task's answer,
	// the error annotation, or empty while the task is still running.
	Result string
	State  translate.State
	Task   *translate.Task
}

// Records flattens the run into display records, segment-major with tasks in
// run order. The same translator state always yields the same records, in
// the same order; nothing here mutates the translator. Every render pass
// produces exactly len(Segments)*len(Tasks) records.
func Records(tr *translate.Translator, opts Options) []DisplayRecord {
	records := make([]DisplayRecord, 0, len(tr.Segments)*len(tr.Tasks))
	for i := range tr.Segments {
		for _, task := range tr.Tasks {
			rec := DisplayRecord{
				Segment: i,
				Ordinal: len(records),
				Prefix:  recordPrefix(task, len(tr.Tasks), opts.Prefix),
				State:   task.State,
				Task:    task,
			}
			switch {
			case task.State == translate.StateError:
				rec.Result = errorAnnotation(task)
			case i < len(task.Results):
				rec.Result = task.Results[i]
			}
			records = append(records, rec)
		}
	}
	return records
}

// recordPrefix applies the render's prefix policy. Auto shows labels only
// when several tasks would otherwise be indistinguishable.
func recordPrefix(task *translate.Task, taskCount int, policy PrefixPolicy) string {
	switch policy {
	case PrefixNever:
		return ""
	case PrefixAlways:
	default:
		if taskCount < 2 {
			return ""
		}
	}
	if task.Label == "" {
		return ""
	}
	return "[" + task.Label + "]"
}

// errorAnnotation stands in for the result text of a failed task, so panel
// style renders can show the failure inline next to succeeded tasks.
func errorAnnotation(task *translate.Task) string {
	if task.Err == nil {
		return "[error] translation failed"
	}
	return fmt.Sprintf("[error] %v", task.Err)
}

// segmentSlice gathers the results and prefixes of one segment across all
// tasks, in task order, ready to hand to a Format.
func segmentSlice(records []DisplayRecord, segment int) (results, prefixes []string) {
	for _, rec := range records {
		if rec.Segment != segment {
			continue
		}
		results = append(results, rec.Result)
		prefixes = append(prefixes, rec.Prefix)
	}
	return results, prefixes
}
