package builder

import (
	"sort"

	"github.com/vk/vkshaderc/internal/compiler"
	"github.com/vk/vkshaderc/internal/shader"
)

// JobResult is the outcome of one compile job.
type JobResult struct {
	Job     shader.Job
	Outcome compiler.Outcome
	// Err is nil for a successful job.
	Err error
}

// Result aggregates a run. Both lists are sorted by source path.
type Result struct {
	Compiler  compiler.Location
	Succeeded []JobResult
	Failed    []JobResult
}

// OK reports whether every job succeeded.
func (r *Result) OK() bool {
	return len(r.Failed) == 0
}

// FailedPaths returns the source paths of failed jobs.
func (r *Result) FailedPaths() []string {
	return sourcePaths(r.Failed)
}

// SucceededPaths returns the source paths of successful jobs.
func (r *Result) SucceededPaths() []string {
	return sourcePaths(r.Succeeded)
}

func sourcePaths(results []JobResult) []string {
	out := make([]string, 0, len(results))
	for _, jr := range results {
		out = append(out, jr.Job.Source.Path)
	}
	return out
}

func sortResults(results []JobResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Job.Source.Path < results[j].Job.Source.Path
	})
}
