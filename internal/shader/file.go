package shader

import (
	"path"

	"github.com/vk/vkshaderc/internal/fsutil"
)

// OutputSuffix is appended to a source path to form its compiled output path.
const OutputSuffix = ".spv"

// File is a shader source on disk.
type File struct {
	Path  string
	Stage Stage
}

// NewFile tags path with the stage derived from its extension.
func NewFile(path string) File {
	stage, _ := StageOf(path)
	return File{Path: path, Stage: stage}
}

// Job pairs a shader source with the path its compiled binary is written to.
type Job struct {
	Source File
	Output string
}

// NewJob returns the compile job for f. The output sits next to the source.
func NewJob(f File) Job {
	return Job{Source: f, Output: f.Path + OutputSuffix}
}

// Jobs builds one job per file, dropping any whose output path was already
// claimed by an earlier file so that no two jobs write the same output.
// Outputs are compared in cleaned forward-slash form, so "a.vert",
// "./a.vert" and "x/../a.vert" are one job.
func Jobs(files []File) []Job {
	seen := make(map[string]struct{}, len(files))
	jobs := make([]Job, 0, len(files))
	for _, f := range files {
		job := NewJob(f)
		key := path.Clean(fsutil.ToSlash(job.Output))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		jobs = append(jobs, job)
	}
	return jobs
}
