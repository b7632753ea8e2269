package shader

import (
	"path/filepath"
	"strings"
)

// Stage identifies the pipeline stage a shader source targets. It is
// derived from the source file's extension.
type Stage int

const (
	StageUnknown Stage = iota
	StageVertex
	StageFragment
	StageCompute
	StageTessEval
	StageTessControl
	StageGeometry
	StageRayGen
	StageRayClosestHit
	StageRayMiss
	StageRayAnyHit
	StageRayIntersection
)

var stageByExtension = map[string]Stage{
	".vert":  StageVertex,
	".frag":  StageFragment,
	".comp":  StageCompute,
	".tese":  StageTessEval,
	".tesc":  StageTessControl,
	".geom":  StageGeometry,
	".rgen":  StageRayGen,
	".rchit": StageRayClosestHit,
	".rmiss": StageRayMiss,
	".rahit": StageRayAnyHit,
	".rint":  StageRayIntersection,
}

var stageNames = map[Stage]string{
	StageUnknown:         "unknown",
	StageVertex:          "vertex",
	StageFragment:        "fragment",
	StageCompute:         "compute",
	StageTessEval:        "tessellation-evaluation",
	StageTessControl:     "tessellation-control",
	StageGeometry:        "geometry",
	StageRayGen:          "ray-generation",
	StageRayClosestHit:   "ray-closest-hit",
	StageRayMiss:         "ray-miss",
	StageRayAnyHit:       "ray-any-hit",
	StageRayIntersection: "ray-intersection",
}

// String implements fmt.Stringer.
func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// StageOf returns the stage for path's extension, compared
// case-insensitively, and whether the extension is recognized.
func StageOf(path string) (Stage, bool) {
	stage, ok := stageByExtension[strings.ToLower(filepath.Ext(path))]
	return stage, ok
}

// IsShader reports whether path carries a recognized shader extension.
func IsShader(path string) bool {
	_, ok := StageOf(path)
	return ok
}

// Extensions returns the recognized extensions, lower-cased and with the
// leading dot.
func Extensions() []string {
	exts := make([]string, 0, len(stageByExtension))
	for ext := range stageByExtension {
		exts = append(exts, ext)
	}
	return exts
}
