// Package builder runs a shader build: it resolves the compiler, discovers
// shader sources and compiles each one into a SPIR-V binary next to it.
//
// # Pipeline
//
// A run is a straight line with no resumability:
//  1. **Resolve:** locate glslangValidator through a compiler.Strategy. A
//     failure here aborts the run before anything is compiled.
//  2. **Discover:** take the manifest verbatim, or walk the root directory
//     for recognized shader extensions. A traversal failure aborts the run.
//  3. **Plan:** build one shader.Job per source, dropping duplicates that
//     would write the same output path.
//  4. **Compile:** invoke the compiler once per job. A failing job is
//     recorded and the remaining jobs still run. Nothing is retried.
//
// # Concurrency
//
// With Workers <= 1 jobs run one after another in discovery order. Larger
// values run up to Workers compiler processes at once. Each output path has
// exactly one writer, so jobs need no coordination beyond collecting results.
package builder
