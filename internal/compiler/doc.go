// Package compiler locates the glslangValidator executable and runs it over
// single shader compile jobs.
//
// Resolution is pure with respect to process state: the working directory,
// the search path and the platform are passed in by the caller, so every
// strategy can be exercised against a temporary directory tree.
package compiler
