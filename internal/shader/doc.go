// Package shader models shader sources and their compile jobs, and discovers
// sources either from a manifest or by walking a directory tree.
package shader
