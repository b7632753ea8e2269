// Package manifest reads and writes HCL shader manifests: fixed lists of
// shader sources used instead of directory discovery.
//
//	shader_set "4_Pipelines" {
//	  base_dir = "${root}/examples/assets/shaders/4_Pipelines"
//	  shaders  = ["phong.vert", "phong.frag"]
//	}
//
// Expressions may reference `root` and `platform`. A relative base_dir is
// resolved against the directory of the manifest file declaring it.
package manifest
