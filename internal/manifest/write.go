package manifest

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/vkshaderc/internal/fsutil"
	"github.com/vk/vkshaderc/internal/shader"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// FromFiles groups files by directory into shader sets. Each set is named
// after its directory relative to relTo, and its base_dir is written
// relative to relTo as well, so a manifest saved in relTo loads back the
// same paths.
func FromFiles(relTo string, files []shader.File) ([]*ShaderSet, error) {
	byDir := make(map[string][]string)
	for _, f := range files {
		p := fsutil.ToSlash(f.Path)
		dir := path.Dir(p)
		byDir[dir] = append(byDir[dir], path.Base(p))
	}

	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	sets := make([]*ShaderSet, 0, len(dirs))
	for _, dir := range dirs {
		rel, err := filepath.Rel(relTo, filepath.FromSlash(dir))
		if err != nil {
			return nil, fmt.Errorf("failed to relate %s to %s: %w", dir, relTo, err)
		}
		rel = fsutil.ToSlash(rel)
		names := byDir[dir]
		sort.Strings(names)
		sets = append(sets, &ShaderSet{Name: rel, BaseDir: rel, Shaders: names})
	}
	return sets, nil
}

// Write renders sets as a manifest file.
func Write(w io.Writer, sets []*ShaderSet) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for i, set := range sets {
		if i > 0 {
			body.AppendNewline()
		}
		block := body.AppendNewBlock("shader_set", []string{set.Name})
		blockBody := block.Body()
		if set.BaseDir != "" {
			blockBody.SetAttributeValue("base_dir", cty.StringVal(set.BaseDir))
		}

		shaders := set.Shaders
		if shaders == nil {
			shaders = []string{}
		}
		val, err := gocty.ToCtyValue(shaders, cty.List(cty.String))
		if err != nil {
			return fmt.Errorf("failed to encode shaders of set %q: %w", set.Name, err)
		}
		blockBody.SetAttributeValue("shaders", val)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
