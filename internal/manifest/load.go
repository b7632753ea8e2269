package manifest

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/vkshaderc/internal/ctxlog"
	"github.com/vk/vkshaderc/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Vars are the variables visible to manifest expressions.
type Vars struct {
	// Root is the repository root, exposed as `root`.
	Root string
	// Platform is the target platform name, exposed as `platform`.
	Platform string
}

func (v Vars) evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"root":     cty.StringVal(fsutil.ToSlash(v.Root)),
			"platform": cty.StringVal(v.Platform),
		},
	}
}

// hclManifestFile represents the top-level structure of a manifest file for decoding.
type hclManifestFile struct {
	Sets []*hclShaderSet `hcl:"shader_set,block"`
}

// hclShaderSet represents a single 'shader_set' block for initial decoding from HCL.
type hclShaderSet struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

var shaderSetSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "base_dir"},
		{Name: "shaders", Required: true},
	},
}

// Load reads a manifest file, or every .hcl file beneath a directory, and
// merges their shader sets. Set names must be unique across all files.
func Load(ctx context.Context, manifestPath string, vars Vars) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading shader manifest.", "path", manifestPath)

	info, err := os.Stat(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", manifestPath, err)
	}

	files := []string{fsutil.ToSlash(manifestPath)}
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(manifestPath, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("failed to find manifest files in %s: %w", manifestPath, err)
		}
		if len(files) == 0 {
			logger.Warn("No .hcl manifest files found in path, manifest is empty.", "path", manifestPath)
		}
	}

	parser := hclparse.NewParser()
	evalCtx := vars.evalContext()
	m := &Manifest{}
	declared := make(map[string]string)

	for _, file := range files {
		sets, err := loadFile(file, parser, evalCtx)
		if err != nil {
			return nil, err
		}
		for _, set := range sets {
			if prev, dup := declared[set.Name]; dup {
				return nil, fmt.Errorf("duplicate shader_set %q in %s (first declared in %s)", set.Name, file, prev)
			}
			declared[set.Name] = file
		}
		m.Sets = append(m.Sets, sets...)
		logger.Debug("Loaded manifest file.", "file", file, "sets", len(sets))
	}

	logger.Info("Shader manifest loaded.", "sets", len(m.Sets), "shaders", len(m.Paths()))
	return m, nil
}

// loadFile parses a single HCL file and returns the shader sets found within it.
func loadFile(filePath string, parser *hclparse.Parser, evalCtx *hcl.EvalContext) ([]*ShaderSet, error) {
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
	}

	var parsed hclManifestFile
	diags = gohcl.DecodeBody(hclFile.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filePath, diags)
	}

	sets := make([]*ShaderSet, 0, len(parsed.Sets))
	for _, block := range parsed.Sets {
		set, diags := newShaderSet(block, filePath, evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("error parsing shader_set %q in file %s: %w", block.Name, filePath, diags)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func newShaderSet(block *hclShaderSet, filePath string, evalCtx *hcl.EvalContext) (*ShaderSet, hcl.Diagnostics) {
	content, diags := block.Body.Content(shaderSetSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	set := &ShaderSet{Name: block.Name, FilePath: filePath}

	if attr, ok := content.Attributes["base_dir"]; ok {
		var baseDir string
		diags = append(diags, decodeAttr(attr, evalCtx, cty.String, &baseDir)...)
		if baseDir != "" {
			baseDir = fsutil.ToSlash(baseDir)
			if !isAbs(baseDir) {
				baseDir = path.Join(path.Dir(fsutil.ToSlash(filePath)), baseDir)
			}
		}
		set.BaseDir = baseDir
	}

	attr := content.Attributes["shaders"]
	diags = append(diags, decodeAttr(attr, evalCtx, cty.List(cty.String), &set.Shaders)...)
	if diags.HasErrors() {
		return nil, diags
	}
	return set, diags
}

// decodeAttr evaluates attr, converts the value to want and stores it in
// target via gocty.
func decodeAttr(attr *hcl.Attribute, evalCtx *hcl.EvalContext, want cty.Type, target any) hcl.Diagnostics {
	val, diags := attr.Expr.Value(evalCtx)
	if diags.HasErrors() {
		return diags
	}

	invalid := func(detail string) hcl.Diagnostics {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid \"" + attr.Name + "\" value",
			Detail:   detail,
			Subject:  attr.Expr.Range().Ptr(),
		}}
	}

	if val.IsNull() || !val.IsWhollyKnown() {
		return invalid("The value must be a known, non-null " + want.FriendlyName() + ".")
	}
	converted, err := convert.Convert(val, want)
	if err != nil {
		return invalid(fmt.Sprintf("Expected %s: %s.", want.FriendlyName(), err))
	}
	if want.IsListType() && converted.LengthInt() > 0 {
		for it := converted.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if elem.IsNull() {
				return invalid("List elements must not be null.")
			}
		}
	}
	if err := gocty.FromCtyValue(converted, target); err != nil {
		return invalid(err.Error())
	}
	return nil
}
