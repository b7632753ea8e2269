package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/vkshaderc/internal/android"
	"github.com/vk/vkshaderc/internal/builder"
	"github.com/vk/vkshaderc/internal/compiler"
	"github.com/vk/vkshaderc/internal/manifest"
	"github.com/vk/vkshaderc/internal/shader"
)

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = a.Context(ctx)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	var err error
	switch a.config.Command {
	case CommandCompile:
		err = a.runCompile(ctx)
	case CommandClean:
		err = a.runClean(ctx)
	case CommandCollectAPKs:
		err = a.runCollectAPKs(ctx)
	case CommandManifest:
		err = a.runManifest(ctx)
	default:
		err = fmt.Errorf("unknown command %q", a.config.Command)
	}

	a.logger.Debug("App.Run method finished.", "error", err)
	return err
}

// strategy picks the compiler resolution strategy. An explicit compiler
// path wins over the configured strategy.
func (a *App) strategy() (compiler.Strategy, error) {
	cfg := a.config
	if cfg.CompilerPath != "" {
		return compiler.Explicit{Path: cfg.CompilerPath}, nil
	}

	platform, err := compiler.DetectPlatform(cfg.GOOS)
	if err != nil {
		return nil, err
	}
	if cfg.Strategy == StrategyPlatform {
		return compiler.PlatformPath{WorkDir: cfg.WorkDir, Anchor: cfg.Anchor, Platform: platform}, nil
	}
	return compiler.SearchPath{PathList: cfg.PathList, Platform: platform}, nil
}

// manifestVars exposes the repository root when the anchor can be found in
// the working directory, falling back to the scan root.
func (a *App) manifestVars() manifest.Vars {
	cfg := a.config
	vars := manifest.Vars{Root: cfg.Root}
	if root, err := compiler.RepositoryRoot(cfg.WorkDir, cfg.Anchor); err == nil {
		vars.Root = root
	}
	if platform, err := compiler.DetectPlatform(cfg.GOOS); err == nil {
		vars.Platform = platform.String()
	}
	return vars
}

func (a *App) runCompile(ctx context.Context) error {
	cfg := a.config

	strategy, err := a.strategy()
	if err != nil {
		return err
	}

	// nil means "walk Root"; a loaded manifest is never nil.
	var paths []string
	if cfg.Manifest != "" {
		m, err := manifest.Load(ctx, cfg.Manifest, a.manifestVars())
		if err != nil {
			return err
		}
		paths = m.Paths()
	}

	b := builder.New(strategy, cfg.Timeout)
	b.Workers = cfg.Workers
	b.NewCompiler = a.newCompiler

	result, err := b.Run(ctx, cfg.Root, paths)
	if result != nil {
		a.reportCompile(result)
	}
	if err != nil {
		return err
	}

	if cfg.Strict && !result.OK() {
		return fmt.Errorf("%w: %d of %d", ErrCompileFailures, len(result.Failed), len(result.Failed)+len(result.Succeeded))
	}
	return nil
}

func (a *App) reportCompile(result *builder.Result) {
	total := len(result.Succeeded) + len(result.Failed)
	fmt.Fprintf(a.outW, "compiled %d of %d shaders with %s\n", len(result.Succeeded), total, result.Compiler.Path)
	if len(result.Failed) == 0 {
		return
	}
	fmt.Fprintf(a.outW, "%d failed:\n", len(result.Failed))
	for _, path := range result.FailedPaths() {
		fmt.Fprintf(a.outW, "  %s\n", path)
	}
}

func (a *App) runClean(ctx context.Context) error {
	report, err := android.Clean(ctx, a.config.Root)
	if report != nil {
		for _, path := range report.Removed {
			fmt.Fprintf(a.outW, "removed %s\n", path)
		}
	}
	return err
}

func (a *App) runCollectAPKs(ctx context.Context) error {
	report, err := android.CollectAPKs(ctx, a.config.Root, a.config.Dest)
	if report != nil {
		for _, c := range report.Copied {
			fmt.Fprintf(a.outW, "copied %s -> %s\n", c.From, c.To)
		}
	}
	return err
}

func (a *App) runManifest(ctx context.Context) (err error) {
	cfg := a.config

	files, err := shader.Discover(ctx, cfg.Root, nil)
	if err != nil {
		return err
	}

	relTo := cfg.Root
	w := a.outW
	if cfg.Out != "" {
		relTo = filepath.Dir(cfg.Out)
		f, createErr := os.Create(cfg.Out)
		if createErr != nil {
			return fmt.Errorf("failed to create manifest %s: %w", cfg.Out, createErr)
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		w = f
	}

	sets, err := manifest.FromFiles(relTo, files)
	if err != nil {
		return err
	}
	if err := manifest.Write(w, sets); err != nil {
		return err
	}
	a.logger.Info("Shader manifest written.", "sets", len(sets), "shaders", len(files), "out", cfg.Out)
	return nil
}
