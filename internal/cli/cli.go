package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/vk/vkshaderc/internal/app"
	"github.com/vk/vkshaderc/internal/compiler"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Env is the process state the CLI resolves relative paths and compiler
// lookups against.
type Env struct {
	WorkDir  string
	PathList string
	GOOS     string
}

// ProcessEnv captures the current process's working directory, PATH and OS.
func ProcessEnv() (Env, error) {
	wd, err := os.Getwd()
	if err != nil {
		return Env{}, fmt.Errorf("failed to determine working directory: %w", err)
	}
	return Env{WorkDir: wd, PathList: os.Getenv("PATH"), GOOS: runtime.GOOS}, nil
}

const usageText = `
vkshaderc - shader and Android build helpers for the Vulkan tutorials.

Usage:
  vkshaderc [global options] [COMMAND] [options]

Commands:
  compile        Compile every shader under --root (or in --manifest) to SPIR-V. Default.
  manifest       Write an HCL manifest listing the shaders under --root.
  clean          Remove .iml files and generated build directories of Android projects.
  collect-apks   Copy debug APKs found under --root into one folder.

Options:
`

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer, env Env) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	command, args, logFormat, logLevel, err := splitCommand(args)
	if err != nil {
		return nil, false, err
	}
	if command == "help" {
		fmt.Fprint(output, usageText)
		return nil, true, nil
	}

	flagSet := flag.NewFlagSet("vkshaderc "+string(command), flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usageText)
		flagSet.PrintDefaults()
	}

	rootFlag := flagSet.String("root", ".", "Directory to operate on.")
	logFormatFlag := flagSet.String("log-format", logFormat, "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", logLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	var (
		manifestFlag, strategyFlag, anchorFlag, compilerFlag *string
		timeoutFlag                                          *time.Duration
		workersFlag                                          *int
		strictFlag                                           *bool
		destFlag, outFlag                                    *string
	)
	switch command {
	case app.CommandCompile:
		manifestFlag = flagSet.String("manifest", "", "HCL manifest file or directory listing shaders; disables directory discovery.")
		strategyFlag = flagSet.String("strategy", app.StrategyPath, "Compiler lookup. Options: 'path' (search $PATH) or 'platform' (bundled under the repository root).")
		anchorFlag = flagSet.String("anchor", compiler.DefaultAnchor, "Directory name that marks the repository root.")
		compilerFlag = flagSet.String("compiler", "", "Explicit glslangValidator path; overrides --strategy.")
		timeoutFlag = flagSet.Duration("timeout", 2*time.Minute, "Per-shader compiler timeout. 0 disables it.")
		workersFlag = flagSet.Int("workers", 1, "Number of concurrent compiler processes.")
		strictFlag = flagSet.Bool("strict", false, "Exit with status 3 when any shader fails to compile.")
	case app.CommandCollectAPKs:
		destFlag = flagSet.String("dest", "", "Collection folder. Defaults to <root>/apks.")
	case app.CommandManifest:
		outFlag = flagSet.String("out", "", "Manifest file to write. Defaults to standard output.")
	}

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))}
	}
	slog.Debug("Arguments parsed successfully.", "command", command)

	format := strings.ToLower(*logFormatFlag)
	if format != "text" && format != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	level := strings.ToLower(*logLevelFlag)
	switch level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(env.WorkDir, p)
	}

	cfg := app.Config{
		Command:   command,
		Root:      abs(*rootFlag),
		WorkDir:   env.WorkDir,
		PathList:  env.PathList,
		GOOS:      env.GOOS,
		LogFormat: format,
		LogLevel:  level,
	}
	switch command {
	case app.CommandCompile:
		cfg.Manifest = abs(*manifestFlag)
		cfg.Strategy = strings.ToLower(*strategyFlag)
		cfg.Anchor = *anchorFlag
		cfg.CompilerPath = abs(*compilerFlag)
		cfg.Timeout = *timeoutFlag
		cfg.Workers = *workersFlag
		cfg.Strict = *strictFlag
	case app.CommandCollectAPKs:
		cfg.Dest = abs(*destFlag)
	case app.CommandManifest:
		cfg.Out = abs(*outFlag)
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// splitCommand locates the command word. Arguments before it must be global
// flags; when they are not, or no command word is present, every argument
// belongs to the default compile command.
func splitCommand(args []string) (app.Command, []string, string, string, error) {
	logFormat, logLevel := "text", "info"

	idx := slices.IndexFunc(args, func(arg string) bool {
		switch app.Command(arg) {
		case app.CommandCompile, app.CommandClean, app.CommandCollectAPKs, app.CommandManifest, "help":
			return true
		}
		return false
	})

	if idx > 0 {
		globalSet := flag.NewFlagSet("vkshaderc", flag.ContinueOnError)
		globalSet.SetOutput(io.Discard)
		globalSet.StringVar(&logFormat, "log-format", logFormat, "")
		globalSet.StringVar(&logLevel, "log-level", logLevel, "")
		if err := globalSet.Parse(args[:idx]); err != nil || globalSet.NArg() > 0 {
			// Not a global-flag prefix, e.g. "--root clean".
			return app.CommandCompile, args, "text", "info", nil
		}
	}

	if idx < 0 {
		if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
			return "", nil, "", "", &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", args[0])}
		}
		return app.CommandCompile, args, logFormat, logLevel, nil
	}
	return app.Command(args[idx]), args[idx+1:], logFormat, logLevel, nil
}
