package app

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/vk/vkshaderc/internal/builder"
	"github.com/vk/vkshaderc/internal/ctxlog"
)

// ErrCompileFailures is returned by a strict compile run in which at least
// one shader failed.
var ErrCompileFailures = errors.New("one or more shaders failed to compile")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config

	newCompiler builder.CompilerFactory
}

// Option customizes an App.
type Option func(*App)

// WithCompilerFactory replaces how compile runs invoke the compiler.
func WithCompilerFactory(f builder.CompilerFactory) Option {
	return func(a *App) { a.newCompiler = f }
}

// NewApp is the constructor for the main application. Reports and generated
// manifests go to outW; logs go to logW.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:        outW,
		logger:      logger,
		config:      cfg,
		newCompiler: builder.DefaultCompilerFactory,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Context returns ctx carrying the App's logger.
func (a *App) Context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
