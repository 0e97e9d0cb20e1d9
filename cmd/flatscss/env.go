package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"bennypowers.dev/flatscss/internal/config"
	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/palette"
	"bennypowers.dev/flatscss/internal/pipeline"
)

// env is the state shared by all commands of one invocation
type env struct {
	out    io.Writer
	root   string
	cfg    config.Config
	source string
}

type envKey struct{}

func contextWithEnv(ctx context.Context, e *env) context.Context {
	return context.WithValue(ctx, envKey{}, e)
}

func envFromContext(ctx context.Context) *env {
	if e, ok := ctx.Value(envKey{}).(*env); ok {
		return e
	}
	return &env{out: os.Stdout}
}

// prepareEnv sets the log level and loads the configuration once the
// command line is parsed
func prepareEnv(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level, err := log.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, err
	}
	log.SetLevel(level)

	e := envFromContext(ctx)
	if e.root, err = filepath.Abs(cmd.String("root")); err != nil {
		return ctx, fmt.Errorf("unable to resolve workspace root: %w", err)
	}

	if file := cmd.String("config"); file != "" {
		e.cfg, err = config.Load(file)
		e.source = file
	} else {
		e.cfg, e.source, err = config.Discover(e.root)
	}
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if e.source == "" {
		log.Debug("Using defaults (no configuration file)")
	} else {
		log.Debug("Using configuration from %s", e.source)
	}
	return contextWithEnv(ctx, e), nil
}

// palette loads the configured palette followed by the extra files
func (e *env) palette(extra []string) (palette.Palette, error) {
	p, errs := e.cfg.LoadPalette(e.root)
	for _, ref := range extra {
		file, err := config.ResolvePath(ref, e.root)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		entries, err := palette.Load(file)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		p = append(p, entries...)
	}
	if errs != nil {
		return nil, errs
	}
	return p, nil
}

func (e *env) pipeline() (*pipeline.Pipeline, error) {
	return pipeline.New(e.cfg.PipelineOptions())
}

func singleArg(cmd *cli.Command) (string, error) {
	switch cmd.Args().Len() {
	case 0:
		return "", fmt.Errorf("%s: no input file has been specified", cmd.Name)
	case 1:
		return cmd.Args().First(), nil
	}
	log.Warn("Too many arguments, ignoring %v", cmd.Args().Tail())
	return cmd.Args().First(), nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-selected input file
	if err != nil {
		return "", fmt.Errorf("unable to read %s: %w", path, err)
	}
	return string(data), nil
}
