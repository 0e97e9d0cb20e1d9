package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"bennypowers.dev/flatscss/internal/collections"
	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/pipeline"
)

// ErrNotNormalized is returned by normalize --check when a file would change
var ErrNotNormalized = errors.New("stylesheet is not normalized")

func runNormalize(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	if cmd.Args().Len() == 0 {
		return errors.New("normalize: no input files have been specified")
	}

	files, err := e.expand(cmd.Args().Slice())
	if err != nil {
		return err
	}
	pal, err := e.palette(cmd.StringSlice("palette"))
	if err != nil {
		return err
	}
	pipe, err := e.pipeline()
	if err != nil {
		return err
	}

	write, check := cmd.Bool("write"), cmd.Bool("check")
	var errs error
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		content, err := readFile(file)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		r, err := pipe.Run(pipeline.Input{
			Stylesheet:     content,
			Palette:        pal,
			ColorOverrides: e.cfg.ColorOverrides,
		})
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", file, err))
			continue
		}
		report(file, r.Metadata)

		normalized := r.NormalizedStylesheet
		changed := normalized != strings.ReplaceAll(content, "\r\n", "\n")
		switch {
		case check:
			if changed {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", file, ErrNotNormalized))
			}
		case write:
			if !changed {
				continue
			}
			if err := writeFile(file, normalized); err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			log.Info("Rewrote %s", file)
		default:
			if len(files) > 1 {
				fmt.Fprintf(e.out, "/* %s */\n", file)
			}
			fmt.Fprintln(e.out, normalized)
		}
	}
	return errs
}

// expand resolves arguments to files. Plain paths are taken as given; glob
// patterns are matched below the working directory and filtered through the
// configured include and exclude patterns.
func (e *env) expand(args []string) ([]string, error) {
	files := collections.NewOrderedMap[string, struct{}]()
	var errs error
	for _, arg := range args {
		if !strings.ContainsAny(arg, "*?[{") {
			files.SetIfAbsent(filepath.Clean(arg), struct{}{})
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid pattern %q: %w", arg, err))
			continue
		}
		selected := 0
		for _, match := range matches {
			if !e.selects(match) {
				log.Debug("Skipping %s: excluded by configuration", match)
				continue
			}
			files.SetIfAbsent(match, struct{}{})
			selected++
		}
		if selected == 0 {
			log.Warn("No stylesheets match %s", arg)
		}
	}
	return files.Keys(), errs
}

func (e *env) selects(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(e.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = path
	}
	return e.cfg.Matches(rel)
}

func report(file string, m pipeline.Metadata) {
	log.Info("%s: denested=%t units=%t hex=%d undefined=%d",
		file, m.WasDenested, m.WasUnitConverted, m.HexReplacedCount, len(m.UndefinedVariablesReplaced))
	if len(m.DroppedSelectors) > 0 {
		log.Warn("%s: dropped nested selectors %s", file, strings.Join(m.DroppedSelectors, ", "))
	}
	if len(m.UndefinedVariablesReplaced) > 0 {
		log.Debug("%s: replaced undefined variables %s", file, strings.Join(m.UndefinedVariablesReplaced, ", "))
	}
}

func writeFile(path, content string) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return nil
}
