package main

import (
	"context"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"bennypowers.dev/flatscss/internal/config"
	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/parser/html"
	"bennypowers.dev/flatscss/internal/pipeline"
	"bennypowers.dev/flatscss/internal/preview"
	"bennypowers.dev/flatscss/internal/selector"
)

func runClasses(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	file, err := singleArg(cmd)
	if err != nil {
		return err
	}
	markup, err := readFile(file)
	if err != nil {
		return err
	}
	m, err := selector.NewMatcher(e.cfg.Prefixes)
	if err != nil {
		return err
	}
	for _, rec := range html.ScanClasses(markup, m) {
		fmt.Fprintf(e.out, "%s\t%s\n", rec.ClassName, rec.TagName)
	}
	return nil
}

// runPreview compiles the normalized stylesheet; syntax problems of the
// result fail the command after the CSS is printed
func runPreview(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	file, err := singleArg(cmd)
	if err != nil {
		return err
	}
	stylesheet, err := readFile(file)
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
	r, err := pipe.Run(pipeline.Input{Stylesheet: stylesheet, Palette: pal, ColorOverrides: e.cfg.ColorOverrides})
	if err != nil {
		return err
	}

	compiled, err := preview.Compile(r.NormalizedStylesheet, pal, e.cfg.PreviewOptions())
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, compiled.CSS)

	for _, w := range compiled.Warnings {
		log.Warn("%s: %s", file, w)
	}
	for _, p := range compiled.Problems {
		log.Error("%s: compiled CSS line %d: %s", file, p.Range.Start.Line+1, p.Message)
	}
	if n := len(compiled.Problems); n > 0 {
		return fmt.Errorf("preview: %d syntax problems in compiled CSS", n)
	}
	return nil
}

func runDumpConfig(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	cfg := e.cfg
	if cmd.Bool("default") {
		cfg = config.Default()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("unable to marshal configuration: %w", err)
	}

	fname := cmd.Args().First()
	if fname == "" {
		_, err = e.out.Write(data)
		return err
	}
	if err := os.WriteFile(fname, data, 0o600); err != nil {
		return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
	}
	return nil
}
