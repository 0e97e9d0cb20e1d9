package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"

	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/parser/html"
	"bennypowers.dev/flatscss/internal/pipeline"
	"bennypowers.dev/flatscss/internal/segment"
)

func runSegment(ctx context.Context, cmd *cli.Command) error {
	e := envFromContext(ctx)
	file, err := singleArg(cmd)
	if err != nil {
		return err
	}
	stylesheet, err := readFile(file)
	if err != nil {
		return err
	}
	var markup string
	if path := cmd.String("markup"); path != "" {
		if markup, err = readFile(path); err != nil {
			return err
		}
	}

	pal, err := e.palette(cmd.StringSlice("palette"))
	if err != nil {
		return err
	}
	pipe, err := e.pipeline()
	if err != nil {
		return err
	}
	r, err := pipe.Run(pipeline.Input{
		Stylesheet:     stylesheet,
		Markup:         markup,
		Palette:        pal,
		ColorOverrides: e.cfg.ColorOverrides,
	})
	if err != nil {
		return err
	}
	report(file, r.Metadata)

	name := cmd.String("block")
	group := segment.Group(r.Blocks, name)
	if group == nil {
		return fmt.Errorf("segment: no block named %q in %s", name, file)
	}
	fragment, ok := html.ExtractFragment(markup, name)
	if !ok && markup != "" {
		log.Warn("No element with class %s in the markup", name)
	}
	records := segment.SaveRecords(group, fragment)

	out := cmd.String("out")
	if out == "" {
		for _, rec := range records {
			fmt.Fprintf(e.out, "/* %s (%s) */\n%s\n", rec.Name, rec.Kind, rec.Code)
		}
		return nil
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("unable to create %s: %w", out, err)
	}
	for _, rec := range records {
		path := filepath.Join(out, rec.FileName())
		if err := writeFile(path, rec.Code+"\n"); err != nil {
			return err
		}
		log.Info("Saved %s", path)
	}
	return nil
}
