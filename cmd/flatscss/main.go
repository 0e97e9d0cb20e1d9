package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"bennypowers.dev/flatscss/internal/log"
	"bennypowers.dev/flatscss/internal/version"
	"bennypowers.dev/flatscss/lsp"
)

const appName = "flatscss"

func newApp() *cli.Command {
	return &cli.Command{
		Name:            appName,
		Usage:           "normalizes generated SCSS into flat, palette-bound blocks",
		Version:         version.Full(),
		HideHelpCommand: true,
		Before:          prepareEnv,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` instead of discovering it"},
			&cli.StringFlag{Name: "root", Value: ".", Usage: "workspace `DIR` for configuration discovery and palette paths"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "log `LEVEL` (debug, info, warn, error)"},
		},
		Commands: []*cli.Command{
			{
				Name:      "normalize",
				Usage:     "Normalizes stylesheets: de-nests selectors, converts px to rem and binds colors to the palette",
				ArgsUsage: "GLOB...",
				Action:    runNormalize,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "write", Aliases: []string{"w"}, Usage: "rewrite files in place instead of printing them"},
					&cli.BoolFlag{Name: "check", Usage: "fail when a file is not normalized, without changing it"},
					&cli.StringSliceFlag{Name: "palette", Aliases: []string{"p"}, Usage: "additional palette `FILE` (YAML, JSON, SCSS or design tokens)"},
				},
			},
			{
				Name:      "segment",
				Usage:     "Prints or saves the records of one top-level block",
				ArgsUsage: "FILE",
				Action:    runSegment,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "block", Aliases: []string{"b"}, Required: true, Usage: "top-level block `NAME`, e.g. c-card"},
					&cli.StringFlag{Name: "markup", Aliases: []string{"m"}, Usage: "markup `FILE` the stylesheet was generated for"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write records as files into `DIR`"},
					&cli.StringSliceFlag{Name: "palette", Aliases: []string{"p"}, Usage: "additional palette `FILE`"},
				},
			},
			{
				Name:      "classes",
				Usage:     "Lists the tracked classes of a markup file with the tag of their first element",
				ArgsUsage: "FILE",
				Action:    runClasses,
			},
			{
				Name:      "preview",
				Usage:     "Compiles a stylesheet to plain CSS and reports syntax problems",
				ArgsUsage: "FILE",
				Action:    runPreview,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "palette", Aliases: []string{"p"}, Usage: "additional palette `FILE`"},
				},
			},
			{
				Name:  "lsp",
				Usage: "Runs the language server on stdio",
				Action: func(context.Context, *cli.Command) error {
					server, err := lsp.NewServer()
					if err != nil {
						return fmt.Errorf("failed to create LSP server: %w", err)
					}
					return server.RunStdio()
				},
			},
			{
				Name:      "dumpconfig",
				Usage:     "Dumps either default or effective configuration (YAML)",
				ArgsUsage: "[DESTINATION]",
				Action:    runDumpConfig,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output the built-in defaults"},
				},
			},
		},
	}
}

// run executes the application writing command output to out
func run(ctx context.Context, out io.Writer, args []string) error {
	return newApp().Run(contextWithEnv(ctx, &env{out: out}), args)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Stdout, os.Args)
	stop()
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}
