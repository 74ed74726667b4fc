package main

import (
	"strings"

	"github.com/desertthunder/nicofix/internal/capture"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "nicofix.toml"

// Command builds the root command. Running it without a subcommand captures fixtures.
func (r *Runner) Command() *cli.Command {
	return &cli.Command{
		Name:      "nicofix",
		Usage:     "Capture niconico API responses as test fixtures",
		Version:   "0.3.0",
		Writer:    r.output,
		ErrWriter: r.output,
		Flags:     captureFlags(),
		Action:    r.Capture,
		Commands: []*cli.Command{
			targetsCommand(r),
			reportCommand(r),
			initCommand(r),
		},
	}
}

// captureFlags are shared with every subcommand.
func captureFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   defaultConfigPath,
		},
		&cli.StringFlag{
			Name:  "fixtures-dir",
			Usage: "Directory receiving <category>/<name>.json fixtures",
		},
		&cli.StringFlag{
			Name:  "mapping",
			Usage: "Directory receiving the type mapping and run manifest",
		},
		&cli.StringSliceFlag{
			Name:  "category",
			Usage: "Only capture targets in this category (repeatable): " + strings.Join(categoryNames(), ", "),
		},
		&cli.BoolFlag{
			Name:  "fail-fast",
			Usage: "Abort on the first failed target",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of items kept in list responses (0 keeps all)",
		},
		&cli.DurationFlag{
			Name:  "delay",
			Usage: "Minimum time between API calls",
		},
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "Write responses without replacing unstable fields",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable debug logging",
		},
	}
}

func targetsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "targets",
		Usage: "List the resolved capture targets without calling the API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text, csv or markdown)",
				Value:   "text",
			},
		},
		Action: r.Targets,
	}
}

func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "report",
		Usage:  "Print the manifest of the last capture run as Markdown",
		Action: r.Report,
	}
}

func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Write an example configuration file",
		ArgsUsage: "[path]",
		Action:    r.Init,
	}
}

// categoryNames lists the valid --category values.
func categoryNames() []string {
	names := make([]string, len(capture.Categories))
	for i, c := range capture.Categories {
		names[i] = string(c)
	}
	return names
}
