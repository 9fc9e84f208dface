package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/moodlog/internal"
	pkgconfig "github.com/starford/moodlog/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(configPath, internal.EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// commandOptions builds options for subcommands that write results to
// stdout; their logs go to stderr.
func commandOptions(cmd *cli.Command) ([]internal.Option, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
	}, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func record(ctx context.Context, cmd *cli.Command) error {
	emoji := cmd.Args().First()
	if emoji == "" {
		return fmt.Errorf("usage: moodlog record <emoji>")
	}
	opts, err := commandOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Record(ctx, os.Stdout, emoji, cmd.Bool("strict"), opts...)
}

func events(ctx context.Context, cmd *cli.Command) error {
	opts, err := commandOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Events(ctx, os.Stdout, cmd.String("input"), opts...)
}

func exportICS(ctx context.Context, cmd *cli.Command) error {
	opts, err := commandOptions(cmd)
	if err != nil {
		return err
	}
	return internal.ExportICS(ctx, os.Stdout, opts...)
}

func serveMCP(_ context.Context, cmd *cli.Command) error {
	opts, err := commandOptions(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(opts...)
}

func main() {
	cmd := &cli.Command{
		Name:   "moodlog",
		Usage:  "Local-first daily mood tracker with a calendar view",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the mood page, API and live updates",
				Action: serve,
			},
			{
				Name:      "record",
				Usage:     "Record today's mood",
				ArgsUsage: "<emoji>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Reject emoji outside the mood set",
					},
				},
				Action: record,
			},
			{
				Name:  "events",
				Usage: "Print calendar events as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "input",
						Usage: "Ledger JSON file to project instead of the store",
					},
				},
				Action: events,
			},
			{
				Name:   "export-ics",
				Usage:  "Write the mood calendar as iCalendar to stdout",
				Action: exportICS,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
