package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "scanner",
		Usage: "Scan a stock watchlist for technical chart patterns",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the scanner configuration file",
				Value:   "scanner.yaml",
				Sources: cli.EnvVars("SCANNER_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Environment file loaded before running a command. A missing file is ignored",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		Before: loadEnvFile,
		Commands: []*cli.Command{
			scanCommand(),
			watchCommand(),
			downloadCommand(),
			backtestCommand(),
			schemaCommand(),
			versionCommand(),
		},
	}
}

// loadEnvFile loads the environment file when it exists.
func loadEnvFile(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("env-file")
	if path == "" {
		return ctx, nil
	}

	if _, err := os.Stat(path); err != nil {
		return ctx, nil
	}

	if err := godotenv.Load(path); err != nil {
		return ctx, fmt.Errorf("loading %s: %w", path, err)
	}

	return ctx, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
