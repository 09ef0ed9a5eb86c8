package main

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/argo-scanner/internal/config"
	"github.com/rxtech-lab/argo-scanner/internal/version"
	"github.com/urfave/cli/v3"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the configuration file",
		Action: func(_ context.Context, cmd *cli.Command) error {
			schema, err := config.GenerateSchemaJSON()
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.Root().Writer, schema)

			return err
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the scanner version",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintln(cmd.Root().Writer, version.GetVersion())

			return err
		},
	}
}
