package main

import (
	"context"

	cli "github.com/urfave/cli/v3"

	"github.com/flowprobe/flowprobe/pkg/cmd"
	"github.com/flowprobe/flowprobe/pkg/convert"
	"github.com/flowprobe/flowprobe/pkg/log"
)

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:    "convert",
		Aliases: []string{"c"},
		Usage:   "Convert a process structure into a test workflow",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to the process structure JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "process-map-id",
				Usage:    "Identifier of the source process map",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "org-id",
				Usage:    "Organization the workflow belongs to",
				Required: true,
				Sources:  cli.EnvVars("ORG_ID"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Persist the workflow to this storage backend",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("convert")

			structure, err := loadStructure(command.String("input"))
			if err != nil {
				return err
			}

			converter := convert.NewConverter(logger)

			workflow, err := converter.Convert(structure, convert.Options{
				ProcessMapID: command.String("process-map-id"),
				OrgID:        command.String("org-id"),
			})
			if err != nil {
				return err
			}

			if databaseURL := command.String("database-url"); databaseURL != "" {
				store, err := cmd.NewPersistence(ctx, logger, databaseURL)
				if err != nil {
					return err
				}

				defer func() {
					if err := store.Close(ctx); err != nil {
						logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
					}
				}()

				if err := store.SaveWorkflow(ctx, workflow); err != nil {
					return err
				}

				logger.InfoContext(ctx, "Workflow saved", "workflow_id", workflow.ID)
			}

			return printJSON(workflow)
		},
	}
}
