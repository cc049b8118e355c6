package main

import (
	"context"

	cli "github.com/urfave/cli/v3"

	"github.com/flowprobe/flowprobe/pkg/cmd"
	"github.com/flowprobe/flowprobe/pkg/log"
)

func workflowsCommand() *cli.Command {
	return &cli.Command{
		Name:    "workflows",
		Aliases: []string{"w"},
		Usage:   "List stored workflows and their run reports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:  "runs-for",
				Usage: "List run reports for this workflow id instead",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("workflows")

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			if workflowID := command.String("runs-for"); workflowID != "" {
				reports, err := store.RunReports(ctx, workflowID)
				if err != nil {
					return err
				}

				return printJSON(reports)
			}

			workflows, err := store.Workflows(ctx)
			if err != nil {
				return err
			}

			return printJSON(workflows)
		},
	}
}
