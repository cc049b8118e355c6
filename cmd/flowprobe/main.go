package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowprobe/flowprobe/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "flowprobe",
		Usage:                 "Discover, convert and run workflow test scenarios",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			discoverCommand(),
			convertCommand(),
			runCommand(),
			workflowsCommand(),
		},
	}

	err := command.Run(context.Background(), os.Args)
	if err != nil {
		log.WithModule("flowprobe").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
