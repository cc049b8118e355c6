package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowprobe/flowprobe/pkg/convert"
	"github.com/flowprobe/flowprobe/pkg/discovery"
	"github.com/flowprobe/flowprobe/pkg/log"
	"github.com/flowprobe/flowprobe/pkg/models"
)

func discoverCommand() *cli.Command {
	return &cli.Command{
		Name:    "discover",
		Aliases: []string{"d"},
		Usage:   "Enumerate the scenario paths of a process structure",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to the process structure JSON file",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "max-paths",
				Usage: "Maximum number of paths to record",
				Value: discovery.DefaultMaxPaths,
			},
			&cli.BoolFlag{
				Name:  "include-partial",
				Usage: "Record paths abandoned at the length cap",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			structure, err := loadStructure(command.String("input"))
			if err != nil {
				return err
			}

			result, err := discovery.DiscoverPaths(structure, discovery.Options{
				MaxPaths:            command.Int("max-paths"),
				IncludePartialPaths: command.Bool("include-partial"),
			})
			if err != nil {
				return err
			}

			return printJSON(result)
		},
	}
}

func loadStructure(path string) (*models.ProcessStructure, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	structure, err := convert.ParseDocument(raw)
	if err != nil {
		return nil, err
	}

	return structure, nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}
